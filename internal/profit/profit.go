// Package profit holds the pure per-item profit calculations. Results are
// recomputed on every read and never persisted.
package profit

import "github.com/harusame/merchandise-manager/internal/models"

// Realized is the actual profit for a sold item:
// sale price minus purchase price, shipping and commission.
// It is computable on any record; unsold items simply report the cost side.
func Realized(it models.Item) float64 {
	return it.SalePrice - it.PurchasePrice - it.ShippingCost - it.Commission
}

// RealizedRate is the realized profit as a percentage of the purchase price.
// A zero (or negative) purchase price yields 0: a zero-cost item has no
// defined margin, and 0% is the policy answer rather than a division error.
func RealizedRate(it models.Item) float64 {
	if it.PurchasePrice <= 0 {
		return 0
	}
	return Realized(it) / it.PurchasePrice * 100
}

// Projected is the pre-sale profit estimate based on the listing-side fields.
func Projected(it models.Item) float64 {
	return it.ListingPrice - it.PurchasePrice - it.ExpectedShipping - it.ExpectedCommission
}

// ProjectedRate is the projected profit as a percentage of the purchase
// price, with the same zero-purchase-price policy as RealizedRate.
func ProjectedRate(it models.Item) float64 {
	if it.PurchasePrice <= 0 {
		return 0
	}
	return Projected(it) / it.PurchasePrice * 100
}
