package models

import "time"

// Item is a single purchased-for-resale merchandise record.
//
// Calendar dates are stored as YYYY-MM-DD strings, empty when unknown; the
// lexicographic order of that layout matches chronological order, which the
// date filters rely on. IsListed and SoldDate are independently settable:
// a record may carry a sold date while never having been flagged as listed,
// and nothing reconciles the two.
type Item struct {
	ID            uint   `gorm:"primaryKey"`
	PurchaseDate  string `gorm:"size:10"`
	PhotoPath     string
	ProductName   string `gorm:"not null"`
	StoreName     string
	PurchasePrice float64 `gorm:"not null;default:0"`
	PaymentMethod string
	IsListed      bool   `gorm:"not null;default:false"`
	ListingDate   string `gorm:"size:10"`
	SoldDate      string `gorm:"size:10"`
	// Listing-side estimates, recorded before a sale.
	ListingPrice       float64 `gorm:"not null;default:0"`
	ExpectedShipping   float64 `gorm:"not null;default:0"`
	ExpectedCommission float64 `gorm:"not null;default:0"`
	// Realized values, recorded after a sale.
	SalePrice     float64 `gorm:"not null;default:0"`
	ShippingCost  float64 `gorm:"not null;default:0"`
	SalesPlatform string
	Commission    float64 `gorm:"not null;default:0"`
	IsShipped     bool    `gorm:"not null;default:false"`
	Memo          string
	CustomerID    *uint `gorm:"index"` // weak reference, cleared when the customer is deleted
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName pins the table name existing databases already use.
func (Item) TableName() string { return "merchandise" }

// Sold reports whether the item has been sold. The sold date alone decides
// this; IsListed does not participate.
func (i Item) Sold() bool { return i.SoldDate != "" }
