// Package export renders the merchandise collection as a CSV download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/harusame/merchandise-manager/internal/models"
	"github.com/harusame/merchandise-manager/internal/profit"
)

// utf8BOM lets spreadsheet tools auto-detect the encoding; without it Excel
// mangles the Japanese headers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{
	"管理No", "仕入日", "商品名", "店舗名", "仕入額", "出品済", "出品日", "売却日",
	"売上金", "送料", "販売先", "手数料", "利益", "利益率", "発送済", "メモ",
}

// CSV writes items as a BOM-prefixed UTF-8 CSV stream. Callers pass the full
// collection in id-descending order; this function does not reorder.
func CSV(w io.Writer, items []models.Item) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, it := range items {
		row := []string{
			fmt.Sprintf("%d", it.ID),
			it.PurchaseDate,
			it.ProductName,
			it.StoreName,
			formatPrice(it.PurchasePrice),
			checkmark(it.IsListed),
			it.ListingDate,
			it.SoldDate,
			formatPrice(it.SalePrice),
			formatPrice(it.ShippingCost),
			it.SalesPlatform,
			formatPrice(it.Commission),
			fmt.Sprintf("%.0f", profit.Realized(it)),
			fmt.Sprintf("%.1f%%", profit.RealizedRate(it)),
			checkmark(it.IsShipped),
			it.Memo,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func checkmark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

// formatPrice drops a trailing .0 so whole-yen amounts export as integers.
func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
