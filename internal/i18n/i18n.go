package i18n

import "strings"

// Default language. The tool's audience is Japanese resellers; English is a
// best-effort secondary.
const fallbackLang = "ja"

var translations = map[string]map[string]string{
	"ja": {
		"app_title":          "物販管理ツール",
		"item_created":       "商品を登録しました",
		"item_updated":       "商品を更新しました",
		"item_deleted":       "商品を削除しました",
		"item_not_found":     "商品が見つかりません",
		"customer_created":   "顧客を登録しました",
		"customer_updated":   "顧客情報を更新しました",
		"customer_deleted":   "顧客を削除しました",
		"customer_not_found": "顧客が見つかりません",
		"items":              "商品一覧",
		"customers":          "顧客一覧",
		"add_item":           "商品を登録",
		"add_customer":       "顧客を登録",
		"export_csv":         "CSV出力",
		"search":             "検索",
	},
	"en": {
		"app_title":          "Merchandise Manager",
		"item_created":       "Item registered",
		"item_updated":       "Item updated",
		"item_deleted":       "Item deleted",
		"item_not_found":     "Item not found",
		"customer_created":   "Customer registered",
		"customer_updated":   "Customer updated",
		"customer_deleted":   "Customer deleted",
		"customer_not_found": "Customer not found",
		"items":              "Items",
		"customers":          "Customers",
		"add_item":           "Add item",
		"add_customer":       "Add customer",
		"export_csv":         "Export CSV",
		"search":             "Search",
	},
}

// T translates code for lang. Unknown languages fall back to Japanese;
// unknown codes fall back to the code itself so missing entries are visible
// instead of blank.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if v, ok := m[code]; ok {
			return v
		}
	}
	if v, ok := translations[fallbackLang][code]; ok {
		return v
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	h := strings.ToLower(header)
	for _, part := range strings.Split(h, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.HasPrefix(tag, "en") {
			return "en"
		}
		if strings.HasPrefix(tag, "ja") {
			return "ja"
		}
	}
	return fallbackLang
}
