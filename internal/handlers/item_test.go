package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harusame/merchandise-manager/internal/clock"
	"github.com/harusame/merchandise-manager/internal/models"
	"github.com/harusame/merchandise-manager/internal/rank"
	"github.com/harusame/merchandise-manager/internal/services"
	"github.com/harusame/merchandise-manager/internal/upload"
)

var handlerNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.Local)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Item{}, &models.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestItemHandler(t *testing.T) (*ItemHandler, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	clk := clock.NewMockClock(handlerNow)
	items := services.NewItemService(db, clk)
	customers := services.NewCustomerService(db, rank.Default())
	uploads := upload.NewStore(t.TempDir(), clk)
	return NewItemHandler(items, customers, uploads, clk), db
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestItemAdd(t *testing.T) {
	h, db := newTestItemHandler(t)
	form := url.Values{
		"product_name":   {"フィルムカメラ"},
		"purchase_date":  {"2026-03-18"},
		"store_name":     {"ハードオフ"},
		"purchase_price": {"3000"},
		"is_listed":      {"1"},
	}
	w := httptest.NewRecorder()
	h.Add(w, formRequest("/add", form))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d body=%s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to / got %s", loc)
	}

	var it models.Item
	if err := db.First(&it).Error; err != nil {
		t.Fatalf("item not persisted: %v", err)
	}
	if it.ProductName != "フィルムカメラ" || it.PurchasePrice != 3000 || !it.IsListed {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.SalePrice != 0 || it.CustomerID != nil {
		t.Fatalf("absent fields must default: %+v", it)
	}
}

func TestItemAddCoercesBlankNumerics(t *testing.T) {
	h, db := newTestItemHandler(t)
	form := url.Values{
		"product_name":   {"lens"},
		"purchase_price": {""},
		"sale_price":     {"  "},
	}
	w := httptest.NewRecorder()
	h.Add(w, formRequest("/add", form))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", w.Code)
	}
	var it models.Item
	if err := db.First(&it).Error; err != nil {
		t.Fatalf("item not persisted: %v", err)
	}
	if it.PurchasePrice != 0 || it.SalePrice != 0 {
		t.Fatalf("blank numerics must coerce to 0: %+v", it)
	}
}

func TestItemAddRejectsMalformedNumber(t *testing.T) {
	h, db := newTestItemHandler(t)
	form := url.Values{
		"product_name":   {"lens"},
		"purchase_price": {"three thousand"},
	}
	w := httptest.NewRecorder()
	h.Add(w, formRequest("/add", form))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var count int64
	db.Model(&models.Item{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected request must not write")
	}
}

func TestItemEdit(t *testing.T) {
	h, db := newTestItemHandler(t)
	it := models.Item{ProductName: "before", PurchasePrice: 1000, PhotoPath: "static/uploads/old.png"}
	db.Create(&it)

	form := url.Values{
		"product_name":   {"after"},
		"purchase_price": {"1000"},
		"sale_price":     {"2500"},
		"sold_date":      {"2026-03-18"},
		"existing_photo": {"static/uploads/old.png"},
	}
	req := formRequest("/edit/1", form)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Edit(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d body=%s", w.Code, w.Body.String())
	}

	var got models.Item
	db.First(&got, it.ID)
	if got.ProductName != "after" || got.SalePrice != 2500 || !got.Sold() {
		t.Fatalf("edit not applied: %+v", got)
	}
	if got.PhotoPath != "static/uploads/old.png" {
		t.Fatalf("existing photo must survive edit without upload: %q", got.PhotoPath)
	}
}

func TestItemEditNotFound(t *testing.T) {
	h, _ := newTestItemHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/edit/999", nil)
	req.SetPathValue("id", "999")
	w := httptest.NewRecorder()
	h.EditForm(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("not-found should redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to listing got %s", loc)
	}
	// a flash notice rides the redirect
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "flash" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected flash cookie on not-found")
	}
}

func TestItemDelete(t *testing.T) {
	h, db := newTestItemHandler(t)
	it := models.Item{ProductName: "junk"}
	db.Create(&it)

	req := formRequest("/delete/1", url.Values{})
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", w.Code)
	}
	var count int64
	db.Model(&models.Item{}).Count(&count)
	if count != 0 {
		t.Fatalf("item should be deleted")
	}
}

func TestItemIndexHTML(t *testing.T) {
	h, db := newTestItemHandler(t)
	db.Create(&models.Item{ProductName: "中古レンズ", PurchasePrice: 5000})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Index(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "中古レンズ") {
		t.Fatalf("expected item name in body")
	}
	if !strings.Contains(body, "総商品数") {
		t.Fatalf("expected stats bar in body")
	}
}

func TestItemExport(t *testing.T) {
	h, db := newTestItemHandler(t)
	db.Create(&models.Item{ProductName: "export-me", SoldDate: "2026-03-01",
		SalePrice: 5000, PurchasePrice: 3000, ShippingCost: 300, Commission: 200})

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	w := httptest.NewRecorder()
	h.Export(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition got %s", cd)
	}
	b := w.Body.Bytes()
	if len(b) < 3 || b[0] != 0xEF || b[1] != 0xBB || b[2] != 0xBF {
		t.Fatalf("expected BOM prefix")
	}
	body := w.Body.String()
	if !strings.Contains(body, "管理No") || !strings.Contains(body, "export-me") {
		t.Fatalf("unexpected csv body: %s", body)
	}
	if !strings.Contains(body, "1500") || !strings.Contains(body, "50.0%") {
		t.Fatalf("profit columns missing: %s", body)
	}
}
