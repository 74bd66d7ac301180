package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harusame/merchandise-manager/internal/clock"
	"github.com/harusame/merchandise-manager/internal/models"
	"github.com/harusame/merchandise-manager/internal/rank"
	"github.com/harusame/merchandise-manager/internal/services"
)

func TestAPIStats(t *testing.T) {
	db := setupTestDB(t)
	items := services.NewItemService(db, clock.NewMockClock(handlerNow))
	customers := services.NewCustomerService(db, rank.Default())
	h := NewAPIHandler(items, customers)

	db.Create(&models.Item{ProductName: "a", IsListed: true})
	db.Create(&models.Item{ProductName: "b", SoldDate: "2026-03-01",
		SalePrice: 5000, PurchasePrice: 3000, ShippingCost: 300, Commission: 200})

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %s", ct)
	}
	var st services.ItemStats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Total != 2 || st.Listed != 1 || st.Sold != 1 {
		t.Fatalf("unexpected counters: %+v", st)
	}
	if st.TotalProfit != 1500 {
		t.Fatalf("expected total profit 1500 got %v", st.TotalProfit)
	}
}

func TestAPICustomerRefs(t *testing.T) {
	db := setupTestDB(t)
	items := services.NewItemService(db, clock.NewMockClock(handlerNow))
	customers := services.NewCustomerService(db, rank.Default())
	h := NewAPIHandler(items, customers)

	db.Create(&models.Customer{Name: "zeta"})
	db.Create(&models.Customer{Name: "alpha"})

	w := httptest.NewRecorder()
	h.CustomerRefs(w, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var refs []services.CustomerRef
	if err := json.Unmarshal(w.Body.Bytes(), &refs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(refs) != 2 || refs[0].Name != "alpha" || refs[1].Name != "zeta" {
		t.Fatalf("expected name-ordered refs, got %+v", refs)
	}
}

func TestAPICustomerRefsEmpty(t *testing.T) {
	db := setupTestDB(t)
	items := services.NewItemService(db, clock.NewMockClock(handlerNow))
	customers := services.NewCustomerService(db, rank.Default())
	h := NewAPIHandler(items, customers)

	w := httptest.NewRecorder()
	h.CustomerRefs(w, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Fatalf("expected empty array, got %q", got)
	}
}
