package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/harusame/merchandise-manager/internal/clock"
	"github.com/harusame/merchandise-manager/internal/export"
	"github.com/harusame/merchandise-manager/internal/httpx"
	"github.com/harusame/merchandise-manager/internal/i18n"
	"github.com/harusame/merchandise-manager/internal/middleware"
	"github.com/harusame/merchandise-manager/internal/models"
	"github.com/harusame/merchandise-manager/internal/profit"
	"github.com/harusame/merchandise-manager/internal/services"
	"github.com/harusame/merchandise-manager/internal/upload"
	"github.com/harusame/merchandise-manager/internal/view"
)

type ItemHandler struct {
	Items     *services.ItemService
	Customers *services.CustomerService
	Uploads   *upload.Store
	Clock     clock.Clock
}

func NewItemHandler(items *services.ItemService, customers *services.CustomerService, uploads *upload.Store, clk clock.Clock) *ItemHandler {
	return &ItemHandler{Items: items, Customers: customers, Uploads: uploads, Clock: clk}
}

// ItemRow is an item annotated with the computed profit figures for display.
type ItemRow struct {
	models.Item
	Profit             float64
	ProfitRate         float64
	ExpectedProfit     float64
	ExpectedProfitRate float64
}

func annotate(items []models.Item) []ItemRow {
	rows := make([]ItemRow, len(items))
	for i, it := range items {
		rows[i] = ItemRow{
			Item:               it,
			Profit:             profit.Realized(it),
			ProfitRate:         profit.RealizedRate(it),
			ExpectedProfit:     profit.Projected(it),
			ExpectedProfitRate: profit.ProjectedRate(it),
		}
	}
	return rows
}

// Index: GET / – filtered listing plus the always-unfiltered stats bar.
func (h *ItemHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := services.ItemQuery{
		Search: r.URL.Query().Get("search"),
		Filter: services.ParseFilter(r.URL.Query().Get("filter")),
	}
	items, err := h.Items.List(q)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	stats, err := h.Items.Stats()
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Items":      annotate(items),
		"Stats":      stats,
		"FilterType": string(q.Filter),
		"Search":     q.Search,
	}
	if msg := popFlash(w, r); msg != "" {
		data["Flash"] = msg
	}
	if err := view.Render(w, r, "index.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// AddForm: GET /add
func (h *ItemHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	customers, _ := h.Customers.Picker()
	data := map[string]any{"Item": nil, "Action": "add", "Customers": customers, "SelectedCustomer": uint(0)}
	if err := view.Render(w, r, "form.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// Add: POST /add
func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	it, err := h.itemFromForm(r, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Items.Create(&it); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	setFlash(w, i18n.T(middleware.LangFrom(r), "item_created"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditForm: GET /edit/{id}
func (h *ItemHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	customers, _ := h.Customers.Picker()
	var selected uint
	if it.CustomerID != nil {
		selected = *it.CustomerID
	}
	data := map[string]any{"Item": it, "Action": "edit", "Customers": customers, "SelectedCustomer": selected}
	if err := view.Render(w, r, "form.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// Edit: POST /edit/{id}
func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	it, err := h.itemFromForm(r, existing.PhotoPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	it.ID = existing.ID
	it.CreatedAt = existing.CreatedAt
	if err := h.Items.Update(&it); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	setFlash(w, i18n.T(middleware.LangFrom(r), "item_updated"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete: POST /delete/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := middleware.LangFrom(r)
	if err := h.Items.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setFlash(w, i18n.T(lang, "item_not_found"))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	setFlash(w, i18n.T(lang, "item_deleted"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// View: GET /view/{id}
func (h *ItemHandler) View(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	row := annotate([]models.Item{it})[0]
	data := map[string]any{"Item": row}
	if it.CustomerID != nil {
		if c, err := h.Customers.Get(*it.CustomerID); err == nil {
			data["Customer"] = c
		}
	}
	if err := view.Render(w, r, "view.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// Export: GET /export – full collection, id descending, BOM-prefixed CSV.
func (h *ItemHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.List(services.ItemQuery{})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	ts := h.Clock.Now().Format("20060102_150405")
	httpx.Attachment(w, "売上データ_"+ts+".csv", "text/csv; charset=utf-8", "sales_"+ts+".csv")
	if err := export.CSV(w, items); err != nil {
		// headers already written; nothing left to do
		_ = err
	}
}

// loadItem resolves {id} and fetches the record; on not-found it flashes a
// notice and redirects to the listing, reporting ok=false.
func (h *ItemHandler) loadItem(w http.ResponseWriter, r *http.Request) (models.Item, bool) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return models.Item{}, false
	}
	it, err := h.Items.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setFlash(w, i18n.T(middleware.LangFrom(r), "item_not_found"))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return models.Item{}, false
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return models.Item{}, false
	}
	return it, true
}

func pathID(r *http.Request) (uint, error) {
	n, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return uint(n), nil
}

// itemFromForm decodes the item form. Blank numeric inputs coerce to 0 and
// blank optional text stays empty; non-blank non-numeric currency input
// rejects the request. existingPhoto carries the stored path forward unless
// a new upload replaces it.
func (h *ItemHandler) itemFromForm(r *http.Request, existingPhoto string) (models.Item, error) {
	// multipart because of the photo field; fall back to urlencoded forms
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			return models.Item{}, fmt.Errorf("invalid form")
		}
	}

	it := models.Item{
		PurchaseDate:  strings.TrimSpace(r.FormValue("purchase_date")),
		ProductName:   strings.TrimSpace(r.FormValue("product_name")),
		StoreName:     strings.TrimSpace(r.FormValue("store_name")),
		PaymentMethod: strings.TrimSpace(r.FormValue("payment_method")),
		IsListed:      r.FormValue("is_listed") != "",
		ListingDate:   strings.TrimSpace(r.FormValue("listing_date")),
		SoldDate:      strings.TrimSpace(r.FormValue("sold_date")),
		SalesPlatform: strings.TrimSpace(r.FormValue("sales_platform")),
		IsShipped:     r.FormValue("is_shipped") != "",
		Memo:          r.FormValue("memo"),
	}

	var err error
	currency := []struct {
		field string
		dst   *float64
	}{
		{"purchase_price", &it.PurchasePrice},
		{"listing_price", &it.ListingPrice},
		{"expected_shipping", &it.ExpectedShipping},
		{"expected_commission", &it.ExpectedCommission},
		{"sale_price", &it.SalePrice},
		{"shipping_cost", &it.ShippingCost},
		{"commission", &it.Commission},
	}
	for _, c := range currency {
		if *c.dst, err = parseCurrency(c.field, r.FormValue(c.field)); err != nil {
			return models.Item{}, err
		}
	}

	if v := strings.TrimSpace(r.FormValue("customer_id")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return models.Item{}, fmt.Errorf("invalid customer_id")
		}
		id := uint(n)
		it.CustomerID = &id
	}

	it.PhotoPath = strings.TrimSpace(r.FormValue("existing_photo"))
	if it.PhotoPath == "" {
		it.PhotoPath = existingPhoto
	}
	if stored, err := h.Uploads.FromRequest(r, "photo"); err != nil {
		return models.Item{}, fmt.Errorf("photo upload failed")
	} else if stored != "" {
		it.PhotoPath = stored
	}
	return it, nil
}

// parseCurrency coerces blank to 0 and rejects non-numeric text.
func parseCurrency(field, v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s", field)
	}
	return f, nil
}
