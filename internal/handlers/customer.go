package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/harusame/merchandise-manager/internal/i18n"
	"github.com/harusame/merchandise-manager/internal/middleware"
	"github.com/harusame/merchandise-manager/internal/models"
	"github.com/harusame/merchandise-manager/internal/rank"
	"github.com/harusame/merchandise-manager/internal/services"
	"github.com/harusame/merchandise-manager/internal/view"
)

type CustomerHandler struct {
	Svc   *services.CustomerService
	Ranks rank.Table
}

func NewCustomerHandler(svc *services.CustomerService, ranks rank.Table) *CustomerHandler {
	return &CustomerHandler{Svc: svc, Ranks: ranks}
}

// TierSummary feeds the rank badges on the customer listing: one entry per
// tier, highest first, zero counts included.
type TierSummary struct {
	Tier      rank.Tier
	Name      string
	Color     string
	Threshold float64
	Count     int
}

// List: GET /customers – stats-annotated listing with rank/name filters.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	rankFilter := r.URL.Query().Get("rank")
	if rankFilter == "" {
		rankFilter = "all"
	}
	search := r.URL.Query().Get("search")
	customers, counts, err := h.Svc.ListWithStats(rankFilter, search)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	summary := make([]TierSummary, 0, 4)
	for _, tier := range h.Ranks.Tiers() {
		summary = append(summary, TierSummary{
			Tier:      tier,
			Name:      h.Ranks.Name(tier),
			Color:     h.Ranks.Color(tier),
			Threshold: h.Ranks.Threshold(tier),
			Count:     counts[tier],
		})
	}
	data := map[string]any{
		"Customers":  customers,
		"RankFilter": rankFilter,
		"Search":     search,
		"RankCounts": summary,
	}
	if msg := popFlash(w, r); msg != "" {
		data["Flash"] = msg
	}
	if err := view.Render(w, r, "customers.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// AddForm: GET /customers/add
func (h *CustomerHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Customer": nil, "Action": "add"}
	if err := view.Render(w, r, "customer_form.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// Add: POST /customers/add
func (h *CustomerHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	c := customerFromForm(r)
	if err := h.Svc.Create(&c); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	setFlash(w, i18n.T(middleware.LangFrom(r), "customer_created"))
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// EditForm: GET /customers/edit/{id}
func (h *CustomerHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCustomer(w, r)
	if !ok {
		return
	}
	data := map[string]any{"Customer": c, "Action": "edit"}
	if err := view.Render(w, r, "customer_form.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// Edit: POST /customers/edit/{id}
func (h *CustomerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadCustomer(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	c := customerFromForm(r)
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	if err := h.Svc.Update(&c); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	setFlash(w, i18n.T(middleware.LangFrom(r), "customer_updated"))
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

// View: GET /customers/view/{id} – stats, next-rank distance, purchase history.
func (h *CustomerHandler) View(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCustomer(w, r)
	if !ok {
		return
	}
	stats, err := h.Svc.Stats(c.ID)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	purchases, err := h.Svc.Purchases(c.ID)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Customer":  c,
		"Stats":     stats,
		"Purchases": annotate(purchases),
	}
	if next := h.Svc.NextRank(stats); next != nil {
		data["NextRank"] = next
	}
	if err := view.Render(w, r, "customer_view.html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}

// Delete: POST /customers/delete/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	lang := middleware.LangFrom(r)
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setFlash(w, i18n.T(lang, "customer_not_found"))
			http.Redirect(w, r, "/customers", http.StatusSeeOther)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	setFlash(w, i18n.T(lang, "customer_deleted"))
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *CustomerHandler) loadCustomer(w http.ResponseWriter, r *http.Request) (models.Customer, bool) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return models.Customer{}, false
	}
	c, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setFlash(w, i18n.T(middleware.LangFrom(r), "customer_not_found"))
			http.Redirect(w, r, "/customers", http.StatusSeeOther)
			return models.Customer{}, false
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return models.Customer{}, false
	}
	return c, true
}

func customerFromForm(r *http.Request) models.Customer {
	return models.Customer{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		Address: strings.TrimSpace(r.FormValue("address")),
		Memo:    r.FormValue("memo"),
	}
}
