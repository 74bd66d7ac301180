package handlers

import (
	"net/http"

	"github.com/harusame/merchandise-manager/internal/httpx"
	"github.com/harusame/merchandise-manager/internal/services"
)

// APIHandler serves the small read-only JSON surface.
type APIHandler struct {
	Items     *services.ItemService
	Customers *services.CustomerService
}

func NewAPIHandler(items *services.ItemService, customers *services.CustomerService) *APIHandler {
	return &APIHandler{Items: items, Customers: customers}
}

// Stats: GET /api/stats – the four aggregate counters as a flat object.
func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Items.Stats()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "stats_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// CustomerRefs: GET /api/customers – {id, name} pairs ordered by name.
func (h *APIHandler) CustomerRefs(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Customers.Picker()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "customers_failed", nil)
		return
	}
	if refs == nil {
		refs = []services.CustomerRef{}
	}
	httpx.JSON(w, http.StatusOK, refs)
}
