package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"regimenz-pos/internal/core"
)

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	if products == nil {
		products = []core.Product{}
	}
	writeJSON(w, products)
}

// upsertProduct handles POST /api/products.
func (h *Handler) upsertProduct(w http.ResponseWriter, r *http.Request) {
	var p core.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	out, err := h.svc.UpsertProduct(r.Context(), p)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, out)
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importProductsCSV handles POST /api/products/import-csv. The body is the
// raw CSV document.
func (h *Handler) importProductsCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ImportProductsCSV(r.Context(), r.Body)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// adjustStock handles POST /api/products/{id}/adjust-stock.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := ""
	if claims := authFromContext(r.Context()); claims != nil {
		userID = claims.Username
	}
	p, err := h.svc.AdjustStock(r.Context(), id, req.Delta, req.Reason, userID)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// listMovements handles GET /api/products/{id}/movements.
func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	movements, err := h.svc.ListStockMovements(r.Context(), id, 100)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	if movements == nil {
		movements = []core.StockMovement{}
	}
	writeJSON(w, movements)
}

// lowStockAlerts handles GET /api/alerts/low-stock.
func (h *Handler) lowStockAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.LowStockAlerts(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []core.LowStockAlert{}
	}
	writeJSON(w, alerts)
}

// sendLowStockEmail handles POST /api/alerts/send-low-stock-email.
func (h *Handler) sendLowStockEmail(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SendLowStockEmail(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// suggestPrices handles GET /api/pricing/suggest?targetMarginPct=30.
func (h *Handler) suggestPrices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("targetMarginPct")
	if raw == "" {
		raw = "30"
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, r, "invalid targetMarginPct", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	suggestions, err := h.svc.SuggestPrices(r.Context(), pct)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, suggestions)
}
