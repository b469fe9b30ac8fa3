package web

import (
	"net/http"

	"regimenz-pos/internal/core"
)

// commitSale handles POST /api/sales. The cashier id on the sale comes from
// the session, not the payload.
func (h *Handler) commitSale(w http.ResponseWriter, r *http.Request) {
	var input core.SaleInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims := authFromContext(r.Context()); claims != nil {
		input.CashierID = claims.Username
	}

	result, err := h.svc.CommitSale(r.Context(), input)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}

	h.activity.recordTransaction(result.Sale)
	h.activity.record(input.CashierID, "sale_committed", result.Sale.ID)
	writeJSON(w, result)
}

// salesToday handles GET /api/sales/today.
func (h *Handler) salesToday(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.SalesToday(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	if sales == nil {
		sales = []core.Sale{}
	}
	writeJSON(w, sales)
}
