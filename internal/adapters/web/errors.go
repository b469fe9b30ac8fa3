package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"regimenz-pos/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCoreError maps the typed business errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a plain 500.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, r, validationErr.Error(), "VALIDATION_FAILED", http.StatusBadRequest)
		return
	}
	var notFoundErr *core.ProductNotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, r, notFoundErr.Error(), "PRODUCT_NOT_FOUND", http.StatusNotFound)
		return
	}
	var stockErr *core.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeError(w, r, stockErr.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
		return
	}
	log.Printf("request %s failed: %v", requestIDFromContext(r.Context()), err)
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}

// decodeJSON decodes the request body into v, writing the error response
// itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
