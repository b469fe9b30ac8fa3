package web

import (
	"net/http"
	"strings"
	"time"

	"regimenz-pos/internal/core"
)

// writeReport renders a report as a plain-text attachment.
func writeReport(w http.ResponseWriter, report *core.Report, filename string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	var b strings.Builder
	b.WriteString(report.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(report.Title)))
	b.WriteString("\n\n")
	for _, line := range report.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	_, _ = w.Write([]byte(b.String()))
}

// reportDay parses the ?day=YYYY-MM-DD query parameter, defaulting to today.
func reportDay(r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		return time.Now().UTC(), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// dailySalesReport handles GET /api/reports/daily-sales.txt.
func (h *Handler) dailySalesReport(w http.ResponseWriter, r *http.Request) {
	day, ok := reportDay(r)
	if !ok {
		writeError(w, r, "invalid day, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	report, err := h.svc.DailySalesReport(r.Context(), day)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeReport(w, report, "daily-sales-"+day.Format("2006-01-02")+".txt")
}

// lowStockReport handles GET /api/reports/low-stock.txt.
func (h *Handler) lowStockReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.LowStockReport(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeReport(w, report, "low-stock.txt")
}

// attendanceReport handles GET /api/reports/attendance.txt.
func (h *Handler) attendanceReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.AttendanceReport(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeReport(w, report, "attendance.txt")
}

// salesSummary handles GET /api/dashboard/sales-summary.
func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	day, ok := reportDay(r)
	if !ok {
		writeError(w, r, "invalid day, want YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	summary, err := h.svc.DailySalesSummary(r.Context(), day)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
