package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"regimenz-pos/internal/app"
	"regimenz-pos/internal/core"
)

// Handler holds the ApplicationService, the chi router, and the in-memory
// activity monitor.
type Handler struct {
	svc       app.ApplicationService
	activity  *activityStore
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		activity:  newActivityStore(),
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// The catalog read is open so the POS screens can render before login.
	r.Get("/api/products", h.listProducts)

	// ── Authenticated API ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Cashier surface
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(core.RoleCashier))
			r.Post("/api/sales", h.commitSale)
			r.Get("/api/sales/today", h.salesToday)
			r.Get("/api/reports/daily-sales.txt", h.dailySalesReport)
			r.Post("/api/cashier/heartbeat", h.cashierHeartbeat)
			r.Post("/api/activity/log", h.logActivity)
		})

		// Technician surface (attendance clocking)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(core.RoleTechnician))
			r.Post("/api/attendance/clock", h.clockAttendance)
			r.Get("/api/attendance/today", h.todayAttendance)
			r.Get("/api/reports/attendance.txt", h.attendanceReport)
		})

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(core.RoleAdmin))
			r.Get("/api/staff", h.listStaff)
			r.Post("/api/products", h.upsertProduct)
			r.Delete("/api/products/{id}", h.deleteProduct)
			r.Post("/api/products/import-csv", h.importProductsCSV)
			r.Post("/api/products/{id}/adjust-stock", h.adjustStock)
			r.Get("/api/products/{id}/movements", h.listMovements)
			r.Get("/api/alerts/low-stock", h.lowStockAlerts)
			r.Post("/api/alerts/send-low-stock-email", h.sendLowStockEmail)
			r.Get("/api/pricing/suggest", h.suggestPrices)
			r.Get("/api/reports/low-stock.txt", h.lowStockReport)
			r.Get("/api/dashboard/sales-summary", h.salesSummary)
			r.Get("/api/dashboard/active-cashiers", h.activeCashiers)
			r.Get("/api/dashboard/recent-activity", h.recentActivity)
			r.Get("/api/dashboard/live-activity", h.liveActivity)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
