package app

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"regimenz-pos/internal/core"
)

// ApplicationService is the single boundary the adapters program against.
type ApplicationService interface {
	// Sales
	CommitSale(ctx context.Context, input core.SaleInput) (*core.SaleCommitResult, error)
	SalesToday(ctx context.Context) ([]core.Sale, error)

	// Catalog
	ListProducts(ctx context.Context) ([]core.Product, error)
	UpsertProduct(ctx context.Context, p core.Product) (*core.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ImportProductsCSV(ctx context.Context, r io.Reader) (*ImportResult, error)
	AdjustStock(ctx context.Context, productID string, delta int, reason, userID string) (*core.Product, error)
	ListStockMovements(ctx context.Context, productID string, limit int) ([]core.StockMovement, error)

	// Alerts and pricing
	LowStockAlerts(ctx context.Context) ([]core.LowStockAlert, error)
	SendLowStockEmail(ctx context.Context) (*EmailResult, error)
	SuggestPrices(ctx context.Context, targetMarginPct decimal.Decimal) ([]core.PriceSuggestion, error)

	// Reporting
	DailySalesSummary(ctx context.Context, day time.Time) (*core.SalesSummary, error)
	DailySalesReport(ctx context.Context, day time.Time) (*core.Report, error)
	LowStockReport(ctx context.Context) (*core.Report, error)
	AttendanceReport(ctx context.Context) (*core.Report, error)

	// Staff
	ClockAttendance(ctx context.Context, staffID, pin, action, workstationID string) (*core.Attendance, error)
	TodayAttendance(ctx context.Context) ([]core.Attendance, error)
	ListStaff(ctx context.Context) ([]core.Staff, error)

	// Auth
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)
	GetUser(ctx context.Context, id int) (*core.User, error)
}

// Mailer sends low-stock alert emails. Implemented by internal/mail.
type Mailer interface {
	SendLowStock(alerts []core.LowStockAlert) error
}

// UserSession is the authenticated identity handed to the web adapter.
type UserSession struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ImportResult reports a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
}

// EmailResult reports whether an alert email went out and to how many rows.
type EmailResult struct {
	Sent       bool `json:"sent"`
	AlertCount int  `json:"alertCount"`
}
