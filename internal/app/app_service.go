package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"regimenz-pos/internal/core"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

type appService struct {
	sales     core.SaleService
	catalog   core.CatalogService
	alerts    core.AlertService
	staff     core.StaffService
	users     core.UserService
	reporting core.ReportingService
	mailer    Mailer
}

// New wires the core services behind the ApplicationService boundary.
func New(
	sales core.SaleService,
	catalog core.CatalogService,
	alerts core.AlertService,
	staff core.StaffService,
	users core.UserService,
	reporting core.ReportingService,
	mailer Mailer,
) ApplicationService {
	return &appService{
		sales:     sales,
		catalog:   catalog,
		alerts:    alerts,
		staff:     staff,
		users:     users,
		reporting: reporting,
		mailer:    mailer,
	}
}

func (a *appService) CommitSale(ctx context.Context, input core.SaleInput) (*core.SaleCommitResult, error) {
	return a.sales.Commit(ctx, input)
}

func (a *appService) SalesToday(ctx context.Context) ([]core.Sale, error) {
	return a.sales.GetSalesByDate(ctx, time.Now().UTC())
}

func (a *appService) ListProducts(ctx context.Context) ([]core.Product, error) {
	return a.catalog.List(ctx)
}

func (a *appService) UpsertProduct(ctx context.Context, p core.Product) (*core.Product, error) {
	return a.catalog.Upsert(ctx, p)
}

func (a *appService) DeleteProduct(ctx context.Context, id string) error {
	return a.catalog.Delete(ctx, id)
}

func (a *appService) ImportProductsCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	count, err := a.catalog.ImportCSV(ctx, r)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Imported: count}, nil
}

func (a *appService) AdjustStock(ctx context.Context, productID string, delta int, reason, userID string) (*core.Product, error) {
	return a.catalog.AdjustStock(ctx, productID, delta, reason, userID)
}

func (a *appService) ListStockMovements(ctx context.Context, productID string, limit int) ([]core.StockMovement, error) {
	return a.catalog.ListMovements(ctx, productID, limit)
}

func (a *appService) LowStockAlerts(ctx context.Context) ([]core.LowStockAlert, error) {
	return a.alerts.Scan(ctx)
}

// SendLowStockEmail scans and mails the current alert set. No alerts means
// no email, reported as sent=false rather than an error.
func (a *appService) SendLowStockEmail(ctx context.Context) (*EmailResult, error) {
	alerts, err := a.alerts.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return &EmailResult{Sent: false, AlertCount: 0}, nil
	}
	if err := a.mailer.SendLowStock(alerts); err != nil {
		return nil, fmt.Errorf("failed to send low-stock email: %w", err)
	}
	return &EmailResult{Sent: true, AlertCount: len(alerts)}, nil
}

func (a *appService) SuggestPrices(ctx context.Context, targetMarginPct decimal.Decimal) ([]core.PriceSuggestion, error) {
	return a.catalog.SuggestPrices(ctx, targetMarginPct)
}

func (a *appService) DailySalesSummary(ctx context.Context, day time.Time) (*core.SalesSummary, error) {
	return a.reporting.DailySalesSummary(ctx, day)
}

func (a *appService) DailySalesReport(ctx context.Context, day time.Time) (*core.Report, error) {
	return a.reporting.DailySalesReport(ctx, day)
}

func (a *appService) LowStockReport(ctx context.Context) (*core.Report, error) {
	return a.reporting.LowStockReport(ctx)
}

func (a *appService) AttendanceReport(ctx context.Context) (*core.Report, error) {
	return a.reporting.AttendanceReport(ctx)
}

func (a *appService) ClockAttendance(ctx context.Context, staffID, pin, action, workstationID string) (*core.Attendance, error) {
	return a.staff.Clock(ctx, staffID, pin, action, workstationID)
}

func (a *appService) TodayAttendance(ctx context.Context) ([]core.Attendance, error) {
	return a.staff.TodayAttendance(ctx)
}

func (a *appService) ListStaff(ctx context.Context) ([]core.Staff, error) {
	return a.staff.ListStaff(ctx)
}

func (a *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &UserSession{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (a *appService) GetUser(ctx context.Context, id int) (*core.User, error) {
	return a.users.GetByID(ctx, id)
}
