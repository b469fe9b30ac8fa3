package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Costs are carried in both CNY (supplier
// currency) and USD (normalized); retail prices in USD and New Leones.
type Product struct {
	ID               string          `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	QtyOnHand        int             `json:"qtyOnHand"`
	CostCny          decimal.Decimal `json:"costCny"`
	CostUsd          decimal.Decimal `json:"costUsd"`
	PriceUsd         decimal.Decimal `json:"priceUsd"`
	PriceLeone       decimal.Decimal `json:"priceLeone"`
	ReorderThreshold int             `json:"reorderThreshold"`
	Barcode          string          `json:"barcode"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Sale is a committed transaction. Sales are immutable once written.
type Sale struct {
	ID         string          `json:"id"`
	SaleDate   time.Time       `json:"saleDate"`
	CashierID  string          `json:"cashierId"`
	Lines      []SaleLine      `json:"lines"`
	TotalUsd   decimal.Decimal `json:"totalUsd"`
	TotalLeone decimal.Decimal `json:"totalLeone"`
	FxUsdToNLe decimal.Decimal `json:"fxUsdToNLe"`
}

// SaleLine is one line of a committed sale. CostUsdAtSale is the unit cost
// captured at commit time so later catalog edits cannot rewrite history.
type SaleLine struct {
	LineNumber     int             `json:"lineNumber"`
	ProductID      string          `json:"productId"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Qty            int             `json:"qty"`
	UnitPriceUsd   decimal.Decimal `json:"unitPriceUsd"`
	UnitPriceLeone decimal.Decimal `json:"unitPriceLeone"`
	CostUsdAtSale  decimal.Decimal `json:"costUsdAtSale"`
}

// StockMovement is one append-only audit row for a stock quantity change.
type StockMovement struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Change      int       `json:"change"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"referenceId"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      string    `json:"userId"`
}

// LowStockAlert reports a product at or below its effective reorder
// threshold. Threshold is the resolved value, never zero.
type LowStockAlert struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	QtyOnHand int    `json:"qtyOnHand"`
	Threshold int    `json:"threshold"`
}

// Verdict is the profit advisor's assessment of a committed sale.
type Verdict struct {
	Profitable bool            `json:"profitable"`
	ProfitUsd  decimal.Decimal `json:"profitUsd"`
	MarginPct  decimal.Decimal `json:"marginPct"`
	Message    string          `json:"message"`
}

// Staff is an employee who clocks attendance with a PIN.
type Staff struct {
	StaffID  string `json:"staffId"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Attendance is one clock event.
type Attendance struct {
	ID            string    `json:"id"`
	StaffID       string    `json:"staffId"`
	ClockTime     time.Time `json:"clockTime"`
	Action        string    `json:"action"`
	WorkstationID string    `json:"workstationId"`
	Method        string    `json:"method"`
	Notes         string    `json:"notes"`
}

// User is a dashboard login account.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	RoleAdmin      = "admin"
	RoleCashier    = "cashier"
	RoleTechnician = "technician"
)

const (
	ActionClockIn  = "clock_in"
	ActionClockOut = "clock_out"
)
