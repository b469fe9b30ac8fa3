package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SaleService commits sale transactions and reads the sales ledger.
type SaleService interface {
	Commit(ctx context.Context, input SaleInput) (*SaleCommitResult, error)
	GetSale(ctx context.Context, id string) (*Sale, error)
	GetSalesByDate(ctx context.Context, day time.Time) ([]Sale, error)
}

// SaleInput is the cashier's payload for a commit.
type SaleInput struct {
	CashierID  string          `json:"cashierId"`
	FxUsdToNLe decimal.Decimal `json:"fxUsdToNLe"`
	Lines      []SaleLineInput `json:"lines"`
}

// SaleLineInput references a product by id or, failing that, by sku.
type SaleLineInput struct {
	ProductID      string          `json:"productId"`
	SKU            string          `json:"sku"`
	Qty            int             `json:"qty"`
	UnitPriceUsd   decimal.Decimal `json:"unitPriceUsd"`
	UnitPriceLeone decimal.Decimal `json:"unitPriceLeone"`
}

// SaleCommitResult is everything the POS screen needs after a commit.
type SaleCommitResult struct {
	Sale           *Sale           `json:"sale"`
	Verdict        Verdict         `json:"verdict"`
	LowStockAlerts []LowStockAlert `json:"lowStockAlerts"`
}

type saleService struct {
	pool         *pgxpool.Pool
	alerts       AlertService
	defaultFxNLe decimal.Decimal
}

func NewSaleService(pool *pgxpool.Pool, alerts AlertService, defaultFxNLe decimal.Decimal) SaleService {
	return &saleService{pool: pool, alerts: alerts, defaultFxNLe: defaultFxNLe}
}

// Commit validates and applies a sale in a single transaction. All lines are
// checked against locked stock rows before anything is decremented, so a
// failing line leaves no trace of the earlier ones.
func (s *saleService) Commit(ctx context.Context, input SaleInput) (*SaleCommitResult, error) {
	if len(input.Lines) == 0 {
		return nil, &ValidationError{Field: "lines", Reason: "sale must have at least one line"}
	}
	for i, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("lines[%d].qty", i),
				Reason: "quantity must be positive",
			}
		}
		if line.ProductID == "" && line.SKU == "" {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("lines[%d]", i),
				Reason: "product id or sku required",
			}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Phase one: resolve and lock every product, verify stock. Quantities
	// are accumulated per product so duplicate lines for the same product
	// are checked against what earlier lines already claimed. No writes yet.
	products := make([]*Product, len(input.Lines))
	claimed := make(map[string]int)
	for i, line := range input.Lines {
		p, err := lockProduct(ctx, tx, line.ProductID, line.SKU)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				ref := line.ProductID
				if ref == "" {
					ref = line.SKU
				}
				return nil, &ProductNotFoundError{Line: i + 1, Ref: ref}
			}
			return nil, fmt.Errorf("failed to lock product for line %d: %w", i+1, err)
		}
		if p.QtyOnHand < claimed[p.ID]+line.Qty {
			return nil, &InsufficientStockError{
				Line:      i + 1,
				SKU:       p.SKU,
				Name:      p.Name,
				Requested: line.Qty,
				Available: p.QtyOnHand - claimed[p.ID],
			}
		}
		claimed[p.ID] += line.Qty
		products[i] = p
	}

	saleID := uuid.NewString()
	now := time.Now().UTC()

	// Phase two: decrement stock, write movement rows, build the sale.
	sale := &Sale{
		ID:        saleID,
		SaleDate:  now,
		CashierID: input.CashierID,
		TotalUsd:  decimal.Zero,
	}
	for i, line := range input.Lines {
		p := products[i]
		tag, err := tx.Exec(ctx,
			`UPDATE products SET qty_on_hand = qty_on_hand - $1, updated_at = $2
			 WHERE id = $3 AND qty_on_hand >= $1`,
			line.Qty, now, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for %s: %w", p.SKU, err)
		}
		if tag.RowsAffected() == 0 {
			// Backstop: keeps qty_on_hand >= 0 even if the phase-one
			// accounting and this guard ever disagree.
			return nil, &InsufficientStockError{
				Line:      i + 1,
				SKU:       p.SKU,
				Name:      p.Name,
				Requested: line.Qty,
				Available: p.QtyOnHand,
			}
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO stock_movements (id, product_id, change, reason, reference_id, created_at, user_id)
			 VALUES ($1, $2, $3, 'sale', $4, $5, $6)`,
			uuid.NewString(), p.ID, -line.Qty, saleID, now, input.CashierID)
		if err != nil {
			return nil, fmt.Errorf("failed to record stock movement for %s: %w", p.SKU, err)
		}

		unitPrice := line.UnitPriceUsd
		if unitPrice.IsZero() {
			unitPrice = p.PriceUsd
		}
		unitPriceNLe := line.UnitPriceLeone
		if unitPriceNLe.IsZero() {
			unitPriceNLe = p.PriceLeone
		}

		sale.Lines = append(sale.Lines, SaleLine{
			LineNumber:     i + 1,
			ProductID:      p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			Qty:            line.Qty,
			UnitPriceUsd:   unitPrice,
			UnitPriceLeone: unitPriceNLe,
			CostUsdAtSale:  p.CostUsd,
		})
		sale.TotalUsd = sale.TotalUsd.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	fx := input.FxUsdToNLe
	if fx.IsZero() {
		fx = s.defaultFxNLe
	}
	sale.FxUsdToNLe = fx
	sale.TotalUsd = sale.TotalUsd.Round(2)
	sale.TotalLeone = sale.TotalUsd.Mul(fx).Round(2)

	_, err = tx.Exec(ctx,
		`INSERT INTO sales (id, sale_date, cashier_id, total_usd, total_leone, fx_usd_to_nle)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sale.ID, sale.SaleDate, sale.CashierID, sale.TotalUsd, sale.TotalLeone, sale.FxUsdToNLe)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}
	for _, l := range sale.Lines {
		_, err = tx.Exec(ctx,
			`INSERT INTO sale_lines (sale_id, line_number, product_id, sku, name, qty, unit_price_usd, unit_price_leone, cost_usd_at_sale)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			sale.ID, l.LineNumber, l.ProductID, l.SKU, l.Name, l.Qty, l.UnitPriceUsd, l.UnitPriceLeone, l.CostUsdAtSale)
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale line %d: %w", l.LineNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	result := &SaleCommitResult{
		Sale:    sale,
		Verdict: EvaluateSale(sale),
	}
	alerts, err := s.alerts.Scan(ctx)
	if err != nil {
		// The sale is already durable; alert scan failure is advisory only.
		log.Printf("low-stock scan after sale %s failed: %v", sale.ID, err)
		return result, nil
	}
	result.LowStockAlerts = alerts
	return result, nil
}

func (s *saleService) GetSale(ctx context.Context, id string) (*Sale, error) {
	var sale Sale
	err := s.pool.QueryRow(ctx,
		`SELECT id, sale_date, cashier_id, total_usd, total_leone, fx_usd_to_nle
		 FROM sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.SaleDate, &sale.CashierID, &sale.TotalUsd, &sale.TotalLeone, &sale.FxUsdToNLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %s not found", id)
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if err := s.loadLines(ctx, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSalesByDate returns all sales whose sale_date falls on the given UTC
// day, ordered oldest first.
func (s *saleService) GetSalesByDate(ctx context.Context, day time.Time) ([]Sale, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx,
		`SELECT id, sale_date, cashier_id, total_usd, total_leone, fx_usd_to_nle
		 FROM sales WHERE sale_date >= $1 AND sale_date < $2
		 ORDER BY sale_date ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.SaleDate, &sale.CashierID, &sale.TotalUsd, &sale.TotalLeone, &sale.FxUsdToNLe); err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		if err := s.loadLines(ctx, &sales[i]); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func (s *saleService) loadLines(ctx context.Context, sale *Sale) error {
	rows, err := s.pool.Query(ctx,
		`SELECT line_number, product_id, sku, name, qty, unit_price_usd, unit_price_leone, cost_usd_at_sale
		 FROM sale_lines WHERE sale_id = $1 ORDER BY line_number ASC`, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to query sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.LineNumber, &l.ProductID, &l.SKU, &l.Name, &l.Qty, &l.UnitPriceUsd, &l.UnitPriceLeone, &l.CostUsdAtSale); err != nil {
			return fmt.Errorf("failed to scan sale line: %w", err)
		}
		sale.Lines = append(sale.Lines, l)
	}
	return rows.Err()
}

// lockProduct resolves a product by id first, then sku, taking a row lock
// that holds until the surrounding transaction ends.
func lockProduct(ctx context.Context, tx pgx.Tx, id, sku string) (*Product, error) {
	const cols = `id, sku, name, category, qty_on_hand, cost_cny, cost_usd, price_usd, price_leone, reorder_threshold, barcode, created_at, updated_at`

	scan := func(row pgx.Row) (*Product, error) {
		var p Product
		err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.QtyOnHand,
			&p.CostCny, &p.CostUsd, &p.PriceUsd, &p.PriceLeone,
			&p.ReorderThreshold, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &p, nil
	}

	if id != "" {
		p, err := scan(tx.QueryRow(ctx,
			`SELECT `+cols+` FROM products WHERE id = $1 FOR UPDATE`, id))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) || sku == "" {
			return nil, err
		}
	}
	return scan(tx.QueryRow(ctx,
		`SELECT `+cols+` FROM products WHERE sku = $1 FOR UPDATE`, sku))
}
