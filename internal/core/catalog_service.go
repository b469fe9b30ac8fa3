package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogService manages products and their stock audit trail.
type CatalogService interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	Upsert(ctx context.Context, p Product) (*Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, productID string, delta int, reason, userID string) (*Product, error)
	ImportCSV(ctx context.Context, r io.Reader) (int, error)
	ListMovements(ctx context.Context, productID string, limit int) ([]StockMovement, error)
	SuggestPrices(ctx context.Context, targetMarginPct decimal.Decimal) ([]PriceSuggestion, error)
}

// PriceSuggestion pairs a product with the price that would hit the target
// margin, in both currencies.
type PriceSuggestion struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	CostUsd         decimal.Decimal `json:"costUsd"`
	TargetMarginPct decimal.Decimal `json:"targetMarginPct"`
	SuggestPriceUsd decimal.Decimal `json:"suggestPriceUsd"`
	SuggestPriceNLe decimal.Decimal `json:"suggestPriceNLe"`
}

type catalogService struct {
	pool       *pgxpool.Pool
	fxCnyToUsd decimal.Decimal
	fxUsdToNLe decimal.Decimal
}

func NewCatalogService(pool *pgxpool.Pool, fxCnyToUsd, fxUsdToNLe decimal.Decimal) CatalogService {
	return &catalogService{pool: pool, fxCnyToUsd: fxCnyToUsd, fxUsdToNLe: fxUsdToNLe}
}

const productCols = `id, sku, name, category, qty_on_hand, cost_cny, cost_usd, price_usd, price_leone, reorder_threshold, barcode, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.QtyOnHand,
		&p.CostCny, &p.CostUsd, &p.PriceUsd, &p.PriceLeone,
		&p.ReorderThreshold, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) List(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY sku ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{Ref: id}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *catalogService) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{Ref: sku}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// Upsert inserts or updates a product keyed on sku. A zero USD cost is
// derived from the CNY cost at the configured rate.
func (s *catalogService) Upsert(ctx context.Context, p Product) (*Product, error) {
	if p.SKU == "" {
		return nil, &ValidationError{Field: "sku", Reason: "sku is required"}
	}
	if p.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if p.QtyOnHand < 0 {
		return nil, &ValidationError{Field: "qtyOnHand", Reason: "quantity cannot be negative"}
	}
	if p.ReorderThreshold < 0 {
		return nil, &ValidationError{Field: "reorderThreshold", Reason: "threshold cannot be negative"}
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CostUsd.IsZero() && !p.CostCny.IsZero() {
		p.CostUsd = p.CostCny.Mul(s.fxCnyToUsd).Round(2)
	}

	now := time.Now().UTC()
	out, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (id, sku, name, category, qty_on_hand, cost_cny, cost_usd, price_usd, price_leone, reorder_threshold, barcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			qty_on_hand = EXCLUDED.qty_on_hand,
			cost_cny = EXCLUDED.cost_cny,
			cost_usd = EXCLUDED.cost_usd,
			price_usd = EXCLUDED.price_usd,
			price_leone = EXCLUDED.price_leone,
			reorder_threshold = EXCLUDED.reorder_threshold,
			barcode = EXCLUDED.barcode,
			updated_at = EXCLUDED.updated_at
		RETURNING `+productCols,
		p.ID, p.SKU, p.Name, p.Category, p.QtyOnHand, p.CostCny, p.CostUsd,
		p.PriceUsd, p.PriceLeone, p.ReorderThreshold, p.Barcode, now))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product %s: %w", p.SKU, err)
	}
	return out, nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ProductNotFoundError{Ref: id}
	}
	return nil
}

// AdjustStock applies a signed manual correction under a row lock and
// records it in the movement trail. It refuses to drive stock negative.
func (s *catalogService) AdjustStock(ctx context.Context, productID string, delta int, reason, userID string) (*Product, error) {
	if delta == 0 {
		return nil, &ValidationError{Field: "delta", Reason: "adjustment cannot be zero"}
	}
	if reason == "" {
		reason = "manual_adjustment"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1 FOR UPDATE`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{Ref: productID}
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	newQty := p.QtyOnHand + delta
	if newQty < 0 {
		return nil, &InsufficientStockError{
			SKU:       p.SKU,
			Name:      p.Name,
			Requested: -delta,
			Available: p.QtyOnHand,
		}
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `UPDATE products SET qty_on_hand = $1, updated_at = $2 WHERE id = $3`,
		newQty, now, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO stock_movements (id, product_id, change, reason, reference_id, created_at, user_id)
		 VALUES ($1, $2, $3, $4, '', $5, $6)`,
		uuid.NewString(), p.ID, delta, reason, now, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	p.QtyOnHand = newQty
	p.UpdatedAt = now
	return p, nil
}

// ImportCSV loads products from the 10-column export format:
// sku,name,category,qty,costCny,costUsd,priceUsd,priceLeone,reorderThreshold,barcode.
// The header row and malformed rows are skipped. Returns the imported count.
func (s *catalogService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	count := 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Only malformed CSV rows are skippable; an I/O error repeats
			// forever, so it has to abort the import.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return count, fmt.Errorf("failed to read csv: %w", err)
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == "sku" {
				continue
			}
		}
		p, ok := parseProductRecord(record)
		if !ok {
			continue
		}
		if _, err := s.Upsert(ctx, p); err != nil {
			return count, fmt.Errorf("failed to import row for %s: %w", p.SKU, err)
		}
		count++
	}
	return count, nil
}

func parseProductRecord(record []string) (Product, bool) {
	if len(record) < 10 {
		return Product{}, false
	}
	qty, err := strconv.Atoi(record[3])
	if err != nil || qty < 0 {
		return Product{}, false
	}
	threshold, err := strconv.Atoi(record[8])
	if err != nil || threshold < 0 {
		return Product{}, false
	}
	decimals := make([]decimal.Decimal, 4)
	for i, idx := range []int{4, 5, 6, 7} {
		d, err := decimal.NewFromString(record[idx])
		if err != nil {
			return Product{}, false
		}
		decimals[i] = d
	}
	if record[0] == "" || record[1] == "" {
		return Product{}, false
	}
	return Product{
		SKU:              record[0],
		Name:             record[1],
		Category:         record[2],
		QtyOnHand:        qty,
		CostCny:          decimals[0],
		CostUsd:          decimals[1],
		PriceUsd:         decimals[2],
		PriceLeone:       decimals[3],
		ReorderThreshold: threshold,
		Barcode:          record[9],
	}, true
}

func (s *catalogService) ListMovements(ctx context.Context, productID string, limit int) ([]StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, change, reason, reference_id, created_at, user_id
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Change, &m.Reason, &m.ReferenceID, &m.CreatedAt, &m.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// SuggestPrices runs the advisor's price formula over every product.
func (s *catalogService) SuggestPrices(ctx context.Context, targetMarginPct decimal.Decimal) ([]PriceSuggestion, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]PriceSuggestion, 0, len(products))
	for _, p := range products {
		priceUsd := SuggestPriceUSD(p.CostUsd, targetMarginPct)
		suggestions = append(suggestions, PriceSuggestion{
			SKU:             p.SKU,
			Name:            p.Name,
			CostUsd:         p.CostUsd,
			TargetMarginPct: targetMarginPct,
			SuggestPriceUsd: priceUsd,
			SuggestPriceNLe: priceUsd.Mul(s.fxUsdToNLe).Round(2),
		})
	}
	return suggestions, nil
}
