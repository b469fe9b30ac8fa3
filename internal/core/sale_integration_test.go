package core_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"regimenz-pos/internal/core"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE sale_lines, sales, stock_movements, products, attendance, staff, users CASCADE;

		INSERT INTO products (id, sku, name, category, qty_on_hand, cost_cny, cost_usd, price_usd, price_leone, reorder_threshold, barcode) VALUES
		('prod-a1', 'A1', 'Widget A', 'widgets', 10, 0, 5.00, 8.00, 200.00, 0, ''),
		('prod-b2', 'B2', 'Widget B', 'widgets', 4,  0, 2.00, 3.50, 87.50,  2, '');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return pool, ctx
}

func newSaleService(pool *pgxpool.Pool) core.SaleService {
	alerts := core.NewAlertService(pool, 5)
	return core.NewSaleService(pool, alerts, decimal.NewFromInt(25))
}

func productQty(t *testing.T, ctx context.Context, pool *pgxpool.Pool, sku string) int {
	t.Helper()
	var qty int
	if err := pool.QueryRow(ctx, `SELECT qty_on_hand FROM products WHERE sku = $1`, sku).Scan(&qty); err != nil {
		t.Fatalf("Failed to read qty for %s: %v", sku, err)
	}
	return qty
}

func countRows(t *testing.T, ctx context.Context, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func TestSale_Commit(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	result, err := svc.Commit(ctx, core.SaleInput{
		CashierID: "cashier1",
		Lines: []core.SaleLineInput{
			{SKU: "A1", Qty: 3, UnitPriceUsd: decimal.NewFromInt(8)},
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if qty := productQty(t, ctx, pool, "A1"); qty != 7 {
		t.Errorf("Expected qty_on_hand=7 after sale, got %d", qty)
	}
	if !result.Sale.TotalUsd.Equal(decimal.NewFromInt(24)) {
		t.Errorf("Expected total 24, got %s", result.Sale.TotalUsd)
	}
	if !result.Sale.TotalLeone.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected leone total 600 at fx 25, got %s", result.Sale.TotalLeone)
	}
	if !result.Verdict.ProfitUsd.Equal(decimal.NewFromInt(9)) {
		t.Errorf("Expected profit 9, got %s", result.Verdict.ProfitUsd)
	}
	if result.Verdict.Message != "Healthy profit." {
		t.Errorf("Unexpected verdict message: %q", result.Verdict.Message)
	}

	// One movement row, negative, tied to the sale
	var change int
	var reason, ref string
	err = pool.QueryRow(ctx,
		`SELECT change, reason, reference_id FROM stock_movements WHERE product_id = 'prod-a1'`).
		Scan(&change, &reason, &ref)
	if err != nil {
		t.Fatalf("Failed to read stock movement: %v", err)
	}
	if change != -3 || reason != "sale" || ref != result.Sale.ID {
		t.Errorf("Unexpected movement: change=%d reason=%s ref=%s", change, reason, ref)
	}
}

func TestSale_InsufficientStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	_, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "A1", Qty: 11, UnitPriceUsd: decimal.NewFromInt(8)},
		},
	})
	var stockErr *core.InsufficientStockError
	if err == nil {
		t.Fatal("Expected insufficient stock error")
	}
	if !asError(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 11 || stockErr.Available != 10 {
		t.Errorf("Unexpected error detail: %+v", stockErr)
	}

	if qty := productQty(t, ctx, pool, "A1"); qty != 10 {
		t.Errorf("Expected stock untouched at 10, got %d", qty)
	}
	if n := countRows(t, ctx, pool, "sales"); n != 0 {
		t.Errorf("Expected no sale rows, got %d", n)
	}
	if n := countRows(t, ctx, pool, "stock_movements"); n != 0 {
		t.Errorf("Expected no movement rows, got %d", n)
	}
}

func TestSale_UnknownProduct(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	_, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "NOPE", Qty: 1, UnitPriceUsd: decimal.NewFromInt(1)},
		},
	})
	var notFound *core.ProductNotFoundError
	if err == nil || !asError(err, &notFound) {
		t.Fatalf("Expected ProductNotFoundError, got %v", err)
	}
	if notFound.Line != 1 || notFound.Ref != "NOPE" {
		t.Errorf("Unexpected error detail: %+v", notFound)
	}
}

func TestSale_MultiLineAtomicity(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	// Line 1 is satisfiable, line 2 is not; nothing may change.
	_, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "A1", Qty: 2, UnitPriceUsd: decimal.NewFromInt(8)},
			{SKU: "B2", Qty: 5, UnitPriceUsd: decimal.NewFromInt(3)},
		},
	})
	var stockErr *core.InsufficientStockError
	if err == nil || !asError(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError on line 2, got %v", err)
	}
	if stockErr.Line != 2 {
		t.Errorf("Expected failure on line 2, got line %d", stockErr.Line)
	}

	if qty := productQty(t, ctx, pool, "A1"); qty != 10 {
		t.Errorf("Expected A1 untouched at 10, got %d", qty)
	}
	if qty := productQty(t, ctx, pool, "B2"); qty != 4 {
		t.Errorf("Expected B2 untouched at 4, got %d", qty)
	}
	if n := countRows(t, ctx, pool, "sales"); n != 0 {
		t.Errorf("Expected no sale rows, got %d", n)
	}
}

func TestSale_DuplicateProductLines(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	// Two lines for the same product must be validated against the combined
	// quantity: 6+6 exceeds the 10 on hand even though each line alone fits.
	_, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "A1", Qty: 6, UnitPriceUsd: decimal.NewFromInt(8)},
			{SKU: "A1", Qty: 6, UnitPriceUsd: decimal.NewFromInt(8)},
		},
	})
	var stockErr *core.InsufficientStockError
	if err == nil || !asError(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if stockErr.Line != 2 {
		t.Errorf("Expected failure on line 2, got line %d", stockErr.Line)
	}
	if stockErr.Available != 4 {
		t.Errorf("Expected 4 available after line 1's claim of 6, got %d", stockErr.Available)
	}
	if qty := productQty(t, ctx, pool, "A1"); qty != 10 {
		t.Errorf("Expected stock untouched at 10, got %d", qty)
	}
	if n := countRows(t, ctx, pool, "sales"); n != 0 {
		t.Errorf("Expected no sale rows, got %d", n)
	}

	// A combined quantity that fits commits normally.
	result, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "A1", Qty: 4, UnitPriceUsd: decimal.NewFromInt(8)},
			{SKU: "A1", Qty: 4, UnitPriceUsd: decimal.NewFromInt(8)},
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if !result.Sale.TotalUsd.Equal(decimal.NewFromInt(64)) {
		t.Errorf("Expected total 64, got %s", result.Sale.TotalUsd)
	}
	if qty := productQty(t, ctx, pool, "A1"); qty != 2 {
		t.Errorf("Expected qty 2 after selling 8, got %d", qty)
	}
}

func TestSale_ValidationRejectsEmptyAndNonPositive(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	var validationErr *core.ValidationError

	_, err := svc.Commit(ctx, core.SaleInput{})
	if err == nil || !asError(err, &validationErr) {
		t.Fatalf("Expected ValidationError for empty sale, got %v", err)
	}

	_, err = svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{{SKU: "A1", Qty: 0}},
	})
	if err == nil || !asError(err, &validationErr) {
		t.Fatalf("Expected ValidationError for zero qty, got %v", err)
	}
}

func TestSale_DefaultFxApplied(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	result, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "B2", Qty: 2, UnitPriceUsd: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if !result.Sale.FxUsdToNLe.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected default fx 25, got %s", result.Sale.FxUsdToNLe)
	}
	if !result.Sale.TotalLeone.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected leone total 100, got %s", result.Sale.TotalLeone)
	}
}

func TestSale_LedgerAppendOnly(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	var ids []string
	for i := 0; i < 3; i++ {
		result, err := svc.Commit(ctx, core.SaleInput{
			Lines: []core.SaleLineInput{
				{SKU: "A1", Qty: 1, UnitPriceUsd: decimal.NewFromInt(8)},
			},
		})
		if err != nil {
			t.Fatalf("Commit %d failed: %v", i, err)
		}
		ids = append(ids, result.Sale.ID)
	}

	if n := countRows(t, ctx, pool, "sales"); n != 3 {
		t.Fatalf("Expected 3 sale rows, got %d", n)
	}

	// Earlier sales remain readable and unchanged after later commits.
	first, err := svc.GetSale(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetSale failed: %v", err)
	}
	if !first.TotalUsd.Equal(decimal.NewFromInt(8)) {
		t.Errorf("Expected first sale total 8, got %s", first.TotalUsd)
	}
	if len(first.Lines) != 1 || first.Lines[0].SKU != "A1" {
		t.Errorf("Unexpected first sale lines: %+v", first.Lines)
	}
}

func TestSale_AlertScanFailureDoesNotFailCommit(t *testing.T) {
	pool, ctx := setupTestDB(t)

	// An alert service over a closed pool fails every scan; the committed
	// sale must still come back, just without the advisory alert set.
	deadPool, err := pgxpool.New(ctx, os.Getenv("TEST_DATABASE_URL"))
	if err != nil {
		t.Fatalf("Failed to open second pool: %v", err)
	}
	deadPool.Close()

	svc := core.NewSaleService(pool, core.NewAlertService(deadPool, 5), decimal.NewFromInt(25))
	result, err := svc.Commit(ctx, core.SaleInput{
		Lines: []core.SaleLineInput{
			{SKU: "A1", Qty: 3, UnitPriceUsd: decimal.NewFromInt(8)},
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.LowStockAlerts != nil {
		t.Errorf("Expected no alerts when the scan fails, got %+v", result.LowStockAlerts)
	}
	if qty := productQty(t, ctx, pool, "A1"); qty != 7 {
		t.Errorf("Expected sale applied with qty 7, got %d", qty)
	}
	if n := countRows(t, ctx, pool, "sales"); n != 1 {
		t.Errorf("Expected the sale row persisted, got %d", n)
	}
}

func TestSale_ConcurrentCommitsNeverOversell(t *testing.T) {
	pool, ctx := setupTestDB(t)
	svc := newSaleService(pool)

	// 10 on hand, 8 workers each buying 3: at most 3 can succeed.
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Commit(ctx, core.SaleInput{
				Lines: []core.SaleLineInput{
					{SKU: "A1", Qty: 3, UnitPriceUsd: decimal.NewFromInt(8)},
				},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *core.InsufficientStockError
		if !asError(err, &stockErr) {
			t.Errorf("Unexpected error kind: %v", err)
		}
	}
	if succeeded != 3 {
		t.Errorf("Expected exactly 3 successful commits, got %d", succeeded)
	}

	qty := productQty(t, ctx, pool, "A1")
	if qty != 10-succeeded*3 {
		t.Errorf("Expected qty %d, got %d", 10-succeeded*3, qty)
	}
	if qty < 0 {
		t.Error("Stock went negative")
	}
	if n := countRows(t, ctx, pool, "sales"); n != succeeded {
		t.Errorf("Expected %d sale rows, got %d", succeeded, n)
	}
}
