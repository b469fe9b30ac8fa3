package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AlertService finds products at or below their reorder threshold.
type AlertService interface {
	Scan(ctx context.Context) ([]LowStockAlert, error)
}

type alertService struct {
	pool             *pgxpool.Pool
	defaultThreshold int
}

func NewAlertService(pool *pgxpool.Pool, defaultThreshold int) AlertService {
	return &alertService{pool: pool, defaultThreshold: defaultThreshold}
}

// Scan is a read-only projection over the catalog. A product whose own
// threshold is zero is judged against the system-wide default instead.
func (s *alertService) Scan(ctx context.Context) ([]LowStockAlert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sku, name, qty_on_hand,
		       CASE WHEN reorder_threshold = 0 THEN $1 ELSE reorder_threshold END AS threshold
		FROM products
		WHERE qty_on_hand <= CASE WHEN reorder_threshold = 0 THEN $1 ELSE reorder_threshold END
		ORDER BY qty_on_hand ASC, sku ASC`,
		s.defaultThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for low stock: %w", err)
	}
	defer rows.Close()

	var alerts []LowStockAlert
	for rows.Next() {
		var a LowStockAlert
		if err := rows.Scan(&a.ProductID, &a.SKU, &a.Name, &a.QtyOnHand, &a.Threshold); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
