package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"regimenz-pos/internal/config"
	"regimenz-pos/internal/db"
)

type seedProduct struct {
	sku, name, category string
	qty                 int
	costCny, priceUsd   string
	priceLeone          string
	threshold           int
	barcode             string
}

var demoProducts = []seedProduct{
	{"PBK-10000", "Power Bank 10000mAh", "Accessories", 12, "58", "15.00", "375.00", 4, "6941234567001"},
	{"SCR-TECNO-S10", "Screen Tecno Spark 10", "Parts", 6, "120", "28.00", "700.00", 3, "6941234567002"},
	{"EAR-TWS-01", "TWS Earbuds", "Audio", 20, "35", "9.50", "237.50", 0, "6941234567003"},
}

type seedStaff struct {
	staffID, fullName, role, pin string
}

var demoStaff = []seedStaff{
	{"EMP-001", "Alusine Kamara", "cashier", "4321"},
	{"EMP-002", "Mariatu Sesay", "technician", "9876"},
}

type seedUser struct {
	username, password, role string
}

var demoUsers = []seedUser{
	{"admin", "admin123", "admin"},
	{"cashier1", "cash123", "cashier"},
}

// Inserts the demo catalog, staff and login accounts. Existing rows are left
// alone, so reseeding a live database is safe.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range demoProducts {
		costCny, _ := decimal.NewFromString(p.costCny)
		costUsd := costCny.Mul(cfg.FxCnyToUsd).Round(2)
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, sku, name, category, qty_on_hand, cost_cny, cost_usd, price_usd, price_leone, reorder_threshold, barcode)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (sku) DO NOTHING`,
			uuid.NewString(), p.sku, p.name, p.category, p.qty,
			costCny, costUsd, p.priceUsd, p.priceLeone, p.threshold, p.barcode)
		if err != nil {
			log.Fatalf("seed product %s: %v", p.sku, err)
		}
	}

	for _, st := range demoStaff {
		pinHash, err := bcrypt.GenerateFromPassword([]byte(st.pin), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash pin for %s: %v", st.staffID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO staff (staff_id, full_name, role, pin_hash, is_active)
			VALUES ($1, $2, $3, $4, TRUE)
			ON CONFLICT (staff_id) DO NOTHING`,
			st.staffID, st.fullName, st.role, string(pinHash))
		if err != nil {
			log.Fatalf("seed staff %s: %v", st.staffID, err)
		}
	}

	for _, u := range demoUsers {
		passHash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.username, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO users (username, password_hash, role, is_active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (username) DO NOTHING`,
			u.username, string(passHash), u.role)
		if err != nil {
			log.Fatalf("seed user %s: %v", u.username, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Println("seed complete")
}
