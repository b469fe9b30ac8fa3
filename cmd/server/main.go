package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	webAdapter "regimenz-pos/internal/adapters/web"
	"regimenz-pos/internal/app"
	"regimenz-pos/internal/config"
	"regimenz-pos/internal/core"
	"regimenz-pos/internal/db"
	"regimenz-pos/internal/mail"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	alertService := core.NewAlertService(pool, cfg.LowStockDefault)
	saleService := core.NewSaleService(pool, alertService, cfg.FxUsdToNLe)
	catalogService := core.NewCatalogService(pool, cfg.FxCnyToUsd, cfg.FxUsdToNLe)
	staffService := core.NewStaffService(pool)
	userService := core.NewUserService(pool)
	reportingService := core.NewReportingService(saleService, alertService, staffService)
	mailer := mail.New(cfg.SMTP)

	svc := app.New(saleService, catalogService, alertService, staffService, userService, reportingService, mailer)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret)

	log.Printf("server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
