package config

import (
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds all runtime settings, read from the environment with defaults.
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	AllowedOrigins string

	// FxUsdToNLe converts a sale's USD total into New Leones.
	FxUsdToNLe decimal.Decimal
	// FxCnyToUsd normalizes supplier costs quoted in CNY into USD.
	FxCnyToUsd decimal.Decimal
	// LowStockDefault is the reorder threshold applied to products
	// whose own threshold is zero.
	LowStockDefault int

	SMTP SMTPConfig
}

// SMTPConfig configures the low-stock alert mailer.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// Load reads configuration from the environment. Precedence: explicit env var
// > .env file (loaded by the caller via godotenv) > default.
func Load() Config {
	return Config{
		Port:            getEnv("SERVER_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		AllowedOrigins:  os.Getenv("ALLOWED_ORIGINS"),
		FxUsdToNLe:      getEnvDecimal("FX_USD_TO_NLE", "25"),
		FxCnyToUsd:      getEnvDecimal("FX_CNY_TO_USD", "0.14"),
		LowStockDefault: getEnvInt("LOW_STOCK_DEFAULT", 5),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			To:       os.Getenv("SMTP_TO"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer for %s: %s", key, v)
		return def
	}
	return n
}

func getEnvDecimal(key, def string) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		log.Printf("invalid decimal for %s: %s", key, v)
		d, _ = decimal.NewFromString(def)
	}
	return d
}
