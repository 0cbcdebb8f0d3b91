package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultLookbackDays = 30
	MaxLookbackDays     = 90
)

type Config struct {
	Username     string // TopstepX login name
	APIKey       string
	BaseURL      string // default "https://api.topstepx.com/api"
	DBPath       string // default "./data/trades.db"
	FeeFile      string // custom fee overrides, default "./data/fees.yaml"
	LookbackDays int
	PricePnL     bool // feed prices are dollar-denominated; skip point-value scaling
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Username:     os.Getenv("TOPSTEPX_USERNAME"),
		APIKey:       os.Getenv("TOPSTEPX_API_KEY"),
		BaseURL:      getEnvDefault("TOPSTEPX_BASE_URL", "https://api.topstepx.com/api"),
		DBPath:       getEnvDefault("DATABASE_PATH", "./data/trades.db"),
		FeeFile:      getEnvDefault("FEE_OVERRIDES_PATH", "./data/fees.yaml"),
		LookbackDays: DefaultLookbackDays,
	}

	if v := os.Getenv("PRICE_PNL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PRICE_PNL must be a boolean, got %q", v)
		}
		cfg.PricePnL = b
	}

	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LOOKBACK_DAYS must be an integer, got %q", v)
		}
		cfg.LookbackDays = n
	}

	if cfg.Username == "" {
		return nil, fmt.Errorf("TOPSTEPX_USERNAME is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("TOPSTEPX_API_KEY is required")
	}
	if cfg.LookbackDays < 1 || cfg.LookbackDays > MaxLookbackDays {
		return nil, fmt.Errorf("LOOKBACK_DAYS must be between 1 and %d, got %d", MaxLookbackDays, cfg.LookbackDays)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
