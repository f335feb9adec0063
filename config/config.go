package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"backtestAnalyzer/internal/adapters/logger"
	"backtestAnalyzer/internal/ports"
)

// Config holds all application configuration.
// Issue thresholds are not configurable; reports from different runs must stay comparable.
type Config struct {
	// Loading
	LoadWorkers int // Max input files parsed concurrently

	// Report
	TopTrades   int     // Largest wins/losses listed
	TopTickers  int     // Tickers listed by trade count
	AccountSize float64 // Equity base for drawdown percentages

	// Database
	JournalDBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.LoadWorkers, err = getEnvAsIntRequired("LOAD_WORKERS", 4)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOAD_WORKERS: %v", err))
	} else if cfg.LoadWorkers < 1 {
		errs = append(errs, "LOAD_WORKERS must be at least 1")
	}

	cfg.TopTrades, err = getEnvAsIntRequired("TOP_TRADES", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TOP_TRADES: %v", err))
	} else if cfg.TopTrades < 0 {
		errs = append(errs, "TOP_TRADES cannot be negative")
	}

	cfg.TopTickers, err = getEnvAsIntRequired("TOP_TICKERS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TOP_TICKERS: %v", err))
	} else if cfg.TopTickers < 0 {
		errs = append(errs, "TOP_TICKERS cannot be negative")
	}

	cfg.AccountSize, err = getEnvAsFloatRequired("ACCOUNT_SIZE", 25000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ACCOUNT_SIZE: %v", err))
	} else if cfg.AccountSize <= 0 {
		errs = append(errs, "ACCOUNT_SIZE must be positive")
	}

	// Database
	cfg.JournalDBPath = getEnv("TRADE_JOURNAL_DB", "./data/trade_journal.db")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "WARN"))

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
