package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Env string

	// Remote ledger store
	LedgerBaseURL string
	LedgerToken   string
	UserEmail     string

	// Finnhub market data
	FinnhubAPIKey  string
	FinnhubBaseURL string

	// Quote refresh
	RefreshInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		LedgerBaseURL:   getEnv("LEDGER_BASE_URL", ""),
		LedgerToken:     getEnv("LEDGER_TOKEN", ""),
		UserEmail:       getEnv("USER_EMAIL", ""),
		FinnhubAPIKey:   getEnv("FINNHUB_API_KEY", ""),
		FinnhubBaseURL:  getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		RefreshInterval: getEnvAsDuration("QUOTE_REFRESH_INTERVAL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.LedgerBaseURL == "" {
		return fmt.Errorf("LEDGER_BASE_URL is required")
	}

	if c.UserEmail == "" {
		return fmt.Errorf("USER_EMAIL is required")
	}

	// Finnhub key is required in production but optional in development
	if c.FinnhubAPIKey == "" && c.IsProduction() {
		return fmt.Errorf("FINNHUB_API_KEY is required in production")
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("QUOTE_REFRESH_INTERVAL must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
