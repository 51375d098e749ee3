package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"invoice-ledger-backend/internal/models"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string

	DefaultCurrency models.Currency

	// Logging Configuration
	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	// SweepInterval of 0 disables the background orphan sweep.
	SweepInterval time.Duration
	LockTimeout   time.Duration

	PDFChromiumPath string
	PDFTimeout      time.Duration
}

// Load reads the environment. Call godotenv.Load first to pick up a .env
// file.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		PDFChromiumPath:    getEnv("PDF_CHROMIUM_PATH", ""),
	}

	currency, ok := models.ParseCurrency(getEnv("DEFAULT_CURRENCY", string(models.CurrencyUSD)))
	if !ok {
		return nil, fmt.Errorf("config validation failed: DEFAULT_CURRENCY %q is not supported", os.Getenv("DEFAULT_CURRENCY"))
	}
	cfg.DefaultCurrency = currency

	var err error
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.LockTimeout, err = getDuration("LOCK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.PDFTimeout, err = getDuration("PDF_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("SWEEP_INTERVAL must not be negative")
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("LOCK_TIMEOUT must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
