package config

import (
	"testing"
	"time"

	"invoice-ledger-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, models.CurrencyUSD, cfg.DefaultCurrency)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.SweepInterval)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, 15*time.Second, cfg.PDFTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SWEEP_INTERVAL", "10m")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyEUR, cfg.DefaultCurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database": {"DATABASE_URL": ""},
		"bad currency":     {"DEFAULT_CURRENCY": "GBP"},
		"bad duration":     {"LOCK_TIMEOUT": "soon"},
		"negative sweep":   {"SWEEP_INTERVAL": "-1s"},
		"bad log format":   {"LOG_FORMAT": "xml"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
