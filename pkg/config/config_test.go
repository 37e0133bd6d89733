package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "https://ledger.example.com/api")
	t.Setenv("USER_EMAIL", "user@example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "https://finnhub.io/api/v1", cfg.FinnhubBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Empty(t, cfg.LedgerToken)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{name: "missing ledger base url", unset: "LEDGER_BASE_URL"},
		{name: "missing user email", unset: "USER_EMAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.unset)
		})
	}
}

func TestLoad_FinnhubKeyRequiredInProduction(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FINNHUB_API_KEY")

	t.Setenv("FINNHUB_API_KEY", "key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RefreshInterval(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "duration string", value: "90s", want: 90 * time.Second},
		{name: "bare seconds", value: "120", want: 2 * time.Minute},
		{name: "unparseable falls back to default", value: "soon", want: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("QUOTE_REFRESH_INTERVAL", tt.value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.RefreshInterval)
		})
	}
}
