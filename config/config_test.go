// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Uses temp YAML files and LEADGEN_ environment overrides
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFernandez0524/leadgen/insights"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.Equal(t, insights.DefaultThresholds(), cfg.Thresholds)
	assert.True(t, cfg.Charm.AutoSync)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/custom.db
backend: charm
request_timeout: 5s
web:
  port: 9090
business:
  name: Haul Pros
  service_type: junk removal
thresholds:
  payment_overdue_days: 14
  min_conversion_rate: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, BackendCharm, cfg.Backend)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "Haul Pros", cfg.Business.Name)
	assert.Equal(t, "junk removal", cfg.Business.ServiceType)
	assert.Equal(t, 14, cfg.Thresholds.PaymentOverdueDays)
	assert.Equal(t, 25.0, cfg.Thresholds.MinConversionRate)
	// Unset thresholds keep their defaults.
	assert.Equal(t, 3, cfg.Thresholds.LeadStaleDays)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LEADGEN_LLM_API_KEY", "secret")
	t.Setenv("LEADGEN_WEB_PORT", "7000")
	t.Setenv("LEADGEN_THRESHOLDS_LEAD_STALE_DAYS", "5")

	cfg, err := Load(writeConfig(t, "web:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 7000, cfg.Web.Port)
	assert.Equal(t, 5, cfg.Thresholds.LeadStaleDays)
}

func TestLoadMissingSearchPathUsesDefaults(t *testing.T) {
	origHome := xdg.ConfigHome
	xdg.ConfigHome = t.TempDir()
	defer func() { xdg.ConfigHome = origHome }()
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Backend)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "backend: postgres\n"},
		{"negative window", "thresholds:\n  lead_stale_days: -1\n"},
		{"positive decline", "thresholds:\n  revenue_decline_rate: 5\n"},
		{"bad port", "web:\n  port: 0\n"},
		{"bad max tokens", "llm:\n  max_tokens: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "web: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestDefaultDBPath(t *testing.T) {
	assert.Equal(t, "leadgen.db", filepath.Base(DefaultDBPath()))
	assert.Equal(t, "leadgen", filepath.Base(filepath.Dir(DefaultDBPath())))
}
