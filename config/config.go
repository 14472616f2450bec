// ABOUTME: Application configuration loaded from YAML, .env and LEADGEN_ environment variables
// ABOUTME: Missing config files fall back to defaults; invalid thresholds are rejected at load time
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JFernandez0524/leadgen/charm"
	"github.com/JFernandez0524/leadgen/insights"
)

const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"

	envPrefix    = "LEADGEN"
	DefaultModel = "gemini-2.5-flash"
)

type Business struct {
	Name        string `mapstructure:"name"`
	ServiceType string `mapstructure:"service_type"`
}

type LLM struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type Web struct {
	Port int `mapstructure:"port"`
}

// Config is the full runtime configuration.
type Config struct {
	DBPath         string              `mapstructure:"db_path"`
	Backend        string              `mapstructure:"backend"`
	RequestTimeout time.Duration       `mapstructure:"request_timeout"`
	Web            Web                 `mapstructure:"web"`
	Business       Business            `mapstructure:"business"`
	LLM            LLM                 `mapstructure:"llm"`
	Charm          charm.Config        `mapstructure:"charm"`
	Thresholds     insights.Thresholds `mapstructure:"thresholds"`
}

// DefaultDBPath is the SQLite database under the XDG data directory.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "leadgen", "leadgen.db")
}

// DefaultConfigDir is where config.yaml is looked up.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "leadgen")
}

func setDefaults(v *viper.Viper) {
	th := insights.DefaultThresholds()
	ch := charm.DefaultConfig()

	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("web.port", 8080)
	v.SetDefault("business.name", "")
	v.SetDefault("business.service_type", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.max_tokens", 800)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("charm.host", ch.Host)
	v.SetDefault("charm.auto_sync", ch.AutoSync)
	v.SetDefault("charm.stale_threshold", ch.StaleThreshold)
	v.SetDefault("thresholds.payment_overdue_days", th.PaymentOverdueDays)
	v.SetDefault("thresholds.lead_stale_days", th.LeadStaleDays)
	v.SetDefault("thresholds.rate_window_days", th.RateWindowDays)
	v.SetDefault("thresholds.min_conversion_rate", th.MinConversionRate)
	v.SetDefault("thresholds.min_qualification_rate", th.MinQualificationRate)
	v.SetDefault("thresholds.revenue_decline_rate", th.RevenueDeclineRate)
	v.SetDefault("thresholds.revenue_growth_rate", th.RevenueGrowthRate)
	v.SetDefault("thresholds.schedule_horizon_days", th.ScheduleHorizonDays)
	v.SetDefault("thresholds.heavy_schedule_count", th.HeavyScheduleCount)
}

// Load reads configuration. configFile may be empty, in which case config.yaml is
// searched in the XDG config directory and the working directory. A .env file in
// the working directory is loaded first so LEADGEN_ variables can live there.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the engine or hosts cannot run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendCharm)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", c.Web.Port)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}
