// ABOUTME: Configuration for Charm KV backend connection
// ABOUTME: Handles server settings and auto-sync preferences

package charm

import (
	"time"

	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the Charm KV database.
	AppName = "leadgen"
)

// Config holds charm connection settings.
type Config struct {
	Host string `mapstructure:"host"`

	// AutoSync pushes after every write and pulls on open.
	AutoSync bool `mapstructure:"auto_sync"`

	// StaleThreshold is how old local data may get before a sync is forced.
	StaleThreshold time.Duration `mapstructure:"stale_threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() *Config {
	if c.Host == "" {
		c.Host = DefaultCharmHost
	}
	if c.StaleThreshold == 0 {
		c.StaleThreshold = kv.DefaultStaleThreshold
	}
	return &c
}
