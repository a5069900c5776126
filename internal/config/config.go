// Package config handles loading, validating, and overriding the
// servelive server configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for a servelive process.
type Config struct {
	// Address is the host:port the HTTP server listens on.
	Address string `yaml:"address" mapstructure:"address"`
	// EventPath is the URL path (without leading slash) of the
	// server-sent-event stream.
	EventPath string `yaml:"eventPath" mapstructure:"eventPath"`
	// Debounce is the quiet period used to coalesce bursts of raw
	// filesystem events into a single notification.
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	// LiveReload controls injection of the auto-reload script into HTML.
	LiveReload bool          `yaml:"livereload" mapstructure:"livereload"`
	Preview    PreviewConfig `yaml:"preview"    mapstructure:"preview"`
}

// PreviewConfig controls Markdown preview rendering.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Style   string `yaml:"style"   mapstructure:"style"`
}

// Default returns a Config populated with sensible default values.
func Default() *Config {
	return &Config{
		Address:    "0.0.0.0:3000",
		EventPath:  "events",
		Debounce:   300 * time.Millisecond,
		LiveReload: true,
		Preview: PreviewConfig{
			Enabled: true,
			Style:   "github",
		},
	}
}

// Load reads a YAML configuration file from configPath and returns a
// Config with defaults applied first and file values overlaid on top.
// A missing file is not an error; the tool runs fine with no config file
// at all, so defaults are returned as-is.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the Config for common errors. It returns a descriptive
// error if:
//   - Address is not a valid host:port
//   - EventPath is empty or contains a slash
//   - Debounce is not positive
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("config: address %q is not host:port: %w", c.Address, err)
	}

	path := strings.TrimSpace(c.EventPath)
	if path == "" {
		return fmt.Errorf("config: eventPath is required")
	}
	if strings.Contains(path, "/") {
		return fmt.Errorf("config: eventPath must be a single path segment (got %q)", c.EventPath)
	}

	if c.Debounce <= 0 {
		return fmt.Errorf("config: debounce must be positive (got %s)", c.Debounce)
	}

	return nil
}

// WithOverrides applies CLI flag overrides to the config. Known keys are
// mapped to their corresponding fields. The modified config is returned
// for convenient chaining.
func (c *Config) WithOverrides(overrides map[string]any) *Config {
	for key, val := range overrides {
		switch key {
		case "address":
			if s, ok := val.(string); ok {
				c.Address = s
			}
		case "eventPath":
			if s, ok := val.(string); ok {
				c.EventPath = s
			}
		case "debounce":
			if d, ok := val.(time.Duration); ok {
				c.Debounce = d
			}
		case "livereload":
			if b, ok := val.(bool); ok {
				c.LiveReload = b
			}
		case "preview":
			if b, ok := val.(bool); ok {
				c.Preview.Enabled = b
			}
		}
	}
	return c
}
