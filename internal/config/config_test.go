package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Address != "0.0.0.0:3000" {
		t.Errorf("expected default address 0.0.0.0:3000, got %q", cfg.Address)
	}
	if cfg.EventPath != "events" {
		t.Errorf("expected default event path 'events', got %q", cfg.EventPath)
	}
	if cfg.Debounce != 300*time.Millisecond {
		t.Errorf("expected default debounce 300ms, got %s", cfg.Debounce)
	}
	if !cfg.LiveReload {
		t.Error("expected live reload enabled by default")
	}
	if !cfg.Preview.Enabled {
		t.Error("expected preview enabled by default")
	}
	if cfg.Preview.Style != "github" {
		t.Errorf("expected default preview style 'github', got %q", cfg.Preview.Style)
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "servelive.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing config file, got error: %v", err)
	}
	if cfg.Address != "0.0.0.0:3000" {
		t.Errorf("expected default address, got %q", cfg.Address)
	}
}

func TestLoad_OverlaysFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servelive.yaml")
	content := "address: 127.0.0.1:8080\neventPath: changes\ndebounce: 450ms\nlivereload: false\npreview:\n  enabled: false\n  style: monokai\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Address != "127.0.0.1:8080" {
		t.Errorf("expected address from file, got %q", cfg.Address)
	}
	if cfg.EventPath != "changes" {
		t.Errorf("expected event path from file, got %q", cfg.EventPath)
	}
	if cfg.Debounce != 450*time.Millisecond {
		t.Errorf("expected debounce 450ms, got %s", cfg.Debounce)
	}
	if cfg.LiveReload {
		t.Error("expected live reload disabled by file")
	}
	if cfg.Preview.Enabled {
		t.Error("expected preview disabled by file")
	}
	if cfg.Preview.Style != "monokai" {
		t.Errorf("expected preview style from file, got %q", cfg.Preview.Style)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servelive.yaml")
	if err := os.WriteFile(path, []byte("address: 127.0.0.1:8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Address != "127.0.0.1:8080" {
		t.Errorf("expected address from file, got %q", cfg.Address)
	}
	if cfg.EventPath != "events" {
		t.Errorf("expected default event path to survive, got %q", cfg.EventPath)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servelive.yaml")
	if err := os.WriteFile(path, []byte("address: [not a string\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad address", func(c *Config) { c.Address = "nonsense" }, "host:port"},
		{"empty event path", func(c *Config) { c.EventPath = "" }, "eventPath"},
		{"slash in event path", func(c *Config) { c.EventPath = "a/b" }, "single path segment"},
		{"zero debounce", func(c *Config) { c.Debounce = 0 }, "debounce"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, "debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestWithOverrides(t *testing.T) {
	cfg := Default().WithOverrides(map[string]any{
		"address":    "127.0.0.1:9000",
		"eventPath":  "reload",
		"debounce":   200 * time.Millisecond,
		"livereload": false,
		"preview":    false,
	})

	if cfg.Address != "127.0.0.1:9000" {
		t.Errorf("expected overridden address, got %q", cfg.Address)
	}
	if cfg.EventPath != "reload" {
		t.Errorf("expected overridden event path, got %q", cfg.EventPath)
	}
	if cfg.Debounce != 200*time.Millisecond {
		t.Errorf("expected overridden debounce, got %s", cfg.Debounce)
	}
	if cfg.LiveReload {
		t.Error("expected live reload disabled by override")
	}
	if cfg.Preview.Enabled {
		t.Error("expected preview disabled by override")
	}
}

func TestWithOverrides_IgnoresWrongTypes(t *testing.T) {
	cfg := Default().WithOverrides(map[string]any{
		"address":  42,
		"debounce": "fast",
		"unknown":  true,
	})

	if cfg.Address != "0.0.0.0:3000" {
		t.Errorf("expected address untouched by wrong-typed override, got %q", cfg.Address)
	}
	if cfg.Debounce != 300*time.Millisecond {
		t.Errorf("expected debounce untouched by wrong-typed override, got %s", cfg.Debounce)
	}
}
