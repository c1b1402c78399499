package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadConfig_DefaultsWhenNoFiles(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	b := cfg.Scraping.Boliga
	if b.PageSize != 40 || b.PostalFrom != 1000 || b.PostalTo != 9990 {
		t.Fatalf("unexpected boliga defaults: %+v", b)
	}
	if cfg.Geocoding.SRS != "EPSG:4326" {
		t.Fatalf("srs=%q want EPSG:4326", cfg.Geocoding.SRS)
	}
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", `
app:
  log_level: debug
geocoding:
  workers: 2
  timeout: 3s
  cache:
    size: 16
`)
	writeFile(t, dir, "scraping.yaml", `
boliga:
  base_url: http://localhost:9999
  page_size: 40
  postal_from: 1000
  postal_to: 9990
  retry_policy:
    max_attempts: 3
    base_delay: 10ms
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("log level=%q", cfg.App.LogLevel)
	}
	if cfg.Geocoding.Workers != 2 || cfg.Geocoding.Timeout != 3*time.Second || cfg.Geocoding.Cache.Size != 16 {
		t.Errorf("geocoding overlay not applied: %+v", cfg.Geocoding)
	}
	if cfg.Scraping.Boliga.BaseURL != "http://localhost:9999" {
		t.Errorf("base url=%q", cfg.Scraping.Boliga.BaseURL)
	}
	if cfg.Scraping.Boliga.RetryPolicy.MaxAttempts != 3 || cfg.Scraping.Boliga.RetryPolicy.BaseDelay != 10*time.Millisecond {
		t.Errorf("retry policy=%+v", cfg.Scraping.Boliga.RetryPolicy)
	}
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "geocoding:\n  workers: 2\n")
	t.Setenv("GEOCODER_WORKERS", "7")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("LOG_CONSOLE", "false")
	t.Setenv("SALG_PROPERTY_TYPE", "Ejerlejlighed")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Geocoding.Workers != 7 {
		t.Errorf("workers=%d want 7", cfg.Geocoding.Workers)
	}
	if cfg.Geocoding.Cache.RedisAddr != "localhost:6380" {
		t.Errorf("redis addr=%q", cfg.Geocoding.Cache.RedisAddr)
	}
	if cfg.App.LogConsole {
		t.Error("LOG_CONSOLE=false should disable console output")
	}
	if cfg.Scraping.Boliga.PropertyType != "Ejerlejlighed" {
		t.Errorf("property type=%q", cfg.Scraping.Boliga.PropertyType)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.yaml", "app: [unterminated")
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"page size", func(c *Config) { c.Scraping.Boliga.PageSize = 0 }},
		{"postal span", func(c *Config) { c.Scraping.Boliga.PostalFrom = 9999 }},
		{"workers", func(c *Config) { c.Geocoding.Workers = 0 }},
		{"attempts", func(c *Config) { c.Scraping.Boliga.RetryPolicy.MaxAttempts = 0 }},
		{"base url", func(c *Config) { c.Scraping.Boliga.BaseURL = "" }},
		{"property type", func(c *Config) { c.Scraping.Boliga.PropertyType = "castle" }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
