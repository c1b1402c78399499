package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Scraping  ScrapingConfig  `yaml:"scraping"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	API       APIConfig       `yaml:"api"`
	Export    ExportConfig    `yaml:"export"`
}

type AppConfig struct {
	Name       string `yaml:"name"`
	Env        string `yaml:"env"`
	LogLevel   string `yaml:"log_level"`
	LogConsole bool   `yaml:"log_console"`
	Timezone   string `yaml:"timezone"`
}

type ScrapingConfig struct {
	Boliga BoligaConfig `yaml:"boliga"`
}

type BoligaConfig struct {
	BaseURL     string            `yaml:"base_url"`
	SearchPath  string            `yaml:"search_path"`
	PageSize    int               `yaml:"page_size"`
	PostalFrom  int               `yaml:"postal_from"`
	PostalTo    int               `yaml:"postal_to"`
	UserAgent   string            `yaml:"user_agent"`
	Timeout     time.Duration     `yaml:"timeout"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	RetryPolicy RetryPolicyConfig `yaml:"retry_policy"`
	Selectors   SelectorConfig    `yaml:"selectors"`

	// PropertyType is used when a run does not name one.
	PropertyType string `yaml:"property_type"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type RetryPolicyConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// SelectorConfig overrides the CSS selectors of the results page.
// Empty values keep the built-in selectors.
type SelectorConfig struct {
	ResultCount string `yaml:"result_count"`
	Row         string `yaml:"row"`
	Address     string `yaml:"address"`
	PriceCell   int    `yaml:"price_cell"`
}

type GeocodingConfig struct {
	BaseURL         string          `yaml:"base_url"`
	ServiceName     string          `yaml:"service_name"`
	Method          string          `yaml:"method"`
	SRS             string          `yaml:"srs"`
	CredentialsFile string          `yaml:"credentials_file"`
	Timeout         time.Duration   `yaml:"timeout"`
	Workers         int             `yaml:"workers"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Cache           CacheConfig     `yaml:"cache"`
}

type CacheConfig struct {
	Size      int           `yaml:"size"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

type ExportConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file or variable overrides it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:       "salgspriser",
			Env:        "development",
			LogLevel:   "info",
			LogConsole: true,
			Timezone:   "Europe/Copenhagen",
		},
		Scraping: ScrapingConfig{
			Boliga: BoligaConfig{
				BaseURL:    "http://www.boliga.dk",
				SearchPath: "/salg/resultater",
				PageSize:   40,
				PostalFrom: 1000,
				PostalTo:   9990,
				UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.5112.102 Safari/537.36",
				Timeout:    30 * time.Second,
				RateLimit:  RateLimitConfig{RequestsPerSecond: 2, Burst: 1},
				RetryPolicy: RetryPolicyConfig{
					MaxAttempts: 1,
					BaseDelay:   500 * time.Millisecond,
				},
				PropertyType: "house",
			},
		},
		Geocoding: GeocodingConfig{
			BaseURL:         "https://kortforsyningen.kms.dk/",
			ServiceName:     "RestGeokeys_v2",
			Method:          "adresse",
			SRS:             "EPSG:4326",
			CredentialsFile: "credentials.txt",
			Timeout:         10 * time.Second,
			Workers:         4,
			RateLimit:       RateLimitConfig{RequestsPerSecond: 10, Burst: 4},
			Cache:           CacheConfig{Size: 4096, TTL: 30 * 24 * time.Hour},
		},
		API:    APIConfig{Addr: ":8080"},
		Export: ExportConfig{Format: "csv", Path: "output/salgspriser.csv"},
	}
}

// LoadConfig reads configs/app.yaml and configs/scraping.yaml under dir on top
// of the defaults, then applies .env and environment overrides.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	// app.yaml holds every section, scraping.yaml only the scraping one
	if err := loadYAML(filepath.Join(dir, "app.yaml"), cfg); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "scraping.yaml"), &cfg.Scraping); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.App.LogLevel = getenv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogConsole = getbool("LOG_CONSOLE", cfg.App.LogConsole)

	b := &cfg.Scraping.Boliga
	b.BaseURL = getenv("SALG_BASE_URL", b.BaseURL)
	b.UserAgent = getenv("SALG_USER_AGENT", b.UserAgent)
	b.PropertyType = getenv("SALG_PROPERTY_TYPE", b.PropertyType)
	b.Timeout = getduration("SALG_TIMEOUT", b.Timeout)
	b.RetryPolicy.MaxAttempts = getint("SALG_MAX_ATTEMPTS", b.RetryPolicy.MaxAttempts)

	g := &cfg.Geocoding
	g.BaseURL = getenv("GEOCODER_BASE_URL", g.BaseURL)
	g.CredentialsFile = getenv("GEOCODER_CREDENTIALS_FILE", g.CredentialsFile)
	g.Workers = getint("GEOCODER_WORKERS", g.Workers)
	g.Timeout = getduration("GEOCODER_TIMEOUT", g.Timeout)
	g.Cache.Size = getint("GEOCODER_CACHE_SIZE", g.Cache.Size)
	g.Cache.RedisAddr = getenv("REDIS_ADDR", g.Cache.RedisAddr)

	cfg.API.Addr = getenv("API_ADDR", cfg.API.Addr)
	cfg.Export.Format = getenv("EXPORT_FORMAT", cfg.Export.Format)
	cfg.Export.Path = getenv("EXPORT_PATH", cfg.Export.Path)
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	b := c.Scraping.Boliga
	switch {
	case b.BaseURL == "":
		return errors.New("config: scraping.boliga.base_url is required")
	case b.PageSize <= 0:
		return fmt.Errorf("config: scraping.boliga.page_size must be positive, got %d", b.PageSize)
	case b.PostalFrom > b.PostalTo:
		return fmt.Errorf("config: postal_from %d is greater than postal_to %d", b.PostalFrom, b.PostalTo)
	case b.RetryPolicy.MaxAttempts < 1:
		return fmt.Errorf("config: retry_policy.max_attempts must be at least 1, got %d", b.RetryPolicy.MaxAttempts)
	case !validType(b.PropertyType):
		return fmt.Errorf("config: unknown scraping.boliga.property_type %q", b.PropertyType)
	case c.Geocoding.BaseURL == "":
		return errors.New("config: geocoding.base_url is required")
	case c.Geocoding.Workers < 1:
		return fmt.Errorf("config: geocoding.workers must be at least 1, got %d", c.Geocoding.Workers)
	}
	return nil
}

func validType(s string) bool {
	_, err := domain.ParsePropertyType(s)
	return err == nil
}

// Location returns the configured time zone, falling back to local time.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.App.Timezone); err == nil {
		return loc
	}
	return time.Local
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
