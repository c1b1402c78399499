// Package app wires the pipeline from configuration. Both commands use it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/geocoding"
	"github.com/ps-vitor/salgspriser/internal/metrics"
	"github.com/ps-vitor/salgspriser/internal/repositories"
	"github.com/ps-vitor/salgspriser/internal/scrapers/boliga"
	"github.com/ps-vitor/salgspriser/internal/services/property"
	"github.com/ps-vitor/salgspriser/internal/services/scraping"
)

type App struct {
	Config   *config.Config
	Metrics  *metrics.Provider
	Repo     repositories.PropertyRepository
	Scraper  *scraping.ScraperService
	Property *property.PropertyService
	// DefaultType comes from scraping.boliga.property_type.
	DefaultType domain.PropertyType

	closers []io.Closer
}

// New builds every component. A configured Redis that cannot be reached is
// logged and skipped; the in-memory cache still works.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, version string) (*App, error) {
	prov := metrics.Init(version)

	defaultType, err := domain.ParsePropertyType(cfg.Scraping.Boliga.PropertyType)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	lister, err := boliga.New(boliga.Options{
		Config:  cfg.Scraping.Boliga,
		Logger:  log,
		Metrics: prov.Pipeline,
	})
	if err != nil {
		return nil, fmt.Errorf("listing client: %w", err)
	}

	geo, err := geocoding.New(geocoding.Options{
		Config:      cfg.Geocoding,
		Credentials: Credentials(cfg.Geocoding),
		Logger:      log,
		Metrics:     prov.Pipeline,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoder: %w", err)
	}

	a := &App{Config: cfg, Metrics: prov, DefaultType: defaultType}

	var store geocoding.Store
	if addr := cfg.Geocoding.Cache.RedisAddr; addr != "" {
		rs, err := geocoding.NewRedisStore(ctx, addr)
		if err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, geocode cache stays in memory")
		} else {
			store = rs
			a.closers = append(a.closers, rs)
		}
	}
	cached, err := geocoding.NewCached(geo, geocoding.CacheOptions{
		Size:    cfg.Geocoding.Cache.Size,
		Store:   store,
		TTL:     cfg.Geocoding.Cache.TTL,
		Logger:  log,
		Metrics: prov.Pipeline,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Repo = repositories.NewMemoryPropertyRepository()
	a.Scraper = scraping.NewScraperService(scraping.Options{
		Lister:   lister,
		Geocoder: cached,
		Repo:     a.Repo,
		Workers:  cfg.Geocoding.Workers,
		Logger:   log,
	})
	a.Property = property.NewPropertyService(a.Repo)
	return a, nil
}

// Credentials prefers GEOCODER_LOGIN/GEOCODER_PASSWORD and falls back to the
// credentials file. config.LoadConfig has already loaded .env into the
// environment. The result is resolved once per App.
func Credentials(cfg config.GeocodingConfig) geocoding.CredentialsProvider {
	return geocoding.Once(geocoding.Chain{
		geocoding.EnvCredentials{},
		geocoding.FileCredentials{Path: cfg.CredentialsFile},
	})
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
