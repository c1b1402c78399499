// Package geocoding turns listing addresses into coordinates using the
// national address service.
package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/httpclient"
	"github.com/ps-vitor/salgspriser/internal/metrics"
)

const upstream = "geocoder"

type Geocoder interface {
	Geocode(ctx context.Context, a domain.Address) (domain.GeoCoordinate, error)
}

type Options struct {
	Config      config.GeocodingConfig
	Credentials CredentialsProvider
	HTTP        httpclient.Doer
	Logger      zerolog.Logger
	Metrics     *metrics.Pipeline
	// Bounds defaults to domain.Denmark.
	Bounds *domain.Bounds
}

// Client asks the address service for at most one hit per address.
type Client struct {
	fetcher *httpclient.Fetcher
	base    *url.URL
	service string
	method  string
	srs     string
	creds   CredentialsProvider
	bounds  domain.Bounds
	log     zerolog.Logger
	metrics *metrics.Pipeline
}

func New(opts Options) (*Client, error) {
	cfg := opts.Config
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse geocoder url: %w", err)
	}
	if opts.Credentials == nil {
		return nil, fmt.Errorf("geocoder: %w", ErrNoCredentials)
	}

	doer := opts.HTTP
	if doer == nil {
		doer = httpclient.NewOutbound(cfg.Timeout)
	}
	bounds := domain.Denmark
	if opts.Bounds != nil {
		bounds = *opts.Bounds
	}
	srs := cfg.SRS
	if srs == "" {
		srs = "EPSG:4326"
	}

	return &Client{
		fetcher: &httpclient.Fetcher{
			Client:  doer,
			Limiter: httpclient.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
			Timeout: cfg.Timeout,
		},
		base:    base,
		service: cfg.ServiceName,
		method:  cfg.Method,
		srs:     srs,
		creds:   opts.Credentials,
		bounds:  bounds,
		log:     opts.Logger.With().Str("component", "geocoder").Logger(),
		metrics: opts.Metrics,
	}, nil
}

// RequestURL builds the lookup URL. It carries the credentials and must
// never be logged.
func (c *Client) RequestURL(a domain.Address, cr Credentials) string {
	v := url.Values{}
	if c.service != "" {
		v.Set("servicename", c.service)
	}
	if c.method != "" {
		v.Set("method", c.method)
	}
	v.Set("vejnavn", a.Street)
	v.Set("husnr", a.HouseNumber)
	v.Set("postnr", a.PostalCode)
	v.Set("hits", "1")
	v.Set("geometry", "true")
	v.Set("georef", c.srs)
	v.Set("login", cr.Login)
	v.Set("password", cr.Password)

	u := *c.base
	u.RawQuery = v.Encode()
	return u.String()
}

// Geocode returns the coordinate of a. A response without features yields
// domain.ErrNoMatch and a hit outside the bounds domain.ErrOutOfBounds.
func (c *Client) Geocode(ctx context.Context, a domain.Address) (domain.GeoCoordinate, error) {
	cr, err := c.creds.Credentials(ctx)
	if err != nil {
		return domain.GeoCoordinate{}, fmt.Errorf("load geocoder credentials: %w", err)
	}

	start := time.Now()
	body, err := c.fetcher.Get(ctx, c.RequestURL(a, cr))
	c.metrics.ObserveUpstream(upstream, start)
	if err != nil {
		c.metrics.IncGeocode(metrics.OutcomeError)
		return domain.GeoCoordinate{}, fmt.Errorf("geocode %q: %w", a.String(), err)
	}

	coord, err := ParseResponse(body)
	switch {
	case err == nil:
	case domain.IsGeocodeMiss(err):
		c.metrics.IncGeocode(metrics.OutcomeNoMatch)
		return domain.GeoCoordinate{}, fmt.Errorf("geocode %q: %w", a.String(), err)
	default:
		c.metrics.IncGeocode(metrics.OutcomeError)
		return domain.GeoCoordinate{}, fmt.Errorf("geocode %q: %w", a.String(), err)
	}

	if !c.bounds.Contains(coord) {
		c.metrics.IncGeocode(metrics.OutcomeOutBounds)
		return domain.GeoCoordinate{}, fmt.Errorf("geocode %q at %.5f,%.5f: %w",
			a.String(), coord.Latitude, coord.Longitude, domain.ErrOutOfBounds)
	}

	c.metrics.IncGeocode(metrics.OutcomeHit)
	c.log.Debug().
		Str("address", a.String()).
		Float64("lat", coord.Latitude).
		Float64("lon", coord.Longitude).
		Msg("geocoded")
	return coord, nil
}

// ParseResponse reads the first feature of a geocoder answer. GeoJSON
// positions are [lon, lat]; the result carries them in named fields.
func ParseResponse(body []byte) (domain.GeoCoordinate, error) {
	body = NormalizeGeoJSON(body)

	features, err := decodeFeatures(body)
	if err != nil {
		return domain.GeoCoordinate{}, &domain.ParseError{Field: "geojson", Reason: err.Error()}
	}
	if len(features) == 0 {
		return domain.GeoCoordinate{}, domain.ErrNoMatch
	}

	var pt orb.Point
	switch g := features[0].Geometry.(type) {
	case orb.Point:
		pt = g
	case orb.MultiPoint:
		if len(g) == 0 {
			return domain.GeoCoordinate{}, domain.ErrNoMatch
		}
		pt = g[0]
	case nil:
		return domain.GeoCoordinate{}, domain.ErrNoMatch
	default:
		pt = g.Bound().Center()
	}
	return domain.GeoCoordinate{Latitude: pt.Lat(), Longitude: pt.Lon()}, nil
}

// decodeFeatures accepts a FeatureCollection or a bare Feature.
func decodeFeatures(body []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(body)
		if err != nil {
			return nil, err
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(body)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{f}, nil
	default:
		snippet := string(bytes.TrimSpace(body))
		if len(snippet) > 120 {
			snippet = snippet[:120]
		}
		return nil, fmt.Errorf("unexpected payload type %q: %s", head.Type, strings.ReplaceAll(snippet, "\n", " "))
	}
}
