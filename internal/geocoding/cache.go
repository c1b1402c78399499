package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/metrics"
)

// Store is a shared second cache tier.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisStore keeps geocoder answers in Redis so they survive restarts.
// Only coordinates are stored, never the dataset.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     16,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %q: %w", key, err)
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// CacheKey identifies an address independent of case and spacing.
func CacheKey(a domain.Address) string {
	norm := strings.Join([]string{
		strings.ToLower(strings.Join(strings.Fields(a.Street), " ")),
		strings.ToLower(strings.TrimSpace(a.HouseNumber)),
		strings.TrimSpace(a.PostalCode),
	}, "|")
	return fmt.Sprintf("geo:%s:%016x", strings.TrimSpace(a.PostalCode), xxhash.Sum64String(norm))
}

const (
	missNoMatch   = "no_match"
	missOutBounds = "out_of_bounds"
)

type entry struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Miss string  `json:"miss,omitempty"`
}

func (e entry) result() (domain.GeoCoordinate, error) {
	switch e.Miss {
	case "":
		return domain.GeoCoordinate{Latitude: e.Lat, Longitude: e.Lon}, nil
	case missOutBounds:
		return domain.GeoCoordinate{}, fmt.Errorf("cached: %w", domain.ErrOutOfBounds)
	default:
		return domain.GeoCoordinate{}, fmt.Errorf("cached: %w", domain.ErrNoMatch)
	}
}

// Cached answers repeated addresses from memory, then from Store, before
// asking next. Misses are cached as well as hits; transport errors are not.
type Cached struct {
	next    Geocoder
	mem     *lru.Cache[string, entry]
	store   Store
	ttl     time.Duration
	log     zerolog.Logger
	metrics *metrics.Pipeline
}

type CacheOptions struct {
	Size int
	// Store is optional.
	Store   Store
	TTL     time.Duration
	Logger  zerolog.Logger
	Metrics *metrics.Pipeline
}

func NewCached(next Geocoder, opts CacheOptions) (*Cached, error) {
	size := opts.Size
	if size <= 0 {
		size = 1024
	}
	mem, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("geocode cache: %w", err)
	}
	return &Cached{
		next:    next,
		mem:     mem,
		store:   opts.Store,
		ttl:     opts.TTL,
		log:     opts.Logger.With().Str("component", "geocode_cache").Logger(),
		metrics: opts.Metrics,
	}, nil
}

func (c *Cached) Geocode(ctx context.Context, a domain.Address) (domain.GeoCoordinate, error) {
	key := CacheKey(a)
	if e, ok := c.mem.Get(key); ok {
		c.metrics.IncGeocode(metrics.OutcomeCached)
		return e.result()
	}
	if e, ok := c.fromStore(ctx, key); ok {
		c.mem.Add(key, e)
		c.metrics.IncGeocode(metrics.OutcomeCached)
		return e.result()
	}

	coord, err := c.next.Geocode(ctx, a)
	var e entry
	switch {
	case err == nil:
		e = entry{Lat: coord.Latitude, Lon: coord.Longitude}
	case errors.Is(err, domain.ErrOutOfBounds):
		e = entry{Miss: missOutBounds}
	case errors.Is(err, domain.ErrNoMatch):
		e = entry{Miss: missNoMatch}
	default:
		return coord, err
	}
	c.mem.Add(key, e)
	c.toStore(ctx, key, e)
	return coord, err
}

func (c *Cached) fromStore(ctx context.Context, key string) (entry, bool) {
	if c.store == nil {
		return entry{}, false
	}
	b, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache store read failed")
		return entry{}, false
	}
	if !ok {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return entry{}, false
	}
	return e, true
}

func (c *Cached) toStore(ctx context.Context, key string, e entry) {
	if c.store == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache store write failed")
	}
}
