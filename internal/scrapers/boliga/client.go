// internal/scrapers/boliga/client.go
package boliga

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/config"
	"github.com/ps-vitor/salgspriser/internal/domain"
	"github.com/ps-vitor/salgspriser/internal/httpclient"
	"github.com/ps-vitor/salgspriser/internal/metrics"
)

const upstream = "boliga"

// Client reads the paginated sold-listings search.
type Client struct {
	fetcher    *httpclient.Fetcher
	searchURL  string
	postalFrom int
	postalTo   int
	schema     *RowSchema
	log        zerolog.Logger
	metrics    *metrics.Pipeline
}

type Options struct {
	Config  config.BoligaConfig
	HTTP    httpclient.Doer
	Logger  zerolog.Logger
	Metrics *metrics.Pipeline
}

func New(opts Options) (*Client, error) {
	cfg := opts.Config
	schema, err := NewRowSchema(cfg.Selectors, cfg.PageSize)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + cfg.SearchPath)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}

	doer := opts.HTTP
	if doer == nil {
		doer = httpclient.NewOutbound(cfg.Timeout)
	}
	log := opts.Logger.With().Str("component", "listing_fetcher").Logger()

	return &Client{
		fetcher: &httpclient.Fetcher{
			Client:    doer,
			Limiter:   httpclient.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Retry: httpclient.Retry{
				MaxAttempts: cfg.RetryPolicy.MaxAttempts,
				BaseDelay:   cfg.RetryPolicy.BaseDelay,
				Logger:      &log,
			},
		},
		searchURL:  base.String(),
		postalFrom: cfg.PostalFrom,
		postalTo:   cfg.PostalTo,
		schema:     schema,
		log:        log,
		metrics:    opts.Metrics,
	}, nil
}

// PageSize is the number of rows on a full results page.
func (c *Client) PageSize() int { return c.schema.PageSize }

// SearchURL builds the results URL; page 0 omits the page parameter.
func (c *Client) SearchURL(q domain.Query, page int) string {
	v := url.Values{}
	v.Set("so", "1")
	v.Set("type", q.Type.Token())
	v.Set("fraPostnr", strconv.Itoa(c.postalFrom))
	v.Set("tilPostnr", strconv.Itoa(c.postalTo))
	v.Set("minsaledate", strconv.Itoa(q.StartYear))
	v.Set("maxsaledate", q.EndYear.String())
	if page > 0 {
		v.Set("p", strconv.Itoa(page))
	}
	return c.searchURL + "?" + v.Encode()
}

// Pages is ceil(total/pageSize).
func Pages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageCount fetches the first results page without a page number and
// returns how many pages cover the result set, and the total.
func (c *Client) PageCount(ctx context.Context, q domain.Query) (pages, total int, err error) {
	doc, err := c.document(ctx, c.SearchURL(q, 0))
	if err != nil {
		return 0, 0, fmt.Errorf("count results: %w", err)
	}
	total, err = c.schema.ParseResultCount(doc)
	if err != nil {
		return 0, 0, err
	}
	pages = Pages(total, c.schema.PageSize)
	c.log.Info().Int("total", total).Int("pages", pages).Stringer("query", q).Msg("result count")
	return pages, total, nil
}

// FetchPage fetches and parses one results page. last marks the final page,
// the only one expected to be short.
func (c *Client) FetchPage(ctx context.Context, q domain.Query, page int, last bool) ([]domain.Listing, error) {
	doc, err := c.document(ctx, c.SearchURL(q, page))
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	c.metrics.IncPages()

	listings, err := c.schema.ParseRows(doc, page)
	if err != nil {
		return nil, err
	}
	c.metrics.AddListings(len(listings))

	if !last && len(listings) < c.schema.PageSize {
		c.log.Warn().Int("page", page).Int("rows", len(listings)).Msg("short page before the last one")
	}
	c.log.Debug().Int("page", page).Int("rows", len(listings)).Msg("page parsed")
	return listings, nil
}

// FetchAll walks pages 1..pages in order and hands each page to fn.
func (c *Client) FetchAll(ctx context.Context, q domain.Query, pages int, fn func(page int, listings []domain.Listing) error) error {
	for p := 1; p <= pages; p++ {
		listings, err := c.FetchPage(ctx, q, p, p == pages)
		if err != nil {
			return err
		}
		if err := fn(p, listings); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	start := time.Now()
	body, err := c.fetcher.Get(ctx, rawURL)
	c.metrics.ObserveUpstream(upstream, start)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}
