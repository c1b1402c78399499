// Package httpclient configures the HTTP client used to call the listing site and the geocoder.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

// maxBody is the default cap on a response body.
const maxBody = 16 << 20

// ErrBodyTooLarge is returned instead of a truncated body.
var ErrBodyTooLarge = errors.New("response body too large")

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewOutbound creates a new outbound http client
func NewOutbound(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// NewLimiter returns nil (no limit) when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Fetcher issues rate-limited GET requests with a per-request timeout.
type Fetcher struct {
	Client    Doer
	Limiter   *rate.Limiter
	Retry     Retry
	UserAgent string
	Timeout   time.Duration
	// MaxBody caps the response size; zero means 16 MiB.
	MaxBody int64
}

// Get fetches rawURL and returns the body. Non-2xx responses become *domain.StatusError.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := f.Retry.Do(ctx, redactRaw(rawURL), func(ctx context.Context) error {
		b, err := f.get(ctx, rawURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(req)
		}
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, &domain.StatusError{URL: redact(req), StatusCode: res.StatusCode}
	}

	limit := f.MaxBody
	if limit <= 0 {
		limit = maxBody
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", redact(req), ErrBodyTooLarge, limit)
	}
	return b, nil
}

func redactRaw(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	u.RawQuery = ""
	return u.String()
}

// redact drops the query string so credentials never end up in errors or logs.
func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}
