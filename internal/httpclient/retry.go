package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/domain"
)

// Retry holds the parameters for the retry strategy. The zero value tries once.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *zerolog.Logger
}

// Do executes fn with exponential back-off. Only transport failures and
// 5xx/429 responses are retried.
func (r Retry) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := r.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts || !retryable(lastErr) {
			break
		}
		if r.Logger != nil {
			r.Logger.Warn().Err(lastErr).
				Str("op", op).
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Dur("backoff", delay).
				Msg("request failed, retrying")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	if attempts > 1 && retryable(lastErr) {
		return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
	}
	return lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *domain.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded)
}
