package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	infraerrors "github.com/jonesrussell/north-cloud/formfill/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/infrastructure/retry"
)

// Retrying refetches a page when the first attempt hits a network error, a
// 5xx or a 429.
type Retrying struct {
	next   Fetcher
	cfg    retry.Config
	logger infralogger.Logger
}

// WithRetry wraps next. A zero cfg uses retry.DefaultConfig.
func WithRetry(next Fetcher, cfg retry.Config, logger infralogger.Logger) *Retrying {
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = IsTransient
	}
	return &Retrying{next: next, cfg: cfg, logger: logger}
}

// Fetch implements Fetcher.
func (r *Retrying) Fetch(ctx context.Context, url string) (string, error) {
	cfg := r.cfg
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		r.logger.Warn("Fetch failed, retrying",
			infralogger.String("url", url),
			infralogger.Int("attempt", attempt),
			infralogger.Duration("delay", delay),
			infralogger.Error(err),
		)
	}

	var markup string
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		out, err := r.next.Fetch(ctx, url)
		if err != nil {
			return err
		}
		markup = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return markup, nil
}

// IsTransient reports server-side HTTP failures and network errors.
func IsTransient(err error) bool {
	if errors.Is(err, ErrEmptyURL) {
		return false
	}
	var httpErr *infraerrors.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError ||
			httpErr.StatusCode == http.StatusTooManyRequests
	}
	return retry.DefaultIsRetryable(err)
}
