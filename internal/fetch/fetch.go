// Package fetch retrieves page markup for offline extraction. Static pages are
// fetched with colly; pages that build their forms in script are rendered in a
// headless browser with rod.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	colly "github.com/gocolly/colly/v2"

	infraerrors "github.com/jonesrussell/north-cloud/formfill/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrEmptyURL is returned when no URL is given.
var ErrEmptyURL = errors.New("url is required")

// Fetcher returns the markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Static fetches raw server markup.
type Static struct {
	timeout   time.Duration
	userAgent string
	logger    infralogger.Logger
}

// NewStatic creates a static fetcher. A zero timeout means 30s.
func NewStatic(timeout time.Duration, logger infralogger.Logger) *Static {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Static{timeout: timeout, userAgent: defaultUserAgent, logger: logger}
}

// Fetch implements Fetcher.
func (s *Static) Fetch(ctx context.Context, url string) (string, error) {
	if err := checkURL(url); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(s.userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.timeout)

	var (
		body     string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		s.logger.Debug("Page fetched",
			infralogger.String("url", r.Request.URL.String()),
			infralogger.Int("status", r.StatusCode),
			infralogger.Int("bytes", len(r.Body)),
		)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			if httpErr := infraerrors.FromResponse(r.StatusCode, r.Body); httpErr != nil {
				fetchErr = httpErr
				return
			}
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return "", infraerrors.WrapWithContextf(fetchErr, "fetch %s", url)
	}
	return body, nil
}

// For picks the rendered or the static fetcher.
func For(render bool, timeout time.Duration, logger infralogger.Logger) Fetcher {
	if render {
		return NewRendered(timeout, logger)
	}
	return NewStatic(timeout, logger)
}

func checkURL(url string) error {
	if url == "" {
		return fmt.Errorf("fetch: %w", ErrEmptyURL)
	}
	return nil
}
