package fetch

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	infraerrors "github.com/jonesrussell/north-cloud/formfill/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

// stableWindow is how long the DOM must stay unchanged before capture.
const stableWindow = 500 * time.Millisecond

// Rendered loads a page in headless Chromium and returns the live DOM.
type Rendered struct {
	timeout time.Duration
	logger  infralogger.Logger
}

// NewRendered creates a rendering fetcher. A zero timeout means 30s.
func NewRendered(timeout time.Duration, logger infralogger.Logger) *Rendered {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Rendered{timeout: timeout, logger: logger}
}

// Fetch implements Fetcher. Each call launches and tears down its own browser.
func (r *Rendered) Fetch(ctx context.Context, url string) (string, error) {
	if err := checkURL(url); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	l := launcher.New().Headless(true).Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return "", infraerrors.WrapWithContext(err, "launch browser")
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err = browser.Connect(); err != nil {
		return "", infraerrors.WrapWithContext(err, "connect browser")
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			r.logger.Debug("Browser close failed", infralogger.Error(closeErr))
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return "", infraerrors.WrapWithContextf(err, "open %s", url)
	}
	if err = page.WaitLoad(); err != nil {
		return "", infraerrors.WrapWithContextf(err, "load %s", url)
	}
	if err = page.WaitStable(stableWindow); err != nil {
		r.logger.Debug("Page did not settle, capturing anyway",
			infralogger.String("url", url),
			infralogger.Error(err),
		)
	}

	markup, err := page.HTML()
	if err != nil {
		return "", infraerrors.WrapWithContextf(err, "read DOM of %s", url)
	}

	r.logger.Debug("Page rendered",
		infralogger.String("url", url),
		infralogger.Int("bytes", len(markup)),
	)
	return markup, nil
}
