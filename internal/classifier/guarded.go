package classifier

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

const defaultCallTimeout = 90 * time.Second

// GuardConfig bounds calls to a model provider.
type GuardConfig struct {
	// CallTimeout caps a single call. A shard that exceeds it fails its batch.
	CallTimeout time.Duration
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
	Breaker           circuitbreaker.Config
}

// GuardedClient wraps a Client with a rate limiter, a circuit breaker and a
// per-call timeout. Failed calls are not retried.
type GuardedClient struct {
	next      Client
	limiter   *rate.Limiter
	breaker   *circuitbreaker.Breaker
	timeout   time.Duration
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewGuardedClient wraps next. tp may be nil.
func NewGuardedClient(next Client, cfg GuardConfig, logger infralogger.Logger, tp *telemetry.Provider) *GuardedClient {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(int(cfg.RequestsPerSecond), 1)
	}

	breakerCfg := cfg.Breaker
	userHook := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		logger.Warn("Classifier circuit breaker state changed",
			infralogger.String("from", from.String()),
			infralogger.String("to", to.String()),
		)
		if userHook != nil {
			userHook(from, to)
		}
	}

	return &GuardedClient{
		next:      next,
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   circuitbreaker.New(breakerCfg),
		timeout:   cfg.CallTimeout,
		logger:    logger,
		telemetry: tp,
	}
}

// Complete waits for the limiter, then calls next through the breaker with
// the call timeout applied.
func (g *GuardedClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	var answer string
	start := time.Now()
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		out, err := g.next.Complete(callCtx, req)
		if err != nil {
			return err
		}
		answer = out
		return nil
	})
	elapsed := time.Since(start)
	g.telemetry.RecordCall(req.Pass, err == nil, elapsed)

	if err != nil {
		g.logger.Warn("Classifier call failed",
			infralogger.Pass(req.Pass),
			infralogger.Duration("elapsed", elapsed),
			infralogger.Error(err),
		)
		return "", err
	}
	return answer, nil
}

// BreakerState reports the breaker position.
func (g *GuardedClient) BreakerState() circuitbreaker.State {
	return g.breaker.State()
}
