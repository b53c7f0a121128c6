package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/formfill/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/formfill/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/formfill/internal/classifier"
	"github.com/jonesrussell/north-cloud/formfill/internal/config"
	"github.com/jonesrussell/north-cloud/formfill/internal/notify"
	"github.com/jonesrussell/north-cloud/formfill/internal/reference"
	"github.com/jonesrussell/north-cloud/formfill/internal/service"
	"github.com/jonesrussell/north-cloud/formfill/internal/session"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

// Components holds the wired service graph.
type Components struct {
	Service   *service.Service
	Broker    sse.Broker
	Redis     *goredis.Client
	Loader    *reference.Loader
	Stream    *notify.Stream
	Sweeper   *session.Sweeper
	Telemetry *telemetry.Provider

	cfg    *config.Config
	logger infralogger.Logger
}

// SetupComponents builds the classifier, notifiers, loader, registry and
// service from cfg. Nothing is started yet.
func SetupComponents(
	ctx context.Context,
	cfg *config.Config,
	log infralogger.Logger,
	tp *telemetry.Provider,
) (*Components, error) {
	client, clientErr := classifier.NewProviderClient(ctx, classifier.ProviderConfig{
		Provider:  cfg.Classifier.Provider,
		Model:     cfg.Classifier.Model,
		APIKey:    cfg.Classifier.APIKey,
		MaxTokens: cfg.Classifier.MaxTokens,
	})
	if clientErr != nil {
		return nil, fmt.Errorf("classifier client: %w", clientErr)
	}

	guarded := classifier.NewGuardedClient(client, classifier.GuardConfig{
		CallTimeout:       cfg.Classifier.CallTimeout,
		RequestsPerSecond: cfg.Classifier.RequestsPerSecond,
		Burst:             cfg.Classifier.Burst,
		Breaker: circuitbreaker.Config{
			FailureThreshold: cfg.Classifier.BreakerFailures,
			SuccessThreshold: cfg.Classifier.BreakerSuccesses,
			Timeout:          cfg.Classifier.BreakerCooldown,
		},
	}, log, tp)
	cls := classifier.New(guarded, cfg.Classifier.MaxWorkers, log, tp)

	broker := sse.NewBroker(log,
		sse.WithEventBufferSize(cfg.Events.EventBufferSize),
		sse.WithClientBufferSize(cfg.Events.ClientBufferSize),
		sse.WithMaxClients(cfg.Events.MaxClients),
		sse.WithShutdownTimeout(cfg.Events.ShutdownTimeout),
	)

	comps := &Components{
		Broker:    broker,
		Loader:    reference.NewLoader(cfg.Reference.Path, log),
		Telemetry: tp,
		cfg:       cfg,
		logger:    log,
	}

	sinks := notify.Multi{notify.NewSSE(broker, log, tp)}
	if cfg.Redis.Enabled {
		redisClient, redisErr := infraredis.NewClient(ctx, infraredis.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if redisErr != nil {
			return nil, fmt.Errorf("redis: %w", redisErr)
		}
		comps.Redis = redisClient
		comps.Stream = notify.NewStream(redisClient, log, tp,
			notify.WithStreamName(cfg.Redis.Stream),
			notify.WithMaxLen(cfg.Redis.MaxLen),
		)
		sinks = append(sinks, comps.Stream)
		log.Info("Redis stream notifications enabled", infralogger.String("stream", cfg.Redis.Stream))
	}

	registry := session.NewRegistry()
	if cfg.Session.SweepEnabled {
		sweeper, sweepErr := session.NewSweeper(registry, cfg.Session.SweepSchedule, cfg.Session.MaxAge, log)
		if sweepErr != nil {
			comps.closeRedis()
			return nil, fmt.Errorf("session sweeper: %w", sweepErr)
		}
		comps.Sweeper = sweeper
	}

	comps.Service = service.New(registry, cls, comps.Loader, sinks, log, tp)
	return comps, nil
}

// Start launches the broker, the reference watcher and the sweeper.
func (c *Components) Start(ctx context.Context) error {
	if err := c.Broker.Start(ctx); err != nil {
		return fmt.Errorf("start broker: %w", err)
	}
	if c.cfg.Reference.WatchEnabled() {
		if err := c.Loader.Watch(ctx); err != nil {
			c.logger.Warn("Reference watch unavailable, caching until restart", infralogger.Error(err))
		}
	}
	if c.Sweeper != nil {
		c.Sweeper.Start()
	}
	return nil
}

// Close stops everything Start launched, lets running sessions finish
// reporting, then releases connections.
func (c *Components) Close() {
	if c.Sweeper != nil {
		c.Sweeper.Stop()
	}
	c.Service.Close()
	c.Stream.Wait()
	c.Loader.Stop()
	if err := c.Broker.Stop(); err != nil {
		c.logger.Warn("Broker stop failed", infralogger.Error(err))
	}
	c.closeRedis()
}

func (c *Components) closeRedis() {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Close(); err != nil {
		c.logger.Warn("Redis close failed", infralogger.Error(err))
	}
}
