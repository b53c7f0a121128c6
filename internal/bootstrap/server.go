package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/formfill/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/api"
	"github.com/jonesrussell/north-cloud/formfill/internal/config"
)

const (
	defaultReadTimeout = 30 * time.Second
	// Streams clear their own deadline; this bounds the JSON routes.
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// SetupHTTPServer creates the HTTP server with all handlers wired.
func SetupHTTPServer(cfg *config.Config, comps *Components, log infralogger.Logger) *infragin.Server {
	workHandler := api.NewWorkHandler(comps.Service, log)
	sessionHandler := api.NewSessionHandler(comps.Service)

	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithHealthCheck("reference", infragin.PingChecker("reference", true, func(ctx context.Context) error {
			_, err := comps.Loader.Load(ctx)
			return err
		}))

	if comps.Redis != nil {
		builder = builder.WithHealthCheck("redis", infragin.PingChecker("redis", false, func(ctx context.Context) error {
			return comps.Redis.Ping(ctx).Err()
		}))
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			router.Use(comps.Telemetry.HTTPMiddleware())
			router.GET("/metrics", gin.WrapH(comps.Telemetry.Handler()))
			api.SetupRoutes(router, workHandler, sessionHandler, comps.Broker, log, cfg.Auth.JWTSecret)
		}).
		Build()
}
