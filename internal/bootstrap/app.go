// Package bootstrap handles application initialization and lifecycle management
// for the formfill service.
package bootstrap

import (
	"context"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

const serviceName = "formfill"

// Start initializes and runs the formfill service until ctx is done or the
// process receives SIGINT/SIGTERM.
func Start(ctx context.Context) error {
	cfg, configErr := LoadConfig()
	if configErr != nil {
		return fmt.Errorf("config: %w", configErr)
	}

	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	profiling.StartPprofServer(log)
	profiler, profErr := profiling.StartPyroscope(serviceName, log)
	if profErr != nil {
		log.Warn("Continuous profiling disabled", infralogger.Error(profErr))
	}
	defer func() { _ = profiler.Stop() }()

	log.Info("Starting Formfill Service",
		infralogger.String("name", cfg.Service.Name),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("provider", cfg.Classifier.Provider),
	)

	comps, compErr := SetupComponents(ctx, cfg, log, telemetry.NewProvider())
	if compErr != nil {
		return fmt.Errorf("components: %w", compErr)
	}
	defer comps.Close()

	if startErr := comps.Start(ctx); startErr != nil {
		return fmt.Errorf("start components: %w", startErr)
	}

	server := SetupHTTPServer(cfg, comps, log)
	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	log.Info("Formfill Service stopped")
	return nil
}
