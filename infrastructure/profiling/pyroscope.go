package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

// PyroscopeProfiler wraps a running continuous profiler.
type PyroscopeProfiler struct {
	profiler *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling when
// ENABLE_CONTINUOUS_PROFILING=true. It returns (nil, nil) when disabled.
//
// PYROSCOPE_SERVER_URL, PYROSCOPE_ENVIRONMENT and APP_VERSION tune the upload.
func StartPyroscope(serviceName string, log infralogger.Logger) (*PyroscopeProfiler, error) {
	if os.Getenv("ENABLE_CONTINUOUS_PROFILING") != "true" {
		return nil, nil //nolint:nilnil // disabled is not an error
	}

	cfg := pyroscope.Config{
		ApplicationName: "formfill." + serviceName,
		ServerAddress:   envOr("PYROSCOPE_SERVER_URL", "http://pyroscope:4040"),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": envOr("PYROSCOPE_ENVIRONMENT", "development"),
			"version":     envOr("APP_VERSION", "unknown"),
			"hostname":    hostname(),
			"go_version":  runtime.Version(),
		},
	}

	profiler, err := pyroscope.Start(cfg)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		infralogger.String("application", cfg.ApplicationName),
		infralogger.String("server", cfg.ServerAddress),
	)

	return &PyroscopeProfiler{profiler: profiler}, nil
}

// Stop flushes and stops the profiler. It is safe on a nil receiver.
func (p *PyroscopeProfiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
