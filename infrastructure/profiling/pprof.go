// Package profiling starts optional profilers. Both are disabled unless
// switched on through the environment.
package profiling

import (
	"errors"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // bound to localhost only
	"os"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

const (
	defaultPprofPort  = "6060"
	pprofReadTimeout  = 10 * time.Second
	pprofWriteTimeout = 60 * time.Second
)

// StartPprofServer serves net/http/pprof on localhost:$PPROF_PORT when
// ENABLE_PROFILING=true.
func StartPprofServer(log infralogger.Logger) {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}

	srv := &http.Server{
		Addr:         "localhost:" + port,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  pprofReadTimeout,
		WriteTimeout: pprofWriteTimeout,
	}

	go func() {
		log.Info("Starting pprof server", infralogger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", infralogger.Error(err))
		}
	}()
}
