package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/jonesrussell/north-cloud/formfill/infrastructure/config"
	"github.com/jonesrussell/north-cloud/formfill/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "service:\n  name: formfill\n"))
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Service.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "anthropic", cfg.Classifier.Provider)
	assert.Equal(t, 4, cfg.Classifier.MaxWorkers)
	assert.Equal(t, int64(4096), cfg.Classifier.MaxTokens)
	assert.Equal(t, 90*time.Second, cfg.Classifier.CallTimeout)
	assert.Equal(t, "./context.txt", cfg.Reference.Path)
	assert.True(t, cfg.Reference.WatchEnabled())
	assert.False(t, cfg.Session.SweepEnabled)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 1000, cfg.Events.MaxClients)
	assert.Equal(t, 5*time.Second, cfg.Events.ShutdownTimeout)
	assert.Empty(t, cfg.Service.CORSOrigins)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "formfill:actions", cfg.Redis.Stream)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	t.Setenv("CLASSIFIER_PROVIDER", "gemini")
	t.Setenv("CLASSIFIER_MAX_WORKERS", "8")
	t.Setenv("REDIS_ENABLED", "true")

	path := writeConfig(t, `
service:
  port: 8099
  debug: true
  cors_origins: ["https://forms.example.com"]
classifier:
  model: gemini-2.5-pro
  call_timeout: 30s
  requests_per_second: 0.5
reference:
  path: /etc/formfill/context.txt
  watch: false
session:
  sweep_enabled: true
  sweep_schedule: "@hourly"
  max_age: 30m
redis:
  address: redis:6379
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8099, cfg.Service.Port)
	assert.Equal(t, []string{"https://forms.example.com"}, cfg.Service.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level, "debug mode lowers the default level")
	assert.Equal(t, "gemini", cfg.Classifier.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Classifier.Model)
	assert.Equal(t, 8, cfg.Classifier.MaxWorkers)
	assert.Equal(t, 30*time.Second, cfg.Classifier.CallTimeout)
	assert.InDelta(t, 0.5, cfg.Classifier.RequestsPerSecond, 0.0001)
	assert.Equal(t, "/etc/formfill/context.txt", cfg.Reference.Path)
	assert.False(t, cfg.Reference.WatchEnabled())
	assert.Equal(t, "@hourly", cfg.Session.SweepSchedule)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxAge)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"port", "service:\n  port: 70000\n", "service.port"},
		{"log level", "logging:\n  level: loud\n", "logging.level"},
		{"provider", "classifier:\n  provider: openai\n", "classifier.provider"},
		{"negative workers", "classifier:\n  max_workers: -1\n", "classifier.max_workers"},
		{"too many workers", "classifier:\n  max_workers: 500\n", "classifier.max_workers"},
		{"negative timeout", "classifier:\n  call_timeout: -1s\n", "classifier.call_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)

			var validationErr *infraconfig.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
