package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/config"
)

type sample struct {
	Name    string        `yaml:"name"`
	Port    int           `env:"SAMPLE_PORT"    yaml:"port"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" yaml:"timeout"`
	Nested  struct {
		Enabled bool     `env:"SAMPLE_ENABLED" yaml:"enabled"`
		Tags    []string `env:"SAMPLE_TAGS"    yaml:"tags"`
	} `yaml:"nested"`
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := writeYAML(t, "name: formfill\nport: 8090\ntimeout: 2s\nnested:\n  enabled: true\n")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, "formfill", cfg.Name)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.Nested.Enabled)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "9999")
	t.Setenv("SAMPLE_TIMEOUT", "45s")
	t.Setenv("SAMPLE_ENABLED", "yes")
	t.Setenv("SAMPLE_TAGS", "a, b ,c")

	path := writeYAML(t, "port: 8090\ntimeout: 2s\n")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.True(t, cfg.Nested.Enabled)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Nested.Tags)
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "not-a-number")

	cfg, err := config.Load[sample](writeYAML(t, "port: 8090\n"))
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load[sample](filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadWithDefaults_EnvBeatsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "7000")

	cfg, err := config.LoadWithDefaults(writeYAML(t, "name: x\n"), func(s *sample) {
		if s.Port == 0 {
			s.Port = 8080
		}
		if s.Timeout == 0 {
			s.Timeout = time.Minute
		}
	})
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(config.ConfigPathEnv, "")
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv(config.ConfigPathEnv, "/etc/formfill.yml")
	assert.Equal(t, "/etc/formfill.yml", config.GetConfigPath("config.yml"))
}

func TestValidators(t *testing.T) {
	t.Parallel()

	var vErr *config.ValidationError

	require.ErrorAs(t, config.ValidatePort("service.port", 0), &vErr)
	assert.Equal(t, "service.port", vErr.Field)
	require.NoError(t, config.ValidatePort("service.port", 8090))

	require.Error(t, config.ValidateRequired("reference.path", "  "))
	require.NoError(t, config.ValidateRequired("reference.path", "context.txt"))

	require.Error(t, config.ValidatePositive("classifier.max_workers", 0))
	require.NoError(t, config.ValidatePositive("classifier.max_workers", 4))

	require.Error(t, config.ValidateOneOf("classifier.provider", "openai", "anthropic", "gemini"))
	require.NoError(t, config.ValidateOneOf("classifier.provider", "gemini", "anthropic", "gemini"))

	require.Error(t, config.ValidateLogLevel("logging.level", "loud"))
}
