// Package config holds the formfill service configuration.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/formfill/infrastructure/config"
)

// Default service configuration values.
const (
	defaultServiceName    = "formfill"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 5001
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Default classifier configuration values.
const (
	defaultProvider          = "anthropic"
	defaultMaxWorkers        = 4
	defaultMaxTokens         = 4096
	defaultCallTimeout       = 90 * time.Second
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
	defaultBreakerFailures   = 5
	defaultBreakerSuccesses  = 1
	defaultBreakerCooldown   = 30 * time.Second
)

// Default session, reference and event values.
const (
	defaultReferencePath  = "./context.txt"
	defaultSweepSchedule  = "*/10 * * * *"
	defaultSessionMaxAge  = 2 * time.Hour
	defaultEventBuffer    = 1000
	defaultClientBuffer   = 100
	defaultMaxClients     = 1000
	defaultEventsShutdown = 5 * time.Second
	defaultStreamName     = "formfill:actions"
	defaultStreamMaxLen   = 10000
	defaultRedisAddress   = "localhost:6379"
	defaultLogLevelDebug  = "debug"
	providerAnthropic     = "anthropic"
	providerGemini        = "gemini"
	maxWorkersUpperBound  = 64
	defaultWatchReference = true
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Reference  ReferenceConfig  `yaml:"reference"`
	Session    SessionConfig    `yaml:"session"`
	Events     EventsConfig     `yaml:"events"`
	Redis      RedisConfig      `yaml:"redis"`
}

// ServiceConfig holds service identity and runtime settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"FORMFILL_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"     yaml:"debug"`
	// CORSOrigins empty allows any origin.
	CORSOrigins []string `yaml:"cors_origins"`
}

// AuthConfig holds authentication settings for the admin routes.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// ClassifierConfig selects the model provider and bounds its use.
type ClassifierConfig struct {
	Provider          string        `env:"CLASSIFIER_PROVIDER"   yaml:"provider"`
	Model             string        `env:"CLASSIFIER_MODEL"      yaml:"model"`
	APIKey            string        `env:"CLASSIFIER_API_KEY"    yaml:"api_key"`
	MaxTokens         int64         `yaml:"max_tokens"`
	MaxWorkers        int           `env:"CLASSIFIER_MAX_WORKERS" yaml:"max_workers"`
	CallTimeout       time.Duration `env:"CLASSIFIER_CALL_TIMEOUT" yaml:"call_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	BreakerFailures   int           `yaml:"breaker_failures"`
	BreakerSuccesses  int           `yaml:"breaker_successes"`
	BreakerCooldown   time.Duration `yaml:"breaker_cooldown"`
}

// ReferenceConfig locates the context document.
type ReferenceConfig struct {
	Path  string `env:"REFERENCE_PATH" yaml:"path"`
	Watch *bool  `yaml:"watch"`
}

// WatchEnabled reports whether file changes invalidate the cached document.
func (r ReferenceConfig) WatchEnabled() bool {
	return r.Watch == nil || *r.Watch
}

// SessionConfig controls the stale-session sweep.
type SessionConfig struct {
	SweepEnabled  bool          `env:"SESSION_SWEEP_ENABLED" yaml:"sweep_enabled"`
	SweepSchedule string        `yaml:"sweep_schedule"`
	MaxAge        time.Duration `yaml:"max_age"`
}

// EventsConfig sizes the SSE broker.
type EventsConfig struct {
	EventBufferSize  int `yaml:"event_buffer_size"`
	ClientBufferSize int `yaml:"client_buffer_size"`
	MaxClients       int `yaml:"max_clients"`
	// ShutdownTimeout bounds how long Stop waits for open streams to drain.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig enables the Redis stream sink.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Stream   string `yaml:"stream"`
	MaxLen   int64  `yaml:"max_len"`
}

// Load loads configuration from a YAML file, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	cfg, loadErr := infraconfig.LoadWithDefaults(path, setDefaults)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel("logging.level", c.Logging.Level); err != nil {
		return err
	}
	if err := infraconfig.ValidateOneOf("classifier.provider", c.Classifier.Provider,
		providerAnthropic, providerGemini); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("classifier.max_workers", c.Classifier.MaxWorkers); err != nil {
		return err
	}
	if c.Classifier.MaxWorkers > maxWorkersUpperBound {
		return &infraconfig.ValidationError{
			Field:   "classifier.max_workers",
			Message: fmt.Sprintf("must be at most %d", maxWorkersUpperBound),
		}
	}
	if c.Classifier.CallTimeout <= 0 {
		return &infraconfig.ValidationError{Field: "classifier.call_timeout", Message: "must be positive"}
	}
	if err := infraconfig.ValidateRequired("reference.path", c.Reference.Path); err != nil {
		return err
	}
	if c.Session.SweepEnabled {
		if err := infraconfig.ValidateRequired("session.sweep_schedule", c.Session.SweepSchedule); err != nil {
			return err
		}
	}
	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults applies default values to all configuration sections.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLoggingDefaults(&cfg.Logging, cfg.Service.Debug)
	setClassifierDefaults(&cfg.Classifier)
	setReferenceDefaults(&cfg.Reference)
	setSessionDefaults(&cfg.Session)
	setEventsDefaults(&cfg.Events)
	setRedisDefaults(&cfg.Redis)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setLoggingDefaults(l *LoggingConfig, debug bool) {
	if l.Level == "" {
		l.Level = defaultLogLevel
		if debug {
			l.Level = defaultLogLevelDebug
		}
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setClassifierDefaults(c *ClassifierConfig) {
	if c.Provider == "" {
		c.Provider = defaultProvider
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.MaxWorkers == 0 {
		c.MaxWorkers = defaultMaxWorkers
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.Burst == 0 {
		c.Burst = defaultBurst
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = defaultBreakerFailures
	}
	if c.BreakerSuccesses == 0 {
		c.BreakerSuccesses = defaultBreakerSuccesses
	}
	if c.BreakerCooldown == 0 {
		c.BreakerCooldown = defaultBreakerCooldown
	}
}

func setReferenceDefaults(r *ReferenceConfig) {
	if r.Path == "" {
		r.Path = defaultReferencePath
	}
	if r.Watch == nil {
		watch := defaultWatchReference
		r.Watch = &watch
	}
}

func setSessionDefaults(s *SessionConfig) {
	if s.SweepSchedule == "" {
		s.SweepSchedule = defaultSweepSchedule
	}
	if s.MaxAge == 0 {
		s.MaxAge = defaultSessionMaxAge
	}
}

func setEventsDefaults(e *EventsConfig) {
	if e.EventBufferSize == 0 {
		e.EventBufferSize = defaultEventBuffer
	}
	if e.ClientBufferSize == 0 {
		e.ClientBufferSize = defaultClientBuffer
	}
	if e.MaxClients == 0 {
		e.MaxClients = defaultMaxClients
	}
	if e.ShutdownTimeout == 0 {
		e.ShutdownTimeout = defaultEventsShutdown
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.Stream == "" {
		r.Stream = defaultStreamName
	}
	if r.MaxLen == 0 {
		r.MaxLen = defaultStreamMaxLen
	}
}
