package telemetry

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all telemetry configuration. Values are environment-sourced
// with defaults; remote credentials default to empty, which degrades the
// remote backend to a silent no-op.
type Config struct {
	Enabled bool   `envconfig:"TELEMETRY_ENABLED" default:"true"`
	Mode    string `envconfig:"TELEMETRY_MODE" default:"console"` // disabled, console, remote

	// Delivery tuning. BatchSize and FlushInterval are accepted for
	// compatibility but delivery currently sends one event per request.
	BatchSize     int           `envconfig:"TELEMETRY_BATCH_SIZE" default:"1"`
	FlushInterval time.Duration `envconfig:"TELEMETRY_FLUSH_INTERVAL" default:"10s"`
	MaxRetries    int           `envconfig:"TELEMETRY_MAX_RETRIES" default:"3"`
	Timeout       time.Duration `envconfig:"TELEMETRY_TIMEOUT" default:"10s"`

	// RequestsPerSecond caps outbound ingestion requests; 0 means unlimited.
	RequestsPerSecond float64 `envconfig:"TELEMETRY_RPS" default:"0"`

	BreakerThreshold uint32        `envconfig:"TELEMETRY_BREAKER_THRESHOLD" default:"5"`
	BreakerCoolDown  time.Duration `envconfig:"TELEMETRY_BREAKER_COOLDOWN" default:"30s"`

	Environment string `envconfig:"TELEMETRY_ENVIRONMENT" default:"development"`
	Release     string `envconfig:"TELEMETRY_RELEASE" default:""`
	Version     string `envconfig:"TELEMETRY_VERSION" default:""`

	Host      string `envconfig:"TELEMETRY_HOST" default:"https://cloud.langfuse.com"`
	PublicKey string `envconfig:"TELEMETRY_PUBLIC_KEY" default:""`
	SecretKey string `envconfig:"TELEMETRY_SECRET_KEY" default:""`

	Logging LogConfig
}

// LogConfig holds SDK diagnostic logging configuration.
type LogConfig struct {
	Level       string `envconfig:"TELEMETRY_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"TELEMETRY_LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Enabled:          true,
		Mode:             "console",
		BatchSize:        1,
		FlushInterval:    10 * time.Second,
		MaxRetries:       3,
		Timeout:          10 * time.Second,
		BreakerThreshold: 5,
		BreakerCoolDown:  30 * time.Second,
		Environment:      "development",
		Host:             "https://cloud.langfuse.com",
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
