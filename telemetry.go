// Package telemetry assembles the tracing SDK: configuration, backend
// selection, and a Manager producers instrument against.
//
// There is no hidden global: New builds an explicitly injected
// *trace.Manager, and Shutdown is the owner's responsibility.
//
//	cfg := telemetry.LoadOrDefault()
//	mgr, err := telemetry.New(cfg)
//	if err != nil { ... }
//	defer mgr.Shutdown(context.Background())
//
//	err = mgr.WithTrace(ctx, "checkout", func(ctx context.Context, t *trace.Trace) error {
//		return trace.WithSpan(ctx, "charge-card", func(ctx context.Context, s *trace.Span) error {
//			...
//			return nil
//		})
//	})
package telemetry

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/telemetry/backend"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/logging"
	"github.com/GriffinCanCode/AgentOS/telemetry/trace"
)

// New builds a manager from configuration: diagnostic logger, backend per
// cfg.Mode, enabled switch. Missing remote credentials never fail startup;
// the remote backend degrades to skipping delivery.
func New(cfg *Config) (*trace.Manager, error) {
	if cfg == nil {
		cfg = Default()
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry logger: %w", err)
	}
	logger = logger.Named("telemetry")

	mode := backend.Mode(cfg.Mode)
	if !cfg.Enabled {
		mode = backend.ModeDisabled
	}

	b := backend.ForMode(mode, backend.RemoteConfig{
		Host:              cfg.Host,
		PublicKey:         cfg.PublicKey,
		SecretKey:         cfg.SecretKey,
		Environment:       cfg.Environment,
		Release:           cfg.Release,
		Version:           cfg.Version,
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
		BreakerThreshold:  cfg.BreakerThreshold,
		BreakerCoolDown:   cfg.BreakerCoolDown,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, logger)

	return trace.NewManager(b,
		trace.WithLogger(logger.Logger),
		trace.WithEnabled(cfg.Enabled),
	), nil
}

// NewFromEnv builds a manager from environment variables.
func NewFromEnv() (*trace.Manager, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
