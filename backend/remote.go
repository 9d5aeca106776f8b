package backend

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/logging"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/resilience"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/transport"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/wire"
)

// RemoteConfig configures the remote ingestion backend.
type RemoteConfig struct {
	Host      string
	PublicKey string
	SecretKey string

	Environment string
	Release     string
	Version     string

	Timeout           time.Duration
	MaxRetries        int
	BreakerThreshold  uint32
	BreakerCoolDown   time.Duration
	RequestsPerSecond float64
}

// Remote encodes events to the ingestion wire format and delivers them
// synchronously, one wire event per request. Delivery failures are logged
// and counted by the breaker, never surfaced to the producer.
type Remote struct {
	encoder *wire.Encoder
	client  *transport.Client
	logger  *logging.Logger
}

// NewRemote creates the remote backend. Missing credentials degrade to
// skipped sends rather than failing startup.
func NewRemote(cfg RemoteConfig, logger *logging.Logger) *Remote {
	return &Remote{
		encoder: wire.NewEncoder(wire.Options{
			Environment: cfg.Environment,
			Release:     cfg.Release,
			Version:     cfg.Version,
		}),
		client: transport.New(transport.Config{
			Host:              cfg.Host,
			PublicKey:         cfg.PublicKey,
			SecretKey:         cfg.SecretKey,
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			BreakerThreshold:  cfg.BreakerThreshold,
			BreakerCoolDown:   cfg.BreakerCoolDown,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, logger),
		logger: logger,
	}
}

func (r *Remote) Emit(ev event.Event) {
	envelopes, err := r.encoder.Encode(ev)
	if err != nil {
		r.logger.Error("encode event", zap.Error(err), zap.String("kind", string(ev.Kind())))
		return
	}

	// One wire event per request, reference behavior.
	for _, envelope := range envelopes {
		err := r.client.Send(context.Background(), []wire.Envelope{envelope})
		switch {
		case err == nil:
		case errors.Is(err, transport.ErrNotConfigured), errors.Is(err, resilience.ErrCircuitOpen):
			r.logger.Debug("telemetry delivery skipped", zap.Error(err))
		default:
			r.logger.Warn("telemetry delivery failed",
				zap.Error(err),
				zap.String("kind", string(ev.Kind())),
				zap.String("event_id", envelope.ID),
			)
		}
	}
}

func (r *Remote) Close() error { return nil }
