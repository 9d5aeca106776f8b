package trace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/telemetry/backend"
	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/id"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/logging"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/metrics"
)

// Manager owns trace creation, id generation, the active-trace registry,
// and dispatch to the backend. Construct one explicitly and inject it; there
// is no package-level singleton.
type Manager struct {
	backend backend.Backend
	logger  *logging.Logger
	metrics *metrics.Metrics
	enabled atomic.Bool

	active sync.Map // trace id -> *Trace

	noopOnce sync.Once
	noop     *Trace
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = &logging.Logger{Logger: l}
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled.Store(enabled)
	}
}

// NewManager creates a manager dispatching to the given backend. A nil
// backend means NoOp.
func NewManager(b backend.Backend, opts ...Option) *Manager {
	if b == nil {
		b = backend.NewNoOp()
	}
	m := &Manager{
		backend: b,
		logger:  logging.NewNop(),
		metrics: metrics.Default(),
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled reports whether the manager emits events.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

// SetEnabled flips the global switch. While disabled, StartTrace hands out a
// shared no-op trace so producer call sites need no branches.
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// noopTrace returns the shared inert trace instance.
func (m *Manager) noopTrace() *Trace {
	m.noopOnce.Do(func() {
		m.noop = &Trace{noop: true, manager: m, mutable: newMutable()}
		m.noop.finished.Store(true)
	})
	return m.noop
}

// TraceOption configures a new trace.
type TraceOption func(*traceOptions)

type traceOptions struct {
	userID    string
	sessionID string
	input     any
	metadata  map[string]any
	tags      []string
}

// WithUserID attributes the trace to a user.
func WithUserID(userID string) TraceOption {
	return func(o *traceOptions) { o.userID = userID }
}

// WithSessionID groups the trace into a session.
func WithSessionID(sessionID string) TraceOption {
	return func(o *traceOptions) { o.sessionID = sessionID }
}

// WithInput sets the trace input recorded on the create event.
func WithInput(input any) TraceOption {
	return func(o *traceOptions) { o.input = input }
}

// WithMetadata seeds trace metadata.
func WithMetadata(md map[string]any) TraceOption {
	return func(o *traceOptions) { o.metadata = md }
}

// WithTags seeds trace tags.
func WithTags(tags ...string) TraceOption {
	return func(o *traceOptions) { o.tags = tags }
}

// StartTrace creates a trace, emits its create event synchronously, and
// returns the trace installed in a derived context. When the manager is
// disabled it returns the shared no-op instance and the context unchanged.
func (m *Manager) StartTrace(ctx context.Context, name string, opts ...TraceOption) (*Trace, context.Context) {
	if !m.enabled.Load() {
		return m.noopTrace(), ctx
	}

	var o traceOptions
	for _, opt := range opts {
		opt(&o)
	}

	t := &Trace{
		id:        id.NewTraceID().String(),
		name:      name,
		userID:    o.userID,
		sessionID: o.sessionID,
		createdAt: time.Now(),
		manager:   m,
		mutable:   newMutable(),
	}
	for k, v := range o.metadata {
		t.addMetadata(k, v)
	}
	for _, tag := range o.tags {
		t.addTag(tag)
	}
	if o.input != nil {
		t.input.store(o.input)
	}

	m.active.Store(t.id, t)
	m.metrics.TracesActive.Inc()

	m.emit(event.TraceCreate{
		Envelope:  m.envelope(t.id),
		Name:      name,
		UserID:    o.userID,
		SessionID: o.sessionID,
		Metadata:  t.metadataCopy(),
		Tags:      t.tagsCopy(),
		Input:     o.input,
	})

	return t, ContextWithTrace(ctx, t)
}

// WithTrace composes create, run, and finish. A callback error is recorded
// on the trace before finishing and then returned unchanged; a panic is
// recorded, the trace finished, and the panic re-raised.
func (m *Manager) WithTrace(ctx context.Context, name string, fn func(context.Context, *Trace) error) error {
	t, tctx := m.StartTrace(ctx, name)
	return finishAfter(t, func() error { return fn(tctx, t) })
}

// WithTraceAsync creates the trace immediately and finishes it when the
// channel returned by fn yields, without blocking the caller. The returned
// channel forwards the callback's result after the trace is finished.
func (m *Manager) WithTraceAsync(ctx context.Context, name string, fn func(context.Context, *Trace) <-chan error) <-chan error {
	t, tctx := m.StartTrace(ctx, name)
	return finishWhenDone(t, func() <-chan error { return fn(tctx, t) })
}

// ActiveTraces returns the number of not-yet-finished traces.
func (m *Manager) ActiveTraces() int {
	n := 0
	m.active.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Shutdown force-finishes every still-active trace, cascading to open
// spans, and clears the registry. Intended for process exit.
func (m *Manager) Shutdown(ctx context.Context) {
	m.active.Range(func(key, value any) bool {
		t := value.(*Trace)
		t.Cancel("shutdown")
		t.Finish()
		m.active.Delete(key)
		return true
	})
	if err := m.backend.Close(); err != nil {
		m.logger.Warn("backend close failed", zap.Error(err))
	}
}

// emit dispatches one event to the backend, inline on the caller.
func (m *Manager) emit(ev event.Event) {
	if !m.enabled.Load() {
		return
	}
	m.metrics.EventsEmitted.WithLabelValues(string(ev.Kind())).Inc()
	m.backend.Emit(ev)
}

// envelope builds the shared event envelope with a fresh event id.
func (m *Manager) envelope(traceID string) event.Envelope {
	return event.Envelope{
		ID:        id.NewEventID().String(),
		Timestamp: time.Now(),
		TraceID:   traceID,
	}
}

// deregister removes a finished trace from the active registry.
func (m *Manager) deregister(traceID string) {
	if _, loaded := m.active.LoadAndDelete(traceID); loaded {
		m.metrics.TracesActive.Dec()
	}
}
