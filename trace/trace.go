package trace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/id"
)

// Trace is the root container for one complete operation. Created by a
// Manager; mutated freely until Finish, which runs exactly once.
type Trace struct {
	id        string
	name      string
	userID    string
	sessionID string
	createdAt time.Time
	manager   *Manager
	noop      bool

	mutable

	finished atomic.Bool
	spans    sync.Map // span id -> *Span, still-open children
}

// ID returns the trace id.
func (t *Trace) ID() string { return t.id }

// Name returns the trace name.
func (t *Trace) Name() string { return t.name }

// CreatedAt returns the creation time.
func (t *Trace) CreatedAt() time.Time { return t.createdAt }

// Finished reports whether Finish has run.
func (t *Trace) Finished() bool { return t.finished.Load() }

// AddMetadata records a metadata entry. Safe for concurrent use.
func (t *Trace) AddMetadata(key string, value any) {
	if t.noop {
		return
	}
	t.addMetadata(key, value)
}

// AddTag records a tag once. Safe for concurrent use.
func (t *Trace) AddTag(tag string) {
	if t.noop {
		return
	}
	t.addTag(tag)
}

// SetInput sets the trace input. Last write wins.
func (t *Trace) SetInput(input any) {
	if t.noop {
		return
	}
	t.input.store(input)
}

// SetOutput sets the trace output. Last write wins.
func (t *Trace) SetOutput(output any) {
	if t.noop {
		return
	}
	t.output.store(output)
}

// RecordError captures err and marks the trace status Error. Concurrent
// calls keep the last error only.
func (t *Trace) RecordError(err error) {
	if t.noop {
		return
	}
	t.recordError(err)
}

// Cancel marks the trace Cancelled with a reason. Used by Shutdown for
// force-closed traces.
func (t *Trace) Cancel(reason string) {
	if t.noop {
		return
	}
	t.errVal.store(errors.New(reason))
	t.setStatus(event.StatusCancelled)
}

// Status returns the current status; Ok unless an error or cancellation was
// recorded.
func (t *Trace) Status() event.Status {
	return t.currentStatus()
}

// Finish seals the trace: final status, one update event, cascading finish
// of every still-open span, deregistration. Effects run exactly once under
// concurrent or repeated invocation.
func (t *Trace) Finish() {
	if t.noop || !t.finished.CompareAndSwap(false, true) {
		return
	}

	// Close children before announcing the trace itself is done.
	t.spans.Range(func(_, value any) bool {
		value.(*Span).Finish()
		return true
	})

	t.manager.emit(event.TraceUpdate{
		Envelope: t.manager.envelope(t.id),
		Metadata: t.metadataCopy(),
		Tags:     t.tagsCopy(),
		Output:   t.outputValue(),
		Status:   t.currentStatus(),
		Error:    t.errorMessage(),
	})

	t.manager.deregister(t.id)
}

// StartSpan creates a child span under this trace, emits its create event,
// and returns it installed as the current span in a derived context. The
// parent span is taken from ctx when it belongs to this trace.
func (t *Trace) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	if t.noop {
		return noopSpan(), ctx
	}

	parentID := ""
	var parent *Span
	if p := SpanFromContext(ctx); p != nil && !p.noop && p.traceID == t.id {
		parent = p
		parentID = p.id
	}

	s := &Span{
		id:        id.NewSpanID().String(),
		traceID:   t.id,
		parentID:  parentID,
		name:      name,
		startTime: time.Now(),
		trace:     t,
		parent:    parent,
		mutable:   newMutable(),
	}

	t.spans.Store(s.id, s)
	if parent != nil {
		parent.children.Store(s.id, s)
	}

	t.manager.emit(event.SpanCreate{
		Envelope:     t.manager.envelope(t.id),
		SpanID:       s.id,
		ParentSpanID: parentID,
		Name:         name,
		StartTime:    s.startTime,
		Metadata:     s.metadataCopy(),
		Tags:         s.tagsCopy(),
	})

	return s, ContextWithSpan(ContextWithTrace(ctx, t), s)
}
