package trace

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/id"
)

// Span is a bounded sub-operation nested under a trace. The trace id is a
// back-reference, not ownership; finishing a span never finishes its trace.
type Span struct {
	id        string
	traceID   string
	parentID  string
	name      string
	startTime time.Time
	trace     *Trace
	parent    *Span
	noop      bool

	mutable

	finished atomic.Bool
	endTime  atomic.Pointer[time.Time] // set once, inside the Finish one-shot
	children sync.Map                  // span id -> *Span

	eventsMu sync.Mutex
	events   []event.SpanEvent
}

var (
	sharedNoopSpan     *Span
	sharedNoopSpanOnce sync.Once
)

// noopSpan returns the shared inert span instance.
func noopSpan() *Span {
	sharedNoopSpanOnce.Do(func() {
		sharedNoopSpan = &Span{noop: true, mutable: newMutable()}
		sharedNoopSpan.finished.Store(true)
	})
	return sharedNoopSpan
}

// ID returns the span id.
func (s *Span) ID() string { return s.id }

// TraceID returns the owning trace id.
func (s *Span) TraceID() string { return s.traceID }

// ParentID returns the parent span id, or "" for a root span.
func (s *Span) ParentID() string { return s.parentID }

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// StartTime returns when the span was created.
func (s *Span) StartTime() time.Time { return s.startTime }

// Finished reports whether Finish has run.
func (s *Span) Finished() bool { return s.finished.Load() }

// AddMetadata records a metadata entry. Safe for concurrent use.
func (s *Span) AddMetadata(key string, value any) {
	if s.noop {
		return
	}
	s.addMetadata(key, value)
}

// AddTag records a tag once. Safe for concurrent use.
func (s *Span) AddTag(tag string) {
	if s.noop {
		return
	}
	s.addTag(tag)
}

// SetInput sets the span input. Last write wins.
func (s *Span) SetInput(input any) {
	if s.noop {
		return
	}
	s.input.store(input)
}

// SetOutput sets the span output. Last write wins.
func (s *Span) SetOutput(output any) {
	if s.noop {
		return
	}
	s.output.store(output)
}

// RecordError captures err and marks the span status Error.
func (s *Span) RecordError(err error) {
	if s.noop {
		return
	}
	s.recordError(err)
}

// Status returns the current status.
func (s *Span) Status() event.Status {
	return s.currentStatus()
}

// AddEvent records a discrete point-in-time event on the span and emits it
// immediately.
func (s *Span) AddEvent(name string, attributes map[string]any) {
	if s.noop || s.trace == nil {
		return
	}

	ev := event.SpanEvent{
		Envelope:   s.trace.manager.envelope(s.traceID),
		SpanID:     s.id,
		Name:       name,
		Time:       time.Now(),
		Attributes: attributes,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, ev)
	s.eventsMu.Unlock()

	s.trace.manager.emit(ev)
}

// Events returns a copy of the span's ordered event log.
func (s *Span) Events() []event.SpanEvent {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	out := make([]event.SpanEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Finish seals the span: end time, final status, one update event,
// cascading finish of open children, removal from the parent registries.
// Effects run exactly once under concurrent or repeated invocation.
func (s *Span) Finish() {
	if s.noop || !s.finished.CompareAndSwap(false, true) {
		return
	}

	end := time.Now()
	s.endTime.Store(&end)

	s.children.Range(func(_, value any) bool {
		value.(*Span).Finish()
		return true
	})

	s.trace.manager.emit(event.SpanUpdate{
		Envelope: s.trace.manager.envelope(s.traceID),
		SpanID:   s.id,
		EndTime:  &end,
		Metadata: s.metadataCopy(),
		Tags:     s.tagsCopy(),
		Input:    s.inputValue(),
		Output:   s.outputValue(),
		Status:   s.currentStatus(),
		Error:    s.errorMessage(),
	})

	s.trace.spans.Delete(s.id)
	if s.parent != nil {
		s.parent.children.Delete(s.id)
	}
}

// EndTime returns the end time, or the zero time while the span is open.
func (s *Span) EndTime() time.Time {
	if p := s.endTime.Load(); p != nil {
		return *p
	}
	return time.Time{}
}

// StartChild creates a nested span with this span as parent, without going
// through a context. Prefer the Span combinator where a context is
// available.
func (s *Span) StartChild(name string) *Span {
	if s.noop || s.trace == nil {
		return noopSpan()
	}

	child := &Span{
		id:        id.NewSpanID().String(),
		traceID:   s.traceID,
		parentID:  s.id,
		name:      name,
		startTime: time.Now(),
		trace:     s.trace,
		parent:    s,
		mutable:   newMutable(),
	}

	s.trace.spans.Store(child.id, child)
	s.children.Store(child.id, child)

	s.trace.manager.emit(event.SpanCreate{
		Envelope:     s.trace.manager.envelope(s.traceID),
		SpanID:       child.id,
		ParentSpanID: s.id,
		Name:         name,
		StartTime:    child.startTime,
		Metadata:     child.metadataCopy(),
		Tags:         child.tagsCopy(),
	})

	return child
}
