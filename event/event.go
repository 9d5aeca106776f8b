package event

import "time"

// Kind discriminates the event variants.
type Kind string

const (
	KindTraceCreate      Kind = "trace.create"
	KindTraceUpdate      Kind = "trace.update"
	KindSpanCreate       Kind = "span.create"
	KindSpanUpdate       Kind = "span.update"
	KindSpanEvent        Kind = "span.event"
	KindGeneration       Kind = "generation"
	KindGenerationUpdate Kind = "generation.update"
	KindToolCall         Kind = "toolcall"
	KindScore            Kind = "score"
)

// Status is the terminal status of a trace or span.
type Status string

const (
	StatusOk        Status = "ok"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Level is the observation severity reported to the ingestion API.
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelDefault Level = "DEFAULT"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Source identifies where a score originated.
type Source string

const (
	SourceAPI        Source = "API"
	SourceEval       Source = "EVAL"
	SourceAnnotation Source = "ANNOTATION"
)

// Message is one turn of a model conversation. Inputs and outputs built from
// Message values are normalized to plain role/content shapes on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Envelope carries the fields common to every event variant.
//
// ID is unique per event and doubles as the dedup key for the remote backend.
// Timestamp is the emission time, independent of any domain timestamp inside
// the body (a span's own StartTime may differ).
type Envelope struct {
	ID        string
	Timestamp time.Time
	TraceID   string
}

// Env returns the embedded envelope.
func (e Envelope) Env() Envelope { return e }

// Event is the tagged union over all variants.
type Event interface {
	Kind() Kind
	Env() Envelope
}

// TraceCreate announces a new trace. Emitted exactly once per trace,
// synchronously at creation.
type TraceCreate struct {
	Envelope
	Name      string
	UserID    string
	SessionID string
	Metadata  map[string]any
	Tags      []string
	Input     any
}

func (TraceCreate) Kind() Kind { return KindTraceCreate }

// TraceUpdate closes out a trace. Emitted exactly once, at finish.
type TraceUpdate struct {
	Envelope
	Metadata map[string]any
	Tags     []string
	Output   any
	Status   Status
	Error    string
}

func (TraceUpdate) Kind() Kind { return KindTraceUpdate }

// SpanCreate announces a new span within a trace.
type SpanCreate struct {
	Envelope
	SpanID       string
	ParentSpanID string
	Name         string
	StartTime    time.Time
	Metadata     map[string]any
	Tags         []string
	Input        any
}

func (SpanCreate) Kind() Kind { return KindSpanCreate }

// SpanUpdate closes out a span. EndTime is set iff the span finished.
type SpanUpdate struct {
	Envelope
	SpanID   string
	EndTime  *time.Time
	Metadata map[string]any
	Tags     []string
	Input    any
	Output   any
	Status   Status
	Error    string
}

func (SpanUpdate) Kind() Kind { return KindSpanUpdate }

// SpanEvent is a discrete point-in-time event recorded on an open span.
type SpanEvent struct {
	Envelope
	SpanID     string
	Name       string
	Time       time.Time
	Attributes map[string]any
}

func (SpanEvent) Kind() Kind { return KindSpanEvent }

// Generation is a fully-formed record of one model invocation. It is emitted
// in a single call, not as a create/update pair.
type Generation struct {
	Envelope
	SpanID          string
	Name            string
	StartTime       time.Time
	EndTime         *time.Time
	Model           string
	ModelParameters map[string]any
	Input           any
	Output          any
	Usage           *TokenUsage
	Metadata        map[string]any
	PromptName      string
	Level           Level
	StatusMessage   string
}

func (Generation) Kind() Kind { return KindGeneration }

// GenerationUpdate amends a previously emitted Generation. The target is
// identified by Name: the wire body id is derived deterministically from
// (traceId, name), so an update with the same name upserts in place.
type GenerationUpdate struct {
	Envelope
	Name     string
	EndTime  *time.Time
	Output   any
	Usage    *TokenUsage
	Metadata map[string]any
}

func (GenerationUpdate) Kind() Kind { return KindGenerationUpdate }

// ToolCall is a fully-formed record of one external tool invocation.
type ToolCall struct {
	Envelope
	SpanID    string
	Name      string
	StartTime time.Time
	EndTime   *time.Time
	ToolName  string
	Input     any
	Output    any
	Metadata  map[string]any
}

func (ToolCall) Kind() Kind { return KindToolCall }

// Score attaches an evaluation to a trace or to a single observation.
// TraceID is required; ObservationID narrows the target when set.
type Score struct {
	Envelope
	ObservationID string
	Name          string
	Value         float64
	Source        Source
	Comment       string
	Metadata      map[string]any
}

func (Score) Kind() Kind { return KindScore }
