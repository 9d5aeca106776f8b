package trace

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/id"
)

// GenerationRecord describes one completed model invocation. It is emitted
// as a single fully-formed event, not a create/update pair.
type GenerationRecord struct {
	Name            string
	Model           string
	ModelParameters map[string]any
	Input           any
	Output          any
	Usage           *event.TokenUsage
	StartTime       time.Time // zero means now
	EndTime         *time.Time
	Metadata        map[string]any
	PromptName      string
	Level           event.Level
	StatusMessage   string
}

// GenerationUpdateRecord amends an earlier generation, addressed by Name.
type GenerationUpdateRecord struct {
	Name     string
	EndTime  *time.Time
	Output   any
	Usage    *event.TokenUsage
	Metadata map[string]any
}

// ToolCallRecord describes one completed external tool invocation.
type ToolCallRecord struct {
	Name      string
	ToolName  string
	Input     any
	Output    any
	StartTime time.Time // zero means now
	EndTime   *time.Time
	Metadata  map[string]any
}

// ScoreRecord attaches an evaluation to the trace, or to one observation
// when ObservationID is set.
type ScoreRecord struct {
	Name          string
	Value         float64
	ObservationID string
	Source        event.Source // defaults to API
	Comment       string
	Metadata      map[string]any
}

// RecordGeneration emits a generation event on the trace, outside any span.
func (t *Trace) RecordGeneration(rec GenerationRecord) {
	t.recordGeneration("", rec)
}

// RecordGeneration emits a generation event tagged with this span's id.
func (s *Span) RecordGeneration(rec GenerationRecord) {
	if s.noop || s.trace == nil {
		return
	}
	s.trace.recordGeneration(s.id, rec)
}

func (t *Trace) recordGeneration(spanID string, rec GenerationRecord) {
	if t.noop {
		return
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = time.Now()
	}

	t.manager.emit(event.Generation{
		Envelope:        t.manager.envelope(t.id),
		SpanID:          spanID,
		Name:            rec.Name,
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		Model:           rec.Model,
		ModelParameters: rec.ModelParameters,
		Input:           rec.Input,
		Output:          rec.Output,
		Usage:           rec.Usage,
		Metadata:        rec.Metadata,
		PromptName:      rec.PromptName,
		Level:           rec.Level,
		StatusMessage:   rec.StatusMessage,
	})
}

// UpdateGeneration amends a generation previously recorded on this trace
// under the same name.
func (t *Trace) UpdateGeneration(rec GenerationUpdateRecord) {
	if t.noop {
		return
	}
	t.manager.emit(event.GenerationUpdate{
		Envelope: t.manager.envelope(t.id),
		Name:     rec.Name,
		EndTime:  rec.EndTime,
		Output:   rec.Output,
		Usage:    rec.Usage,
		Metadata: rec.Metadata,
	})
}

// RecordToolCall emits a tool-call event on the trace, outside any span.
func (t *Trace) RecordToolCall(rec ToolCallRecord) {
	t.recordToolCall("", rec)
}

// RecordToolCall emits a tool-call event tagged with this span's id.
func (s *Span) RecordToolCall(rec ToolCallRecord) {
	if s.noop || s.trace == nil {
		return
	}
	s.trace.recordToolCall(s.id, rec)
}

func (t *Trace) recordToolCall(spanID string, rec ToolCallRecord) {
	if t.noop {
		return
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = time.Now()
	}

	t.manager.emit(event.ToolCall{
		Envelope:  t.manager.envelope(t.id),
		SpanID:    spanID,
		Name:      rec.Name,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		ToolName:  rec.ToolName,
		Input:     rec.Input,
		Output:    rec.Output,
		Metadata:  rec.Metadata,
	})
}

// RecordScore emits a score event targeting the trace or, when
// rec.ObservationID is set, a single observation within it.
func (t *Trace) RecordScore(rec ScoreRecord) {
	if t.noop {
		return
	}
	if rec.Source == "" {
		rec.Source = event.SourceAPI
	}

	env := t.manager.envelope(t.id)
	env.ID = id.NewScoreID().String()

	t.manager.emit(event.Score{
		Envelope:      env,
		ObservationID: rec.ObservationID,
		Name:          rec.Name,
		Value:         rec.Value,
		Source:        rec.Source,
		Comment:       rec.Comment,
		Metadata:      rec.Metadata,
	})
}

// RecordScore emits a score targeting this span.
func (s *Span) RecordScore(rec ScoreRecord) {
	if s.noop || s.trace == nil {
		return
	}
	rec.ObservationID = s.id
	s.trace.RecordScore(rec)
}

// RecordGeneration emits a generation against the current span or trace in
// ctx. Without either, the record is dropped.
func RecordGeneration(ctx context.Context, rec GenerationRecord) {
	if s := SpanFromContext(ctx); s != nil {
		s.RecordGeneration(rec)
		return
	}
	if t := TraceFromContext(ctx); t != nil {
		t.RecordGeneration(rec)
	}
}

// RecordToolCall emits a tool call against the current span or trace in
// ctx. Without either, the record is dropped.
func RecordToolCall(ctx context.Context, rec ToolCallRecord) {
	if s := SpanFromContext(ctx); s != nil {
		s.RecordToolCall(rec)
		return
	}
	if t := TraceFromContext(ctx); t != nil {
		t.RecordToolCall(rec)
	}
}
