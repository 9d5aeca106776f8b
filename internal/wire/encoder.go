package wire

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
)

// Body-id tags. A generation and a tool call with the same name must not
// collide, so each family gets its own fixed tag.
const (
	generationTag = "-gen-"
	toolCallTag   = "-tool-"
)

// timestampLayout renders ISO-8601 with millisecond precision and a literal
// "Z"; times are converted to UTC first.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Options carry the deployment identity stamped onto trace bodies.
type Options struct {
	Environment string
	Release     string
	Version     string
}

// Encoder maps internal events onto ingestion envelopes.
type Encoder struct {
	opts  Options
	newID func() string
}

// NewEncoder creates an encoder. Envelope ids for synthesized wire events
// are fresh UUIDs.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{
		opts:  opts,
		newID: uuid.NewString,
	}
}

// Encode converts one event into its wire envelopes. Every variant maps to
// exactly one envelope except ToolCall, which flattens into a
// span-create/span-update pair.
func (e *Encoder) Encode(ev event.Event) ([]Envelope, error) {
	env := ev.Env()
	ts := formatTime(env.Timestamp)

	switch ev := ev.(type) {
	case event.TraceCreate:
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeTraceCreate,
			Body: TraceBody{
				ID:          env.TraceID,
				Timestamp:   optStr(ts),
				Name:        optStr(ev.Name),
				UserID:      optStr(ev.UserID),
				SessionID:   optStr(ev.SessionID),
				Input:       normalizeValue(ev.Input),
				Metadata:    coerceMetadata(ev.Metadata),
				Tags:        tags(ev.Tags),
				Release:     optStr(e.opts.Release),
				Version:     optStr(e.opts.Version),
				Environment: optStr(e.opts.Environment),
			},
		}}, nil

	case event.TraceUpdate:
		md := coerceMetadata(ev.Metadata)
		// The trace body has no level field on the wire; status travels in
		// metadata.
		if ev.Status != "" {
			md["status"] = levelFor(ev.Status)
		}
		if ev.Error != "" {
			md["error"] = ev.Error
		}
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeTraceUpdate,
			Body: TraceBody{
				ID:          env.TraceID,
				Output:      normalizeValue(ev.Output),
				Metadata:    md,
				Tags:        tags(ev.Tags),
				Release:     optStr(e.opts.Release),
				Version:     optStr(e.opts.Version),
				Environment: optStr(e.opts.Environment),
			},
		}}, nil

	case event.SpanCreate:
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeSpanCreate,
			Body: ObservationBody{
				ID:                  ev.SpanID,
				TraceID:             env.TraceID,
				Type:                observationSpan,
				Name:                optStr(ev.Name),
				StartTime:           optStr(formatTime(ev.StartTime)),
				Metadata:            coerceMetadata(ev.Metadata),
				ParentObservationID: optStr(ev.ParentSpanID),
				Input:               normalizeValue(ev.Input),
				Environment:         optStr(e.opts.Environment),
			},
		}}, nil

	case event.SpanUpdate:
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeSpanUpdate,
			Body: ObservationBody{
				ID:            ev.SpanID,
				TraceID:       env.TraceID,
				Type:          observationSpan,
				EndTime:       optTime(ev.EndTime),
				Metadata:      coerceMetadata(ev.Metadata),
				Level:         optStr(levelFor(ev.Status)),
				StatusMessage: optStr(ev.Error),
				Input:         normalizeValue(ev.Input),
				Output:        normalizeValue(ev.Output),
				Environment:   optStr(e.opts.Environment),
			},
		}}, nil

	case event.SpanEvent:
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeEventCreate,
			Body: ObservationBody{
				ID:                  env.ID,
				TraceID:             env.TraceID,
				Type:                observationEvent,
				Name:                optStr(ev.Name),
				StartTime:           optStr(formatTime(ev.Time)),
				Metadata:            coerceMetadata(ev.Attributes),
				ParentObservationID: optStr(ev.SpanID),
				Environment:         optStr(e.opts.Environment),
			},
		}}, nil

	case event.Generation:
		level := string(ev.Level)
		if level == "" {
			level = string(event.LevelDefault)
		}
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeGenerationCreate,
			Body: ObservationBody{
				ID:                  BodyID(env.TraceID, generationTag, ev.Name),
				TraceID:             env.TraceID,
				Type:                observationGeneration,
				Name:                optStr(ev.Name),
				StartTime:           optStr(formatTime(ev.StartTime)),
				EndTime:             optTime(ev.EndTime),
				Metadata:            coerceMetadata(ev.Metadata),
				Level:               optStr(level),
				StatusMessage:       optStr(ev.StatusMessage),
				ParentObservationID: optStr(ev.SpanID),
				Input:               normalizeValue(ev.Input),
				Output:              normalizeValue(ev.Output),
				Environment:         optStr(e.opts.Environment),
				Model:               optStr(ev.Model),
				ModelParameters:     coerceParams(ev.ModelParameters),
				Usage:               usageBody(ev.Usage),
				PromptName:          optStr(ev.PromptName),
			},
		}}, nil

	case event.GenerationUpdate:
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeGenerationUpdate,
			Body: ObservationBody{
				ID:          BodyID(env.TraceID, generationTag, ev.Name),
				TraceID:     env.TraceID,
				Type:        observationGeneration,
				EndTime:     optTime(ev.EndTime),
				Metadata:    coerceMetadata(ev.Metadata),
				Output:      normalizeValue(ev.Output),
				Environment: optStr(e.opts.Environment),
				Usage:       usageBody(ev.Usage),
			},
		}}, nil

	case event.ToolCall:
		// Tool calls have no native wire type: they are flattened into a
		// span pair with a synthesized name and the tool name stashed in
		// metadata. Preserved verbatim for compatibility.
		bodyID := BodyID(env.TraceID, toolCallTag, ev.Name)
		name := "Tool: " + ev.ToolName
		md := coerceMetadata(ev.Metadata)
		md["toolName"] = ev.ToolName
		return []Envelope{
			{
				ID:        env.ID,
				Timestamp: ts,
				Type:      TypeSpanCreate,
				Body: ObservationBody{
					ID:                  bodyID,
					TraceID:             env.TraceID,
					Type:                observationSpan,
					Name:                optStr(name),
					StartTime:           optStr(formatTime(ev.StartTime)),
					Metadata:            md,
					ParentObservationID: optStr(ev.SpanID),
					Input:               normalizeValue(ev.Input),
					Environment:         optStr(e.opts.Environment),
				},
			},
			{
				ID:        e.newID(),
				Timestamp: ts,
				Type:      TypeSpanUpdate,
				Body: ObservationBody{
					ID:          bodyID,
					TraceID:     env.TraceID,
					Type:        observationSpan,
					EndTime:     optTime(ev.EndTime),
					Metadata:    md,
					Output:      normalizeValue(ev.Output),
					Environment: optStr(e.opts.Environment),
				},
			},
		}, nil

	case event.Score:
		return []Envelope{{
			ID:        env.ID,
			Timestamp: ts,
			Type:      TypeScoreCreate,
			Body: ScoreBody{
				ID:            env.ID,
				TraceID:       env.TraceID,
				ObservationID: optStr(ev.ObservationID),
				Name:          ev.Name,
				Value:         ev.Value,
				Source:        optStr(string(ev.Source)),
				Comment:       optStr(ev.Comment),
				Metadata:      coerceMetadata(ev.Metadata),
			},
		}}, nil

	default:
		return nil, fmt.Errorf("wire: unknown event kind %q", ev.Kind())
	}
}

// BodyID derives the externally visible observation identity from the trace
// id and the observation name. Two events with the same (traceId, name)
// encode to the same id, which is what lets later events update in place.
// Differently slugged names never collide, but the scheme is not
// collision-proof: "a b" and "a_b" slug identically, and because slugging is
// byte-wise each byte of a multibyte rune becomes its own '_', so distinct
// non-ASCII names can also converge. Kept as is for id stability with
// existing remote data.
func BodyID(traceID, tag, name string) string {
	return traceID + tag + Slugify(name)
}

// Slugify maps every byte outside [A-Za-z0-9] to '_'. Byte-wise on purpose:
// a multibyte rune yields one '_' per byte.
func Slugify(name string) string {
	out := []byte(name)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// levelFor maps a terminal status onto the wire severity scale.
func levelFor(s event.Status) string {
	switch s {
	case event.StatusError:
		return string(event.LevelError)
	case event.StatusCancelled:
		return string(event.LevelWarning)
	case event.StatusOk:
		return string(event.LevelDefault)
	default:
		return ""
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func optTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return optStr(formatTime(*t))
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func usageBody(u *event.TokenUsage) *UsageBody {
	if u == nil {
		return nil
	}
	return &UsageBody{
		Input:      u.PromptTokens,
		Output:     u.CompletionTokens,
		Total:      u.TotalTokens,
		Unit:       optStr(u.Unit),
		InputCost:  u.InputCost,
		OutputCost: u.OutputCost,
		TotalCost:  u.TotalCost,
	}
}
