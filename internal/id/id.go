// Package id provides centralized ID generation for telemetry entities.
//
// All ids are prefixed ULIDs: lexicographically sortable, unique across the
// process, and readable in logs (trace_*, span_*, evt_*, score_*). The
// prefix keeps trace ids from ever being mistaken for span ids when they
// travel together through the ingestion API.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TraceID identifies a trace.
type TraceID string

// SpanID identifies a span within a trace.
type SpanID string

// EventID identifies a single emitted event (remote dedup key).
type EventID string

// ScoreID identifies a score record.
type ScoreID string

const (
	TracePrefix = "trace"
	SpanPrefix  = "span"
	EventPrefix = "evt"
	ScorePrefix = "score"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a ULID generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic ids in tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewTraceID generates a new trace ID.
func NewTraceID() TraceID {
	return TraceID(Default().GenerateWithPrefix(TracePrefix))
}

// NewSpanID generates a new span ID.
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

// NewEventID generates a new event ID.
func NewEventID() EventID {
	return EventID(Default().GenerateWithPrefix(EventPrefix))
}

// NewScoreID generates a new score ID.
func NewScoreID() ScoreID {
	return ScoreID(Default().GenerateWithPrefix(ScorePrefix))
}

func (id TraceID) String() string { return string(id) }
func (id SpanID) String() string  { return string(id) }
func (id EventID) String() string { return string(id) }
func (id ScoreID) String() string { return string(id) }

// IsValid checks if an ID string (without prefix) is a valid ULID.
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Timestamp extracts the creation time from a raw ULID string.
func Timestamp(id string) (time.Time, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
