package wire

// Envelope is the outer wrapper around every wire event.
type Envelope struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Body      any    `json:"body"`
}

// Wire event types.
const (
	TypeTraceCreate      = "trace-create"
	TypeTraceUpdate      = "trace-update"
	TypeSpanCreate       = "span-create"
	TypeSpanUpdate       = "span-update"
	TypeEventCreate      = "event-create"
	TypeGenerationCreate = "generation-create"
	TypeGenerationUpdate = "generation-update"
	TypeScoreCreate      = "score-create"
)

// Observation type discriminators inside observation bodies.
const (
	observationSpan       = "SPAN"
	observationGeneration = "GENERATION"
	observationEvent      = "EVENT"
)

// TraceBody is the body of trace-create and trace-update envelopes.
// Pointer fields deliberately lack omitempty: absence is an explicit null.
type TraceBody struct {
	ID          string            `json:"id"`
	Timestamp   *string           `json:"timestamp"`
	Name        *string           `json:"name"`
	UserID      *string           `json:"userId"`
	SessionID   *string           `json:"sessionId"`
	Input       any               `json:"input"`
	Output      any               `json:"output"`
	Metadata    map[string]string `json:"metadata"`
	Tags        []string          `json:"tags"`
	Release     *string           `json:"release"`
	Version     *string           `json:"version"`
	Environment *string           `json:"environment"`
}

// ObservationBody is the body of span, generation, and event envelopes.
type ObservationBody struct {
	ID                  string            `json:"id"`
	TraceID             string            `json:"traceId"`
	Type                string            `json:"type"`
	Name                *string           `json:"name"`
	StartTime           *string           `json:"startTime"`
	EndTime             *string           `json:"endTime"`
	Metadata            map[string]string `json:"metadata"`
	Level               *string           `json:"level"`
	StatusMessage       *string           `json:"statusMessage"`
	ParentObservationID *string           `json:"parentObservationId"`
	Input               any               `json:"input"`
	Output              any               `json:"output"`
	Environment         *string           `json:"environment"`
	Model               *string           `json:"model"`
	ModelParameters     map[string]string `json:"modelParameters"`
	Usage               *UsageBody        `json:"usage"`
	PromptName          *string           `json:"promptName"`
}

// UsageBody is the token usage object attached to generations.
type UsageBody struct {
	Input      int      `json:"input"`
	Output     int      `json:"output"`
	Total      int      `json:"total"`
	Unit       *string  `json:"unit"`
	InputCost  *float64 `json:"input_cost"`
	OutputCost *float64 `json:"output_cost"`
	TotalCost  *float64 `json:"total_cost"`
}

// ScoreBody is the body of score-create envelopes.
type ScoreBody struct {
	ID            string            `json:"id"`
	TraceID       string            `json:"traceId"`
	ObservationID *string           `json:"observationId"`
	Name          string            `json:"name"`
	Value         float64           `json:"value"`
	Source        *string           `json:"source"`
	Comment       *string           `json:"comment"`
	Metadata      map[string]string `json:"metadata"`
}
