package event

// TokenUsage reports token consumption and cost for one generation.
// Value type; cost fields are optional and encode as explicit nulls when
// absent.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Unit             string
	InputCost        *float64
	OutputCost       *float64
	TotalCost        *float64
}
