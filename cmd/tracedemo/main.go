// Command tracedemo runs a small instrumented workload against a selectable
// telemetry backend. Useful for eyeballing the console rendering and for
// smoke-testing remote ingestion with real credentials.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/GriffinCanCode/AgentOS/telemetry"
	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/trace"
)

func main() {
	mode := flag.String("mode", "console", "Telemetry mode: disabled, console, remote")
	host := flag.String("host", "", "Remote ingestion host (remote mode)")
	flag.Parse()

	cfg := telemetry.LoadOrDefault()
	cfg.Mode = *mode
	if *host != "" {
		cfg.Host = *host
	}

	mgr, err := telemetry.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create telemetry manager: %v", err)
	}
	defer mgr.Shutdown(context.Background())

	err = mgr.WithTrace(context.Background(), "checkout", func(ctx context.Context, t *trace.Trace) error {
		t.AddTag("demo")
		t.SetInput(map[string]any{"cart": []string{"sku-1", "sku-2"}})

		err := trace.WithSpan(ctx, "charge-card", func(ctx context.Context, s *trace.Span) error {
			s.AddMetadata("currency", "USD")

			s.RecordGeneration(trace.GenerationRecord{
				Name:  "fraud-check",
				Model: "gpt-4o-mini",
				Input: []event.Message{{Role: "user", Content: "score this transaction"}},
				Output: event.Message{
					Role:    "assistant",
					Content: "low risk",
				},
				Usage: &event.TokenUsage{
					PromptTokens:     57,
					CompletionTokens: 3,
					TotalTokens:      60,
					Unit:             "TOKENS",
				},
			})

			s.RecordToolCall(trace.ToolCallRecord{
				Name:     "stripe.charge",
				ToolName: "stripe.charge",
				Input:    map[string]any{"amount": 500},
				Output:   map[string]any{"status": "ok"},
			})
			return nil
		})
		if err != nil {
			return err
		}

		t.SetOutput(map[string]any{"status": "ok"})
		return nil
	})
	if err != nil {
		log.Fatalf("Checkout failed: %v", err)
	}
}
