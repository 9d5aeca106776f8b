package backend

import "github.com/GriffinCanCode/AgentOS/telemetry/event"

// NoOp is the inert backend: no events, no output, no network.
type NoOp struct{}

// NewNoOp creates the no-op backend.
func NewNoOp() *NoOp { return &NoOp{} }

func (*NoOp) Emit(event.Event) {}

func (*NoOp) Close() error { return nil }
