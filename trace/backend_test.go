package trace

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
)

// captureBackend records every emitted event for assertions.
type captureBackend struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *captureBackend) Emit(ev event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureBackend) Close() error { return nil }

func (c *captureBackend) all() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *captureBackend) byKind(kind event.Kind) []event.Event {
	var out []event.Event
	for _, ev := range c.all() {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}
