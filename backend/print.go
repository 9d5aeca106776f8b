package backend

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
)

// Print renders each event to a writer with indentation proportional to
// nesting depth. Depth is tracked in a side map from span id: a root span
// sits at depth 1, a child at depth(parent)+1. An entry is dropped when the
// span's final update has been rendered.
type Print struct {
	mu    sync.Mutex
	w     io.Writer
	spans map[string]spanInfo
	gens  map[string]int // generation name -> depth, updates carry no span id
}

type spanInfo struct {
	name  string
	depth int
}

// NewPrint creates the console backend. A nil writer means os.Stdout.
func NewPrint(w io.Writer) *Print {
	if w == nil {
		w = os.Stdout
	}
	return &Print{
		w:     w,
		spans: make(map[string]spanInfo),
		gens:  make(map[string]int),
	}
}

func (p *Print) Emit(ev event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev := ev.(type) {
	case event.TraceCreate:
		fmt.Fprintf(p.w, "> trace %s (%s)\n", ev.Name, ev.Env().TraceID)

	case event.TraceUpdate:
		line := fmt.Sprintf("< trace (%s) status=%s", ev.Env().TraceID, ev.Status)
		if ev.Error != "" {
			line += " error=" + ev.Error
		}
		fmt.Fprintln(p.w, line)

	case event.SpanCreate:
		depth := p.spans[ev.ParentSpanID].depth + 1
		p.spans[ev.SpanID] = spanInfo{name: ev.Name, depth: depth}
		fmt.Fprintf(p.w, "%s> span %s\n", indent(depth), ev.Name)

	case event.SpanUpdate:
		info := p.spans[ev.SpanID]
		line := fmt.Sprintf("%s< span %s status=%s", indent(info.depth), info.name, ev.Status)
		if ev.Error != "" {
			line += " error=" + ev.Error
		}
		fmt.Fprintln(p.w, line)
		delete(p.spans, ev.SpanID)

	case event.SpanEvent:
		depth := p.spans[ev.SpanID].depth + 1
		fmt.Fprintf(p.w, "%s* event %s\n", indent(depth), ev.Name)

	case event.Generation:
		depth := p.spans[ev.SpanID].depth + 1
		p.gens[ev.Name] = depth
		line := fmt.Sprintf("%s* generation %s", indent(depth), ev.Name)
		if ev.Model != "" {
			line += " model=" + ev.Model
		}
		if ev.Usage != nil {
			line += fmt.Sprintf(" tokens=%d", ev.Usage.TotalTokens)
		}
		fmt.Fprintln(p.w, line)

	case event.GenerationUpdate:
		depth := p.gens[ev.Name]
		if depth == 0 {
			depth = 1
		}
		fmt.Fprintf(p.w, "%s* generation %s (update)\n", indent(depth), ev.Name)

	case event.ToolCall:
		depth := p.spans[ev.SpanID].depth + 1
		fmt.Fprintf(p.w, "%s* tool %s (%s)\n", indent(depth), ev.ToolName, ev.Name)

	case event.Score:
		fmt.Fprintf(p.w, "* score %s=%g\n", ev.Name, ev.Value)
	}
}

func (p *Print) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spans = make(map[string]spanInfo)
	p.gens = make(map[string]int)
	return nil
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
