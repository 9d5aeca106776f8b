package trace

import (
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
)

// slot boxes arbitrary values so atomic.Value accepts changing concrete
// types.
type slot struct{ v any }

// atomicAny is a last-write-wins cell for input/output/error slots.
type atomicAny struct {
	val atomic.Value
}

func (a *atomicAny) store(v any) {
	a.val.Store(slot{v: v})
}

func (a *atomicAny) load() (any, bool) {
	s, ok := a.val.Load().(slot)
	if !ok {
		return nil, false
	}
	return s.v, true
}

// mutable holds the fields Trace and Span share: accumulating metadata and
// tags plus single-slot input/output/error/status.
type mutable struct {
	mu       sync.RWMutex
	metadata map[string]any
	tagSeen  map[string]struct{}
	tags     []string

	input  atomicAny
	output atomicAny
	errVal atomicAny    // stores error
	status atomic.Value // stores event.Status
}

func newMutable() mutable {
	return mutable{
		metadata: make(map[string]any),
		tagSeen:  make(map[string]struct{}),
	}
}

func (m *mutable) addMetadata(key string, value any) {
	m.mu.Lock()
	m.metadata[key] = value
	m.mu.Unlock()
}

func (m *mutable) addTag(tag string) {
	m.mu.Lock()
	if _, ok := m.tagSeen[tag]; !ok {
		m.tagSeen[tag] = struct{}{}
		m.tags = append(m.tags, tag)
	}
	m.mu.Unlock()
}

func (m *mutable) metadataCopy() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.metadata))
	for k, v := range m.metadata {
		out[k] = v
	}
	return out
}

func (m *mutable) tagsCopy() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.tags))
	copy(out, m.tags)
	return out
}

func (m *mutable) setStatus(s event.Status) {
	m.status.Store(s)
}

// currentStatus resolves the terminal status; unset means Ok.
func (m *mutable) currentStatus() event.Status {
	if s, ok := m.status.Load().(event.Status); ok {
		return s
	}
	return event.StatusOk
}

func (m *mutable) recordError(err error) {
	if err == nil {
		return
	}
	m.errVal.store(err)
	m.setStatus(event.StatusError)
}

func (m *mutable) errorMessage() string {
	v, ok := m.errVal.load()
	if !ok {
		return ""
	}
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return ""
}

func (m *mutable) inputValue() any {
	v, _ := m.input.load()
	return v
}

func (m *mutable) outputValue() any {
	v, _ := m.output.load()
	return v
}
