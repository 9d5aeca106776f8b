package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a send is short-circuited.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Threshold is the number of consecutive failures that trips the breaker
	Threshold uint32
	// CoolDown is how long sends are denied after the last failure
	CoolDown time.Duration
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
	// now overrides the clock in tests
	now func() time.Time
}

// Counts holds the statistics for the circuit breaker
type Counts struct {
	Requests            uint32
	TotalSuccesses      uint32
	TotalFailures       uint32
	ConsecutiveFailures uint32
	ShortCircuits       uint32
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings

	mu          sync.Mutex
	state       State
	counts      Counts
	lastFailure time.Time
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.Threshold == 0 {
		settings.Threshold = 5
	}
	if settings.CoolDown == 0 {
		settings.CoolDown = 30 * time.Second
	}
	if settings.now == nil {
		settings.now = time.Now
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Allow reports whether a send may proceed. While Open it denies until the
// cool-down has elapsed, then permits the next attempt without changing
// state; that attempt's Record outcome decides what happens next.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.settings.now().Sub(b.lastFailure) < b.settings.CoolDown {
		b.counts.ShortCircuits++
		return false
	}

	b.counts.Requests++
	return true
}

// Record feeds the outcome of an allowed send back into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveFailures = 0
		b.setState(StateClosed)
		return
	}

	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	b.lastFailure = b.settings.now()
	if b.counts.ConsecutiveFailures >= b.settings.Threshold {
		b.setState(StateOpen)
	}
}

// setState changes the state; caller holds the lock.
func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
