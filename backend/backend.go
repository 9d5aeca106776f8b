// Package backend defines where emitted telemetry events go.
//
// Three variants exist: NoOp (inert sentinel), Print (depth-indented console
// rendering), and Remote (wire encoder plus delivery client). Emit runs
// synchronously on the calling goroutine; backends never propagate their own
// failures to producers.
package backend

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
	"github.com/GriffinCanCode/AgentOS/telemetry/internal/logging"
)

// Backend consumes events produced by the trace lifecycle.
type Backend interface {
	// Emit handles one event, inline on the caller. Implementations must
	// swallow their own errors; tracing is fail-open.
	Emit(ev event.Event)

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// Mode selects a backend variant at startup.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeConsole  Mode = "console"
	ModeRemote   Mode = "remote"
)

// ForMode builds the backend for a startup mode string. Unknown modes
// degrade to NoOp with a log line rather than failing startup.
func ForMode(mode Mode, cfg RemoteConfig, logger *logging.Logger) Backend {
	switch mode {
	case ModeDisabled:
		return NewNoOp()
	case ModeConsole:
		return NewPrint(nil)
	case ModeRemote:
		return NewRemote(cfg, logger)
	default:
		logger.Warn("unknown telemetry mode, disabling", zap.String("mode", string(mode)))
		return NewNoOp()
	}
}
