// Package trace implements the trace/span lifecycle and its propagation
// model.
//
// A Manager creates traces and dispatches their events to a backend. The
// "current" trace and span ride on context.Context: Span derives a child
// context for its callback, so nesting, panic-safe restoration, and
// goroutine isolation all follow from ordinary context scoping. Context
// values never cross a goroutine boundary by themselves; capture an explicit
// Context with Capture and reinstall it with Install or Under on the far
// side.
//
// All emission is synchronous on the calling goroutine. Metadata and tags
// accumulate in concurrency-safe containers; input, output, error, and
// status are single last-write-wins slots. Finish on both Trace and Span is
// an atomic one-shot: its effects run exactly once no matter how many
// goroutines race on it.
package trace
