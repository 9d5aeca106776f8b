// Package event defines the telemetry event model.
//
// Every lifecycle transition in a trace is expressed as one immutable event
// value: trace and span create/update pairs, discrete span events, single-shot
// generation and tool-call records, and scores. All variants share an
// Envelope (event id, emission timestamp, owning trace id) and implement the
// Event interface so backends can dispatch on Kind exhaustively.
//
// Events are produced synchronously by the trace package and consumed by a
// backend; they carry no behavior of their own.
package event
