// Package resilience implements the circuit breaker protecting the ingestion
// endpoint.
//
// The breaker has two states. Closed: every send is allowed, and Threshold
// consecutive failures trip it Open. Open: sends are denied without any
// network I/O until CoolDown has elapsed since the last recorded failure;
// the first send after that is allowed through while still Open, and its own
// outcome decides — success closes the breaker, failure restarts the
// cool-down. There is no half-open probe state. Any success resets the
// consecutive-failure count.
package resilience
