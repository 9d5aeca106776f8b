package trace

import "context"

// Context keys for trace propagation
type contextKey string

const (
	traceKey contextKey = "telemetry_trace"
	spanKey  contextKey = "telemetry_span"
)

// Context is an explicit, capturable snapshot of the ambient trace state.
// Use it to carry the current trace and span across goroutine or executor
// boundaries, which context.Context values do not cross on their own.
type Context struct {
	Trace *Trace
	Span  *Span
}

// Capture snapshots the current trace and span from ctx.
func Capture(ctx context.Context) Context {
	return Context{
		Trace: TraceFromContext(ctx),
		Span:  SpanFromContext(ctx),
	}
}

// Install returns a context carrying the captured trace state. This is the
// "run under context" primitive for the destination goroutine.
func Install(ctx context.Context, tc Context) context.Context {
	if tc.Trace != nil {
		ctx = context.WithValue(ctx, traceKey, tc.Trace)
	}
	if tc.Span != nil {
		ctx = context.WithValue(ctx, spanKey, tc.Span)
	}
	return ctx
}

// Under runs fn with the captured trace state installed.
func Under(ctx context.Context, tc Context, fn func(context.Context) error) error {
	return fn(Install(ctx, tc))
}

// ContextWithTrace returns a context with t installed as the current trace.
func ContextWithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey, t)
}

// ContextWithSpan returns a context with s installed as the current span.
func ContextWithSpan(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, spanKey, s)
}

// TraceFromContext retrieves the current trace, or nil.
func TraceFromContext(ctx context.Context) *Trace {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(traceKey).(*Trace)
	return t
}

// SpanFromContext retrieves the current span, or nil.
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey).(*Span)
	return s
}
