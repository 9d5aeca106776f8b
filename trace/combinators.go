package trace

import (
	"context"
	"fmt"
)

// finisher is the common finishing surface of Trace and Span.
type finisher interface {
	RecordError(error)
	Finish()
}

// finishAfter runs fn and guarantees finish-before-propagate: a returned
// error is recorded then returned unchanged, and a panic is recorded,
// finished, and re-raised unchanged.
func finishAfter(f finisher, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f.RecordError(fmt.Errorf("panic: %v", r))
			f.Finish()
			panic(r)
		}
	}()

	err = fn()
	if err != nil {
		f.RecordError(err)
	}
	f.Finish()
	return err
}

// finishWhenDone starts fn and attaches a non-blocking completion
// continuation that finishes f when the returned channel yields. The caller
// is never blocked; the forwarded result arrives after the finish.
func finishWhenDone(f finisher, start func() <-chan error) <-chan error {
	out := make(chan error, 1)

	var done <-chan error
	func() {
		defer func() {
			if r := recover(); r != nil {
				f.RecordError(fmt.Errorf("panic: %v", r))
				f.Finish()
				panic(r)
			}
		}()
		done = start()
	}()

	go func() {
		var err error
		if done != nil {
			err = <-done
		}
		if err != nil {
			f.RecordError(err)
		}
		f.Finish()
		out <- err
		close(out)
	}()

	return out
}

// WithSpan runs fn inside a new span under the current trace. The span create
// event is emitted before fn runs; on return the span is finished and the
// enclosing span is current again (context scoping restores it even when fn
// panics). Without a trace in ctx, fn runs against the shared no-op span.
func WithSpan(ctx context.Context, name string, fn func(context.Context, *Span) error) error {
	t := TraceFromContext(ctx)
	if t == nil {
		return fn(ctx, noopSpan())
	}

	s, sctx := t.StartSpan(ctx, name)
	return finishAfter(s, func() error { return fn(sctx, s) })
}

// SpanAsync creates and installs the span like Span, but fn returns a
// channel and the span is finished only when that channel yields — success
// or failure — without blocking the caller. Span-create always precedes any
// event the body records; completion order between concurrently running
// async spans is unconstrained.
func SpanAsync(ctx context.Context, name string, fn func(context.Context, *Span) <-chan error) <-chan error {
	t := TraceFromContext(ctx)
	if t == nil {
		out := make(chan error, 1)
		done := fn(ctx, noopSpan())
		go func() {
			var err error
			if done != nil {
				err = <-done
			}
			out <- err
			close(out)
		}()
		return out
	}

	s, sctx := t.StartSpan(ctx, name)
	return finishWhenDone(s, func() <-chan error { return fn(sctx, s) })
}
