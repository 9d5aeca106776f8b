package trace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/telemetry/event"
)

func newTestTrace(t *testing.T) (*captureBackend, *Manager, *Trace, context.Context) {
	t.Helper()
	capture := &captureBackend{}
	mgr := NewManager(capture)
	tr, ctx := mgr.StartTrace(context.Background(), "test")
	return capture, mgr, tr, ctx
}

func TestNestedSpansRestoreCurrent(t *testing.T) {
	_, _, _, ctx := newTestTrace(t)

	require.Nil(t, SpanFromContext(ctx))

	err := WithSpan(ctx, "outer", func(outerCtx context.Context, outer *Span) error {
		assert.Equal(t, outer, SpanFromContext(outerCtx))

		before := SpanFromContext(outerCtx)
		err := WithSpan(outerCtx, "inner", func(innerCtx context.Context, inner *Span) error {
			assert.Equal(t, inner, SpanFromContext(innerCtx))
			assert.Equal(t, outer.ID(), inner.ParentID())
			return nil
		})
		require.NoError(t, err)

		// The current span after the nested block equals the one before it.
		assert.Equal(t, before, SpanFromContext(outerCtx))
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, SpanFromContext(ctx))
}

func TestNestedSpanRestoresAfterPanic(t *testing.T) {
	capture, _, _, ctx := newTestTrace(t)

	err := WithSpan(ctx, "outer", func(outerCtx context.Context, outer *Span) error {
		require.Panics(t, func() {
			_ = WithSpan(outerCtx, "inner", func(context.Context, *Span) error {
				panic("inner failure")
			})
		})

		// Still the outer span after the panicking block.
		assert.Equal(t, outer, SpanFromContext(outerCtx))
		return nil
	})
	require.NoError(t, err)

	updates := capture.byKind(event.KindSpanUpdate)
	require.Len(t, updates, 2)

	inner := updates[0].(event.SpanUpdate)
	assert.Equal(t, event.StatusError, inner.Status)
	assert.Contains(t, inner.Error, "inner failure")

	outer := updates[1].(event.SpanUpdate)
	assert.Equal(t, event.StatusOk, outer.Status)
}

func TestSpanErrorRecordedAndReturned(t *testing.T) {
	capture, _, _, ctx := newTestTrace(t)

	sentinel := errors.New("charge declined")
	err := WithSpan(ctx, "charge", func(context.Context, *Span) error {
		return sentinel
	})
	assert.Equal(t, sentinel, err)

	updates := capture.byKind(event.KindSpanUpdate)
	require.Len(t, updates, 1)
	update := updates[0].(event.SpanUpdate)
	assert.Equal(t, event.StatusError, update.Status)
	assert.Equal(t, "charge declined", update.Error)
	require.NotNil(t, update.EndTime)
}

func TestSpanFinishExactlyOnce(t *testing.T) {
	capture, _, tr, ctx := newTestTrace(t)

	sp, _ := tr.StartSpan(ctx, "once")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp.Finish()
		}()
	}
	wg.Wait()

	assert.Len(t, capture.byKind(event.KindSpanUpdate), 1)
	assert.True(t, sp.Finished())
	assert.False(t, sp.EndTime().Before(sp.StartTime()))
}

func TestTraceFinishCascadesToOpenSpans(t *testing.T) {
	capture, _, tr, ctx := newTestTrace(t)

	_, sctx := tr.StartSpan(ctx, "parent")
	child, _ := tr.StartSpan(sctx, "child")

	tr.Finish()

	assert.Len(t, capture.byKind(event.KindSpanUpdate), 2)
	assert.Len(t, capture.byKind(event.KindTraceUpdate), 1)
	assert.True(t, child.Finished())
}

func TestSpanAsyncOrdering(t *testing.T) {
	capture, _, _, ctx := newTestTrace(t)

	release := make(chan error)
	bodyRan := make(chan struct{})

	out := SpanAsync(ctx, "background", func(sctx context.Context, s *Span) <-chan error {
		// Span-create precedes everything the body records.
		assert.Len(t, capture.byKind(event.KindSpanCreate), 1)
		s.AddEvent("started", nil)
		close(bodyRan)
		return release
	})

	<-bodyRan
	assert.Empty(t, capture.byKind(event.KindSpanUpdate))

	release <- errors.New("background failed")
	err := <-out
	require.Error(t, err)

	updates := capture.byKind(event.KindSpanUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, event.StatusError, updates[0].(event.SpanUpdate).Status)
}

func TestConcurrentTracesAreIsolated(t *testing.T) {
	capture := &captureBackend{}
	mgr := NewManager(capture)

	var wg sync.WaitGroup
	for _, name := range []string{"trace-a", "trace-b"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			err := mgr.WithTrace(context.Background(), name, func(tctx context.Context, tr *Trace) error {
				return WithSpan(tctx, name+"-span", func(sctx context.Context, s *Span) error {
					// The current span belongs to this goroutine's trace only.
					assert.Equal(t, tr.ID(), s.TraceID())
					assert.Equal(t, s, SpanFromContext(sctx))
					time.Sleep(5 * time.Millisecond)
					return nil
				})
			})
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	assert.Len(t, capture.byKind(event.KindTraceCreate), 2)
	assert.Len(t, capture.byKind(event.KindSpanCreate), 2)

	// Each span landed in its own trace.
	traceNames := make(map[string]string)
	for _, ev := range capture.byKind(event.KindTraceCreate) {
		create := ev.(event.TraceCreate)
		traceNames[create.Env().TraceID] = create.Name
	}
	for _, ev := range capture.byKind(event.KindSpanCreate) {
		create := ev.(event.SpanCreate)
		assert.Equal(t, traceNames[create.Env().TraceID]+"-span", create.Name)
	}
}

func TestCaptureInstallAcrossGoroutines(t *testing.T) {
	_, _, tr, ctx := newTestTrace(t)

	err := WithSpan(ctx, "handoff", func(sctx context.Context, s *Span) error {
		captured := Capture(sctx)

		done := make(chan struct{})
		go func() {
			defer close(done)
			// A bare context has no trace state.
			assert.Nil(t, SpanFromContext(context.Background()))

			_ = Under(context.Background(), captured, func(rctx context.Context) error {
				assert.Equal(t, tr, TraceFromContext(rctx))
				assert.Equal(t, s, SpanFromContext(rctx))
				return nil
			})
		}()
		<-done
		return nil
	})
	require.NoError(t, err)
}

func TestSpanWithoutTraceIsNoop(t *testing.T) {
	called := false
	err := WithSpan(context.Background(), "orphan", func(ctx context.Context, s *Span) error {
		called = true
		s.AddMetadata("k", "v")
		s.Finish()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestSpanEventLog(t *testing.T) {
	capture, _, tr, ctx := newTestTrace(t)

	sp, _ := tr.StartSpan(ctx, "evented")
	sp.AddEvent("cache-miss", map[string]any{"key": "user:1"})
	sp.AddEvent("retry", nil)
	sp.Finish()

	events := capture.byKind(event.KindSpanEvent)
	require.Len(t, events, 2)
	first := events[0].(event.SpanEvent)
	assert.Equal(t, "cache-miss", first.Name)
	assert.Equal(t, sp.ID(), first.SpanID)

	log := sp.Events()
	require.Len(t, log, 2)
	assert.Equal(t, "cache-miss", log[0].Name)
	assert.Equal(t, "retry", log[1].Name)
}

func TestMutatorLastWriteWins(t *testing.T) {
	capture, _, tr, ctx := newTestTrace(t)

	sp, _ := tr.StartSpan(ctx, "busy")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sp.SetOutput(i)
			sp.AddMetadata("worker", i)
			sp.AddTag("shared")
		}(i)
	}
	wg.Wait()
	sp.SetOutput("final")
	sp.Finish()

	updates := capture.byKind(event.KindSpanUpdate)
	require.Len(t, updates, 1)
	update := updates[0].(event.SpanUpdate)
	assert.Equal(t, "final", update.Output)
	assert.Equal(t, []string{"shared"}, update.Tags)
}

func TestCheckoutScenario(t *testing.T) {
	capture := &captureBackend{}
	mgr := NewManager(capture)

	err := mgr.WithTrace(context.Background(), "checkout", func(tctx context.Context, tr *Trace) error {
		return WithSpan(tctx, "charge-card", func(sctx context.Context, s *Span) error {
			s.RecordToolCall(ToolCallRecord{
				Name:     "stripe.charge",
				ToolName: "stripe.charge",
				Input:    map[string]any{"amount": 500},
				Output:   map[string]any{"status": "ok"},
			})
			return nil
		})
	})
	require.NoError(t, err)

	assert.Len(t, capture.byKind(event.KindTraceCreate), 1)
	assert.Len(t, capture.byKind(event.KindTraceUpdate), 1)
	assert.Len(t, capture.byKind(event.KindToolCall), 1)

	creates := capture.byKind(event.KindSpanCreate)
	require.Len(t, creates, 1)
	create := creates[0].(event.SpanCreate)
	assert.Equal(t, "charge-card", create.Name)

	tool := capture.byKind(event.KindToolCall)[0].(event.ToolCall)
	assert.Equal(t, create.SpanID, tool.SpanID)
	assert.Equal(t, "stripe.charge", tool.ToolName)

	updates := capture.byKind(event.KindSpanUpdate)
	require.Len(t, updates, 1)
	update := updates[0].(event.SpanUpdate)
	require.NotNil(t, update.EndTime)
	assert.False(t, update.EndTime.Before(create.StartTime))
}

func TestRecordGenerationFromContext(t *testing.T) {
	capture, _, _, ctx := newTestTrace(t)

	err := WithSpan(ctx, "llm-call", func(sctx context.Context, s *Span) error {
		RecordGeneration(sctx, GenerationRecord{
			Name:  "completion",
			Model: "claude-sonnet",
			Usage: &event.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
		return nil
	})
	require.NoError(t, err)

	gens := capture.byKind(event.KindGeneration)
	require.Len(t, gens, 1)
	gen := gens[0].(event.Generation)
	assert.Equal(t, "completion", gen.Name)
	assert.NotEmpty(t, gen.SpanID)
	assert.False(t, gen.StartTime.IsZero())
}
