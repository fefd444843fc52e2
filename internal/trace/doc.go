// Package trace instruments the importer and batch pipelines with
// span-based tracing: who started what, how long it took, and which
// goroutine or parent span it nested under.
//
// # Architecture
//
//   - nopTracer: zero-overhead no-op, the default when tracing is off
//   - StreamTracer: writes each event to an io.Writer as it happens,
//     either human-readable text or newline-delimited JSON
//
// # Levels
//
// Tracing verbosity is controlled by a Level:
//
//   - LevelOff: no tracing
//   - LevelError: reserved for crash-path emission
//   - LevelPhase: batch and pass boundaries
//   - LevelDetail: per-method-body events
//   - LevelDebug: everything, including instruction-level events
//
// # Scopes
//
// Events are categorized by Scope, coarsest first:
//
//   - ScopeBatch: one batch.Run call fanning out over many bodies
//   - ScopePass: import, forest, dce, simplifycfg boundaries
//   - ScopeMethod: a single method body's pipeline run
//   - ScopeInstr: instruction/block-level detail
//
// # Context propagation
//
// A Tracer and the span it is currently inside of both travel through a
// context.Context, so a goroutine several calls removed from the one
// that opened a span can still nest its own span underneath it:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeBatch, "batch.Run", 0)
//	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
//	defer span.End("")
//
//	// deeper in the call stack, in a different goroutine:
//	parent := trace.CurrentSpan(ctx).SpanID
//	child := trace.Begin(trace.FromContext(ctx), trace.ScopeMethod, "batch.runOne", parent)
package trace
