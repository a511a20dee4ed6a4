// Package trace is the logging layer of codan: structured span and point
// events emitted by the check command and the engine.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	codan check --trace=- --trace-level=detail unit.cast
//
// # Architecture
//
//   - nopTracer: zero-overhead tracer when disabled (Nop)
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a run fails
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only recovered failures (checker panics)
//   - LevelPhase: run and unit boundaries
//   - LevelDetail: one span per checker
//   - LevelDebug: everything including function entries
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeChecker, "checker:SwitchCase", parentID)
//	defer span.End("")
package trace
