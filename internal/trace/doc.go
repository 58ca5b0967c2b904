// Package trace records what the compiler is doing: one span per command,
// per file, per invocation and per pipeline stage.
//
// Enable it from the command line:
//
//	viewc check --trace=- --trace-level=stage src/
//
// A Tracer travels through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, t)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "resolve", parent)
//	defer sp.End("")
//
// Stream tracers write every event as it happens (text or NDJSON); ring
// tracers keep the last events in memory so they can be dumped after a
// failure.
package trace
