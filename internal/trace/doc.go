// Package trace records what the compiler is doing while it does it.
//
// Every pipeline stage (lex, parse, tac, cfg, regalloc, cpu, run) opens a
// span when it starts and closes it with a short detail string when it is
// done. Events go to a Tracer chosen on the command line:
//
//	tacc build prog.tac --trace=- --trace-level=phase
//	tacc build ./examples --trace=build.ndjson --trace-mode=both
//
// StreamTracer writes events as they happen, RingTracer keeps the last N
// in memory so they can be dumped when a compile fails, and MultiTracer
// fans out to both. When tracing is off the package-level Nop tracer is
// used and spans cost a nil check.
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tr)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "cfg", parent)
//	defer span.End("")
package trace
