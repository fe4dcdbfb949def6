// Package trace records what borrowck does while it checks scripts.
//
// # Usage
//
//	borrowck check --trace=- --trace-level=detail scripts/
//
// # Tracers
//
//   - Nop: zero overhead when disabled
//   - StreamTracer: writes each event immediately (file or stderr)
//   - RingTracer: keeps the last N events for crash dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits driver and pass spans (parse, validate). LevelDetail adds
// per-file spans. LevelDebug adds one point per validator record (bind,
// borrow_start, drop, ...).
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "validate", parent)
//	defer span.End("")
package trace
