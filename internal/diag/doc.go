// Package diag defines the diagnostic model shared by every pipeline stage.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form (LEX1001, SYN2001, GEN3001, CFG4001, RUN5001, ...), a short
// message, a primary source.Span and optional notes.
//
// Producers report through the Reporter interface; BagReporter collects into
// a Bag with an optional limit. Package diag does no rendering: pretty and JSON
// output live in internal/diagfmt, one-line output for tests and --format short
// lives in golden.go.
package diag
