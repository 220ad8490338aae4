// Package monitoring holds the logging plumbing shared by the planner and
// the command-line tools.
//
// Three streams carry planner output:
//   - ops: fallbacks, rejected input and anything an operator should act on
//   - diag: one-line run summaries and mirrored trace lines
//   - trace: per-iteration search telemetry, off unless explicitly enabled
//
// All streams are disabled until SetLogWriters is called. Logf and Fatalf
// carry the binaries' own status and failure messages.
//
// A Sink is the per-run observer handed to the algorithms. Recorder keeps
// the lines so they can be returned alongside the tour.
package monitoring
