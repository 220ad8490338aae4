package monitoring

import (
	"fmt"
	"sync"
)

// Sink receives human-readable progress lines from a planning run.
type Sink interface {
	Printf(format string, args ...interface{})
}

type discard struct{}

func (discard) Printf(string, ...interface{}) {}

// Discard is a Sink that drops every line.
var Discard Sink = discard{}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Recorder is a Sink that keeps every line for the caller and mirrors it to
// the diag stream. One Recorder belongs to one run.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Printf formats and records one line.
func (r *Recorder) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
	Diagf("%s", line)
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
