package runner

import (
	"time"
	"unicode/utf8"
)

// Result holds the outcome of one agent invocation.
type Result struct {
	RunID     string        // unique identifier for this run
	ExitCode  int           // child exit code; 0 when TimedOut
	Stdout    []byte        // captured stdout (may be truncated)
	Stderr    []byte        // captured stderr (may be truncated)
	Duration  time.Duration // wall-clock time of the invocation
	TimedOut  bool          // true if the timeout ceiling was hit
	Truncated bool          // true if output exceeded the capture cap
}

// Success reports whether the child completed within the deadline and
// exited zero.
func (r *Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// Tail returns the trailing n characters of b as a string, never splitting
// a multi-byte rune. Empty input yields the empty string.
func Tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	t := b[len(b)-n:]
	// Skip continuation bytes left at the cut point.
	for len(t) > 0 && !utf8.RuneStart(t[0]) {
		t = t[1:]
	}
	return string(t)
}
