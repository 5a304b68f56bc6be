// Package history persists and retrieves records of past agent runs so
// they can be fetched again by id after the original response was served.
package history

import "time"

// Record is the stored outcome of one agent run.
type Record struct {
	ID          string    `json:"id"`
	Instruction string    `json:"instruction"`
	Success     bool      `json:"success"`
	ExitCode    int       `json:"exit_code"`
	TimedOut    bool      `json:"timed_out"`
	StdoutTail  string    `json:"stdout_tail,omitempty"`
	StderrTail  string    `json:"stderr_tail,omitempty"`
	Duration    float64   `json:"duration"` // seconds
	StartedAt   time.Time `json:"started_at"`
}

// Store persists and retrieves run records.
type Store interface {
	Save(rec *Record) error
	Load(id string) (*Record, error)
}
