// Package runner executes the external agent command with a wall-clock
// timeout and bounded output capture.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// Runner invokes the agent CLI with fixed flags and a pinned device.
type Runner struct {
	Command      []string // argv prefix: binary plus fixed leading args
	BaseURL      string   // passed as --base-url
	Model        string   // passed as --model
	Workdir      string   // fixed working directory for the child
	DeviceSerial string   // exported as ANDROID_SERIAL when non-empty
	Timeout      time.Duration
	MaxOutput    int // capture cap per stream, bytes
}

// Run executes the agent with instruction as the final positional argument.
// A child that exits non-zero or exceeds the timeout yields a Result, not an
// error; errors are reserved for launch failures (missing binary, bad
// working directory).
func (r *Runner) Run(ctx context.Context, instruction string) (*Result, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("empty agent command")
	}

	argv := make([]string, 0, len(r.Command)+5)
	argv = append(argv, r.Command...)
	argv = append(argv, "--base-url", r.BaseURL, "--model", r.Model, instruction)

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	start := time.Now()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Workdir
	cmd.Env = os.Environ()
	if r.DeviceSerial != "" {
		cmd.Env = append(cmd.Env, "ANDROID_SERIAL="+r.DeviceSerial)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: r.MaxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: r.MaxOutput}

	runErr := cmd.Run()
	elapsed := time.Since(start)

	truncated := stdout.Len() >= r.MaxOutput || stderr.Len() >= r.MaxOutput

	res := &Result{
		RunID:     uuid.New().String(),
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Duration:  elapsed,
		Truncated: truncated,
	}

	if runErr != nil {
		// A killed child surfaces as an ExitError; the deadline tells
		// timeout apart from an ordinary failure.
		if ctx.Err() == context.DeadlineExceeded {
			res.TimedOut = true
			return res, nil
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// Binary not found or other launch error.
		return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
	}

	return res, nil
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
