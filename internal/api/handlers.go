package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deixis/courier/internal/history"
	"github.com/deixis/courier/internal/runner"
)

// RunRequest is the body of POST /run.
type RunRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// RunResponse summarizes one agent run. Tail fields are null when the
// corresponding stream produced no output.
type RunResponse struct {
	Success    bool    `json:"success"`
	StdoutTail *string `json:"stdout_tail"`
	StderrTail *string `json:"stderr_tail"`
	Duration   float64 `json:"duration"` // seconds
}

// getHealth handles GET /health.
func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
}

// postRun handles POST /run. Agent-side failures (timeout, spawn error,
// non-zero exit) are reported as success=false in a 200 body; only request
// validation produces a client error status.
func (s *Server) postRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.sem != nil {
		s.sem <- struct{}{}
		defer func() { <-s.sem }()
	}

	started := time.Now()

	// The request context is deliberately not propagated: a client that
	// disconnects must not kill the agent mid-task. The runner enforces
	// its own deadline.
	res, err := s.exec.Run(context.Background(), req.Instruction)
	if err != nil {
		resp := RunResponse{
			Success:    false,
			StderrTail: strptr(err.Error()),
			Duration:   time.Since(started).Seconds(),
		}
		s.finishRun(c, uuid.New().String(), req.Instruction, started, resp, false, -1)
		return
	}

	resp := RunResponse{
		Success:  res.Success(),
		Duration: res.Duration.Seconds(),
	}
	if res.TimedOut {
		resp.StderrTail = strptr(s.timeoutMessage())
	} else {
		if len(res.Stdout) > 0 {
			resp.StdoutTail = strptr(runner.Tail(res.Stdout, s.cfg.TailBytes()))
		}
		if len(res.Stderr) > 0 {
			resp.StderrTail = strptr(runner.Tail(res.Stderr, s.cfg.TailBytes()))
		}
	}

	s.finishRun(c, res.RunID, req.Instruction, started, resp, res.TimedOut, res.ExitCode)
}

// getRun handles GET /runs/:id.
func (s *Server) getRun(c *gin.Context) {
	rec, err := s.store.Load(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// finishRun stores the run record and writes the response.
func (s *Server) finishRun(c *gin.Context, runID, instruction string, started time.Time, resp RunResponse, timedOut bool, exitCode int) {
	rec := &history.Record{
		ID:          runID,
		Instruction: instruction,
		Success:     resp.Success,
		ExitCode:    exitCode,
		TimedOut:    timedOut,
		StdoutTail:  deref(resp.StdoutTail),
		StderrTail:  deref(resp.StderrTail),
		Duration:    resp.Duration,
		StartedAt:   started.UTC(),
	}
	// Retrieval is best-effort; the response still carries the result.
	_ = s.store.Save(rec)

	c.Header("X-Run-Id", runID)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) timeoutMessage() string {
	return fmt.Sprintf("Command timed out after %d seconds", int(s.cfg.Timeout().Seconds()))
}

func strptr(v string) *string { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
