package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/courier/internal/history"
	"github.com/deixis/courier/internal/runner"
)

type runParams struct {
	Instruction string `json:"instruction" jsonschema:"Natural-language instruction for the device agent, e.g. 'open settings'."`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Instruction) == "" {
		return errorResult("instruction is required")
	}

	started := time.Now()
	res, err := h.runner.Run(ctx, params.Instruction)
	if err != nil {
		return errorResult(fmt.Sprintf("agent run failed: %v", err))
	}

	rec := &history.Record{
		ID:          res.RunID,
		Instruction: params.Instruction,
		Success:     res.Success(),
		ExitCode:    res.ExitCode,
		TimedOut:    res.TimedOut,
		StdoutTail:  runner.Tail(res.Stdout, h.cfg.TailBytes()),
		StderrTail:  runner.Tail(res.Stderr, h.cfg.TailBytes()),
		Duration:    res.Duration.Seconds(),
		StartedAt:   started.UTC(),
	}
	if res.TimedOut {
		rec.StdoutTail = ""
		rec.StderrTail = fmt.Sprintf("Command timed out after %d seconds", int(h.cfg.Timeout().Seconds()))
	}

	// Save for agent_result.
	_ = h.store.Save(rec)

	return textResult(formatRecord(rec))
}

type resultParams struct {
	RunID string `json:"run_id" jsonschema:"Run id printed by a previous agent_run call."`
}

func (h *handler) resultHandler(ctx context.Context, req *mcp.CallToolRequest, params resultParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	rec, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("unknown run %s", params.RunID))
	}
	return textResult(formatRecord(rec))
}

func formatRecord(rec *history.Record) string {
	var b strings.Builder

	switch {
	case rec.Success:
		fmt.Fprintln(&b, "Status: PASS")
	case rec.TimedOut:
		fmt.Fprintln(&b, "Status: FAIL (timeout)")
	default:
		fmt.Fprintf(&b, "Status: FAIL (exit %d)\n", rec.ExitCode)
	}
	fmt.Fprintf(&b, "Run: %s\n", rec.ID)
	fmt.Fprintf(&b, "Instruction: %s\n", rec.Instruction)
	fmt.Fprintf(&b, "Duration: %.2fs\n", rec.Duration)

	if rec.StdoutTail != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "stdout (tail):")
		fmt.Fprintln(&b, rec.StdoutTail)
	}
	if rec.StderrTail != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "stderr (tail):")
		fmt.Fprintln(&b, rec.StderrTail)
	}

	return b.String()
}
