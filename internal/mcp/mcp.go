// Package mcp provides the courier MCP server, exposing the agent runner
// as tools and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/courier"
	"github.com/deixis/courier/internal/config"
	"github.com/deixis/courier/internal/history"
	"github.com/deixis/courier/internal/runner"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	cfg    *config.Config
	runner *runner.Runner
	store  history.Store
}

// NewServer creates an MCP server with all courier tools registered.
func NewServer(cfg *config.Config, r *runner.Runner, store history.Store) *mcp.Server {
	h := &handler{
		cfg:    cfg,
		runner: r,
		store:  store,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "courier", Version: courier.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "agent_run",
		Description: `Send one natural-language instruction to the device agent and wait for it to finish.

The agent drives a pinned physical device; runs can take minutes. The result
reports success, the trailing slice of each output stream, and the elapsed
time. Results are stored for later retrieval via agent_result.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "agent_result",
		Description: `Fetch the stored record of a past agent run.

Use the run id printed by agent_run.`,
	}, h.resultHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "agent_status",
		Description: "Report the configured agent command, model, endpoint, pinned device, and timeout.",
	}, h.statusHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
