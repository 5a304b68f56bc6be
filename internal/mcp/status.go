package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type statusParams struct{}

func (h *handler) statusHandler(ctx context.Context, req *mcp.CallToolRequest, params statusParams) (*mcp.CallToolResult, any, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Command: %s\n", strings.Join(h.runner.Command, " "))
	fmt.Fprintf(&b, "Base URL: %s\n", h.runner.BaseURL)
	fmt.Fprintf(&b, "Model: %s\n", h.runner.Model)
	if h.runner.Workdir != "" {
		fmt.Fprintf(&b, "Workdir: %s\n", h.runner.Workdir)
	}
	if h.runner.DeviceSerial != "" {
		fmt.Fprintf(&b, "Device: %s\n", h.runner.DeviceSerial)
	}
	fmt.Fprintf(&b, "Timeout: %s\n", h.runner.Timeout)

	return textResult(b.String())
}
