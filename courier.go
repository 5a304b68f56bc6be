// Package courier fronts an external device-control agent CLI with an
// HTTP and MCP surface.
package courier

// Version is the courier release version.
const Version = "0.2.0"
