// Package mcp provides the Proctor MCP server, exposing test runs and
// stored run reports as tools.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/deixis/proctor"
	"github.com/deixis/proctor/internal/report"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	store report.Store
	log   *zap.Logger
}

// NewServer creates an MCP server with all Proctor tools registered.
func NewServer(store report.Store, log *zap.Logger) *mcp.Server {
	h := &handler{store: store, log: log}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "proctor", Version: proctor.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proctor_run",
		Description: `Replay scenario scripts against target binaries and classify the result.

Verifies the binaries, launches a fresh server instance per iteration, replays the
scenarios, and classifies the combined exit/signal results. Stops at the first
failing iteration. Results are stored for drill-down via proctor_report.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "proctor_report",
		Description: `Retrieve the iteration-level detail of a previous proctor_run.

Use the run_id from the proctor_run output.`,
	}, h.reportHandler)

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
