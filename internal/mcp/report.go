package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/proctor/internal/report"
)

type reportParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID from a proctor_run result"`
}

func (h *handler) reportHandler(ctx context.Context, req *mcp.CallToolRequest, params reportParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	result, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	return textResult(formatReport(result))
}

func formatReport(rr *report.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s\n", rr.ID)
	fmt.Fprintf(&b, "Started: %s\n", rr.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Endpoint: %s\n", rr.Endpoint)
	fmt.Fprintf(&b, "Binaries: %s\n", strings.Join(rr.Binaries, " "))
	fmt.Fprintf(&b, "Scenarios: %d\n", len(rr.Scenarios))
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Outcome: %s\n", rr.Outcome)
	if rr.Detail != "" && rr.Detail != rr.Outcome {
		fmt.Fprintf(&b, "Detail: %s\n", rr.Detail)
	}
	fmt.Fprintln(&b)

	if len(rr.Iterations) == 0 {
		fmt.Fprintln(&b, "No iterations ran.")
		return b.String()
	}

	fmt.Fprintln(&b, "Iterations:")
	for i, it := range rr.Iterations {
		fmt.Fprintf(&b, "  %d: %s\n", i, formatIteration(it))
	}
	return b.String()
}
