package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/harness"
	"github.com/deixis/proctor/internal/proc"
	"github.com/deixis/proctor/internal/report"
)

type runParams struct {
	Binaries    []string `json:"binaries" jsonschema:"names of the target binaries inside directory"`
	Directory   string   `json:"directory" jsonschema:"directory containing the target binaries (and an optional .proctor config)"`
	Scenarios   []string `json:"scenarios,omitempty" jsonschema:"explicit scenario script paths, in replay order; mutually exclusive with scenario_dir"`
	ScenarioDir string   `json:"scenario_dir,omitempty" jsonschema:"directory globbed for *.xml scenario scripts; mutually exclusive with scenarios"`
	ShouldCore  bool     `json:"should_core,omitempty" jsonschema:"the scenarios are expected to crash the server; each scenario runs in its own iteration"`
	FailureOK   bool     `json:"failure_ok,omitempty" jsonschema:"tolerate replay failures and server timeouts"`
	Timeout     int      `json:"timeout,omitempty" jsonschema:"per-iteration timeout in seconds passed to the server and replay client; 0 means unbounded"`
	Port        int      `json:"port,omitempty" jsonschema:"explicit server port; 0 picks a random high port"`
	Debug       bool     `json:"debug,omitempty" jsonschema:"verbose output from the child tools"`
	Wrapper     string   `json:"wrapper,omitempty" jsonschema:"instrumentation executable the server launcher prepends to the server invocation"`
	Pcap        string   `json:"pcap,omitempty" jsonschema:"write a packet capture of the replay traffic to this file"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	if params.Directory == "" {
		return errorResult("directory is required")
	}
	if len(params.Binaries) == 0 {
		return errorResult("binaries is required")
	}
	scenarios, err := harness.ResolveScenarios(params.Scenarios, params.ScenarioDir)
	if err != nil {
		return errorResult(err.Error())
	}

	cfg, err := config.Load(params.Directory)
	if err != nil {
		return errorResult(fmt.Sprintf("loading config: %v", err))
	}

	policy := harness.Policy{
		ShouldCore: params.ShouldCore,
		FailureOK:  params.FailureOK,
		Timeout:    params.Timeout,
		Debug:      params.Debug,
		Wrapper:    params.Wrapper,
	}
	set := harness.ScenarioSet{
		Scenarios: scenarios,
		Binaries:  params.Binaries,
		Dir:       params.Directory,
	}

	hn := harness.New(cfg, policy, set, params.Port, h.log)
	hn.PcapFile = params.Pcap

	res := hn.Run(ctx)
	if err := h.store.Save(res.Run); err != nil {
		h.log.Warn("saving run result failed")
	}

	return textResult(formatRun(res))
}

func formatRun(res *harness.Result) string {
	var b strings.Builder

	if res.Outcome.Failed() {
		fmt.Fprintln(&b, "Status: FAIL")
	} else {
		fmt.Fprintln(&b, "Status: PASS")
	}
	fmt.Fprintf(&b, "Run: %s\n", res.Run.ID)
	fmt.Fprintf(&b, "Endpoint: %s\n", res.Run.Endpoint)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Outcome: %s\n", res.Outcome)
	fmt.Fprintln(&b)

	if len(res.Run.Iterations) > 0 {
		fmt.Fprintln(&b, "Iterations:")
		for i, it := range res.Run.Iterations {
			fmt.Fprintf(&b, "  %d: %s\n", i, formatIteration(it))
		}
		fmt.Fprintln(&b)
	}

	if res.Outcome.Failed() {
		fmt.Fprintf(&b, "Inspect with proctor_report(run_id=%q).\n", res.Run.ID)
	}
	return b.String()
}

func formatIteration(it report.Iteration) string {
	return fmt.Sprintf("%s (replay exit %d, server %s, %s) %v",
		it.Outcome, it.ReplayExit, proc.Status(it.ServerStatus),
		strings.Join(it.Batch, " "), it.Duration.Round(time.Millisecond))
}
