// Command proctor replays recorded network scenarios against target
// binaries and classifies the results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deixis/proctor"
	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/harness"
	"github.com/deixis/proctor/internal/logging"
	procmcp "github.com/deixis/proctor/internal/mcp"
	"github.com/deixis/proctor/internal/proc"
	"github.com/deixis/proctor/internal/report"
)

func main() {
	root := &cobra.Command{
		Use:          "proctor",
		Short:        "Replay recorded scenarios against target binaries",
		Version:      proctor.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "proctor version %s\n" .Version}}`)
	root.AddCommand(newRunCmd())
	root.AddCommand(newMCPCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		directory   string
		scenarios   []string
		scenarioDir string
		shouldCore  bool
		failureOK   bool
		timeout     int
		port        int
		debug       bool
		wrapper     string
		pcap        string
		logFile     string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "run [flags] <binary>...",
		Short: "Replay the scenario set against the given binaries",
		Long: `Run verifies the target binaries, then replays the scenario scripts
against a fresh server instance per iteration and classifies the
combined exit and signal results. The run stops at the first failing
iteration, and every child process is terminated before exit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := harness.ResolveScenarios(scenarios, scenarioDir)
			if err != nil {
				return err
			}
			cfg, err := config.Load(directory)
			if err != nil {
				return err
			}
			log, err := logging.New(debug, logFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			policy := harness.Policy{
				ShouldCore: shouldCore,
				FailureOK:  failureOK,
				Timeout:    timeout,
				Debug:      debug,
				Wrapper:    wrapper,
			}
			set := harness.ScenarioSet{
				Scenarios: resolved,
				Binaries:  args,
				Dir:       directory,
			}

			h := harness.New(cfg, policy, set, port, log)
			h.PcapFile = pcap

			res := h.Run(ctx)
			_ = log.Sync()

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res.Run); err != nil {
					return err
				}
			} else {
				fmt.Print(formatRunCLI(res))
			}

			if res.Outcome.Failed() {
				os.Exit(255)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "directory containing the target binaries")
	_ = cmd.MarkFlagRequired("directory")
	cmd.Flags().StringSliceVarP(&scenarios, "scenario", "s", nil, "scenario script to replay (repeatable)")
	cmd.Flags().StringVar(&scenarioDir, "scenario-dir", "", "directory globbed for *.xml scenario scripts")
	cmd.MarkFlagsMutuallyExclusive("scenario", "scenario-dir")
	cmd.MarkFlagsOneRequired("scenario", "scenario-dir")
	cmd.Flags().BoolVar(&shouldCore, "should-core", false, "the scenarios are expected to crash the server")
	cmd.Flags().BoolVar(&failureOK, "failure-ok", false, "tolerate replay failures and server timeouts")
	cmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "per-iteration timeout in seconds (0 = unbounded)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "explicit server port (0 = random high port)")
	cmd.Flags().BoolVar(&debug, "debug", false, "verbose output, passed through to the child tools")
	cmd.Flags().StringVarP(&wrapper, "wrapper", "w", "", "instrumentation executable prepended to the server invocation")
	cmd.Flags().StringVar(&pcap, "pcap", "", "write a packet capture of the replay traffic to this file")
	cmd.Flags().StringVar(&logFile, "log", "", "write the log to this file instead of stdout")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the run record as JSON")

	return cmd
}

func formatRunCLI(res *harness.Result) string {
	var b strings.Builder

	if res.Outcome.Failed() {
		fmt.Fprintln(&b, "FAIL")
	} else {
		fmt.Fprintln(&b, "ok")
	}
	fmt.Fprintln(&b)

	for i, it := range res.Run.Iterations {
		fmt.Fprintf(&b, "  %3d  %-24s replay %-3d server %-12s %v\n",
			i, it.Outcome, it.ReplayExit, proc.Status(it.ServerStatus),
			it.Duration.Round(time.Millisecond))
	}
	if len(res.Run.Iterations) > 0 {
		fmt.Fprintln(&b)
	}

	if res.Outcome.Failed() {
		fmt.Fprintf(&b, "%s\n", res.Outcome)
	}
	return b.String()
}

func newMCPCmd() *cobra.Command {
	var (
		httpAddr     string
		instructions bool
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if instructions {
				fmt.Print(procmcp.Instructions)
				return nil
			}

			// Stdio transport owns stdout, so the log goes to stderr.
			log, err := logging.New(false, "stderr")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			store := report.NewMemStore(5, report.NewDiskStore(""))
			server := procmcp.NewServer(store, log)

			if httpAddr != "" {
				return serveHTTP(ctx, server, httpAddr, log)
			}
			return server.Run(ctx, &mcpsdk.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "start HTTP server on address (e.g. :9090)")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")

	return cmd
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, log *zap.Logger) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Info("listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
