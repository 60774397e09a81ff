// Package harness drives one test run: it verifies the target binaries,
// then replays scenario batches against fresh server instances,
// classifying each iteration from the raw wait results and stopping at
// the first failure.
package harness

import (
	"context"
	"net"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/netalloc"
	"github.com/deixis/proctor/internal/proc"
	"github.com/deixis/proctor/internal/report"
)

// Process is the slice of the managed-process surface the orchestrator
// needs. Implemented by *proc.Managed.
type Process interface {
	proc.Waiter
	Terminate()
}

// Starter launches child processes: background services via Start, and
// children that run to completion via Run. The default starter is backed
// by the proc package; tests substitute fakes.
type Starter interface {
	Start(argv []string) (Process, error)
	Run(argv []string) (proc.Status, error)
}

// DialFunc opens and immediately closes one connection to the endpoint.
// Used for the post-replay connection drain; errors are ignored by the
// caller.
type DialFunc func(hostport string) error

// Harness runs the iteration state machine for one scenario set. A
// single control goroutine drives it; the started-process registry is
// mutated only from that goroutine, so no lock is needed.
type Harness struct {
	Config   *config.Config
	Policy   Policy
	Set      ScenarioSet
	Endpoint netalloc.Endpoint
	Log      *zap.Logger

	// PcapFile enables packet capture for each iteration when non-empty.
	PcapFile string

	Starter Starter
	Dial    DialFunc

	started []Process
}

// Result pairs the stored run record with the final classified outcome.
type Result struct {
	Run     *report.RunResult
	Outcome Outcome
}

// New builds a Harness with the default process starter and dialer. The
// endpoint is allocated here, once per harness, and shared by every
// iteration.
func New(cfg *config.Config, policy Policy, set ScenarioSet, port int, log *zap.Logger) *Harness {
	return &Harness{
		Config:   cfg,
		Policy:   policy,
		Set:      set,
		Endpoint: netalloc.Allocate(port),
		Log:      log,
		Starter:  procStarter{log: log},
		Dial:     tcpDial(cfg.ConnectTimeout()),
	}
}

// Run executes the full state machine: a verify phase, then one
// iteration per batch with fail-fast on the first non-success outcome.
// Every process started along the way is terminated before Run returns,
// on all paths including cancellation.
func (h *Harness) Run(ctx context.Context) *Result {
	rr := &report.RunResult{
		ID:        uuid.New().String(),
		Binaries:  h.Set.Binaries,
		Scenarios: h.Set.Scenarios,
		Endpoint:  h.Endpoint.HostPort(),
		StartedAt: time.Now().UTC(),
	}
	defer h.cleanup()

	out := h.run(ctx, rr)
	if out.Kind == UserInterrupted {
		h.Log.Warn("run interrupted, cleaning up")
	}
	rr.Outcome = string(out.Kind)
	rr.Detail = out.String()
	return &Result{Run: rr, Outcome: out}
}

func (h *Harness) run(ctx context.Context, rr *report.RunResult) Outcome {
	if out := h.verify(ctx); out.Failed() {
		return out
	}

	tools := h.Config.ResolvedTools()
	grace := h.Config.Grace()

	for i, batch := range h.Set.Batches(h.Policy.ShouldCore) {
		out := h.iterate(ctx, i, batch, tools, grace, rr)
		if out.Failed() {
			return out
		}
	}
	return Outcome{Kind: Success}
}

// verify runs the integrity check for every target binary, and the
// scenario validator when one is configured. Any failure aborts the run
// before a single background process is launched.
func (h *Harness) verify(ctx context.Context) Outcome {
	tools := h.Config.ResolvedTools()

	for _, bin := range h.Set.Binaries {
		if ctx.Err() != nil {
			return Outcome{Kind: UserInterrupted}
		}
		path := filepath.Join(h.Set.Dir, bin)
		status, err := h.Starter.Run(verifyArgv(tools, path))
		if err != nil || status != proc.ExitStatus(0) {
			h.Log.Error("binary verification failed",
				zap.String("binary", bin),
				zap.Stringer("status", status),
				zap.Error(err))
			return Outcome{Kind: VerificationFailure}
		}
	}

	if tools.Validator != "" && len(h.Set.Scenarios) > 0 {
		status, err := h.Starter.Run(validateArgv(tools, h.Set.Scenarios))
		if err != nil || status != proc.ExitStatus(0) {
			h.Log.Error("scenario validation failed",
				zap.Stringer("status", status),
				zap.Error(err))
			return Outcome{Kind: VerificationFailure}
		}
	}
	return Outcome{Kind: Success}
}

// iterate runs one scenario batch against a fresh server instance and
// classifies the combined result.
func (h *Harness) iterate(ctx context.Context, idx int, batch []string, tools config.Tools, grace time.Duration, rr *report.RunResult) Outcome {
	start := time.Now()
	log := h.Log.With(zap.Int("iteration", idx))
	log.Info("starting iteration", zap.Int("scenarios", len(batch)))

	server, err := h.Starter.Start(serverArgv(tools, h.Endpoint, h.Set, h.Policy, len(batch)))
	if err != nil {
		log.Error("server launch failed", zap.Error(err))
		return Outcome{Kind: LaunchFailure}
	}
	h.track(server)

	if h.PcapFile != "" {
		capture, err := h.Starter.Start(captureArgv(tools, h.Endpoint, h.PcapFile))
		if err != nil {
			log.Error("capture launch failed", zap.Error(err))
			return Outcome{Kind: LaunchFailure}
		}
		h.track(capture)
		defer capture.Terminate()
	}

	if ctx.Err() != nil {
		return Outcome{Kind: UserInterrupted}
	}

	replayStatus, err := h.Starter.Run(replayArgv(tools, h.Endpoint, batch, h.Policy))
	if err != nil {
		log.Error("replay launch failed", zap.Error(err))
		return Outcome{Kind: LaunchFailure}
	}

	// The server was told to expect len(batch) connections. If the
	// replay client gave up early, the server may still be blocked
	// waiting for the rest, so use up the remaining slots to let it exit
	// on its own instead of hanging. Dial errors are expected once the
	// server is gone.
	for range batch {
		_ = h.Dial(h.Endpoint.HostPort())
	}

	serverStatus := proc.WaitBounded(server, grace)
	if serverStatus == proc.SignalStatus(proc.TimeoutSignal) {
		log.Warn("server did not exit within grace period",
			zap.Duration("grace", grace))
		server.Terminate()
	}

	out := Classify(int(replayStatus), serverStatus, h.Policy)
	rr.Iterations = append(rr.Iterations, report.Iteration{
		Batch:        batch,
		ReplayExit:   int(replayStatus),
		ServerStatus: int(serverStatus),
		Outcome:      string(out.Kind),
		Duration:     time.Since(start),
	})
	log.Info("iteration classified",
		zap.Stringer("replay", replayStatus),
		zap.Stringer("server", serverStatus),
		zap.String("outcome", out.String()))

	if ctx.Err() != nil {
		return Outcome{Kind: UserInterrupted}
	}
	return out
}

func (h *Harness) track(p Process) {
	h.started = append(h.started, p)
}

// cleanup terminates every process started during the run. Terminate is
// idempotent, so processes that already exited or were already stopped
// are harmless to stop again.
func (h *Harness) cleanup() {
	for _, p := range h.started {
		p.Terminate()
	}
}

// procStarter is the production Starter, backed by the proc package.
type procStarter struct {
	log *zap.Logger
}

func (s procStarter) Start(argv []string) (Process, error) {
	return proc.Start(argv, s.log)
}

func (s procStarter) Run(argv []string) (proc.Status, error) {
	return proc.Run(argv, s.log)
}

// tcpDial returns the production DialFunc for the connection drain.
func tcpDial(timeout time.Duration) DialFunc {
	return func(hostport string) error {
		conn, err := net.DialTimeout("tcp", hostport, timeout)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}
