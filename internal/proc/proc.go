// Package proc owns child processes for the harness: it starts them with
// continuously drained output streams, terminates them idempotently, and
// reports how they ended as a signed wait status.
package proc

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// startProbe is how long Start watches a fresh child before declaring it
// launched. A child that is already gone within this window is a launch
// failure (bad arguments, missing file) rather than a running service.
const startProbe = 100 * time.Millisecond

// maxLine bounds a single drained output line.
const maxLine = 1 << 20

// LaunchError reports a child that exited immediately after spawn.
type LaunchError struct {
	Argv   []string
	Status Status
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s exited immediately after launch (%s)", e.Argv[0], e.Status)
}

// Managed is a child process whose lifecycle is fully owned by this
// wrapper. Both output streams are drained by their own goroutine for the
// whole process lifetime, so a verbose or stalled child can never fill a
// pipe buffer that nobody reads.
type Managed struct {
	argv []string
	cmd  *exec.Cmd
	log  *zap.Logger

	done   chan struct{} // closed once drains have joined and the process is reaped
	status Status        // valid only after done is closed

	termOnce sync.Once
}

// Start launches argv as a background service, draining its output into
// log. It fails with a *LaunchError if the child is already gone after
// the startup probe window.
func Start(argv []string, log *zap.Logger) (*Managed, error) {
	m, err := launch(argv, log)
	if err != nil {
		return nil, err
	}

	select {
	case <-m.done:
		return nil, &LaunchError{Argv: argv, Status: m.status}
	case <-time.After(startProbe):
	}
	return m, nil
}

// Run launches argv and blocks until it exits, draining output into log.
// Used for children expected to finish on their own, such as the replay
// client and the verifier.
func Run(argv []string, log *zap.Logger) (Status, error) {
	m, err := launch(argv, log)
	if err != nil {
		return 0, err
	}
	return m.Wait(), nil
}

func launch(argv []string, log *zap.Logger) (*Managed, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argv")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe for %s: %w", argv[0], err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	m := &Managed{
		argv: argv,
		cmd:  cmd,
		log: log.With(
			zap.String("proc", filepath.Base(argv[0])),
			zap.Int("pid", cmd.Process.Pid),
		),
		done: make(chan struct{}),
	}

	// One drain per stream. Stdout lines are logged verbatim; stderr may
	// carry untrusted binary content, so those lines are quoted.
	var drains sync.WaitGroup
	drains.Add(2)
	go func() {
		defer drains.Done()
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			m.log.Info(sc.Text())
		}
	}()
	go func() {
		defer drains.Done()
		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			m.log.Warn(strconv.Quote(sc.Text()))
		}
	}()

	// Reaper. Drains must observe end-of-stream before cmd.Wait closes
	// the pipes out from under them.
	go func() {
		drains.Wait()
		m.status = waitStatus(cmd.Wait(), cmd)
		close(m.done)
	}()

	return m, nil
}

// Wait blocks until the process has exited and both drains have observed
// end-of-stream, then returns the encoded status.
func (m *Managed) Wait() Status {
	<-m.done
	return m.status
}

// Terminate is idempotent: it signals the process once, ignoring
// "already gone", then blocks until both drains have finished and the
// process has been reaped. Signalling before joining guarantees that
// everything the child wrote before dying is captured.
func (m *Managed) Terminate() {
	m.termOnce.Do(func() {
		err := m.cmd.Process.Signal(syscall.SIGTERM)
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			m.log.Debug("terminate signal", zap.Error(err))
		}
	})
	<-m.done
}

// waitStatus converts the result of cmd.Wait into the signed encoding.
func waitStatus(err error, cmd *exec.Cmd) Status {
	if err == nil {
		return ExitStatus(cmd.ProcessState.ExitCode())
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return SignalStatus(ws.Signal())
		}
		return ExitStatus(ee.ExitCode())
	}
	// Wait itself failed (I/O error on the pipes, not the child). Encode
	// as a conventional failure code.
	return ExitStatus(255)
}
