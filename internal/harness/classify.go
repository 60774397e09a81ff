package harness

import (
	"fmt"
	"syscall"

	"github.com/deixis/proctor/internal/proc"
)

// Kind enumerates classified outcomes.
type Kind string

const (
	Success              Kind = "success"
	ReplayFailure        Kind = "replay_failure"
	Crashed              Kind = "crashed"
	UnexpectedSignal     Kind = "unexpected_signal"
	TimedOut             Kind = "timed_out"
	MissingExpectedCrash Kind = "missing_expected_crash"
	VerificationFailure  Kind = "verification_failure"
	LaunchFailure        Kind = "launch_failure"
	UserInterrupted      Kind = "interrupted"
)

// Outcome is the classified result of one iteration, or of the run as a
// whole for failures that abort before iterating.
type Outcome struct {
	Kind   Kind           `json:"kind"`
	Signal syscall.Signal `json:"signal,omitempty"` // crashed / unexpected_signal
	Exit   int            `json:"exit,omitempty"`   // replay_failure
}

// Failed reports whether the outcome aborts the run.
func (o Outcome) Failed() bool { return o.Kind != Success }

func (o Outcome) String() string {
	switch o.Kind {
	case Success:
		return "success"
	case ReplayFailure:
		return fmt.Sprintf("replay client failed (exit %d)", o.Exit)
	case Crashed:
		return fmt.Sprintf("server crashed (%s)", proc.SignalName(o.Signal))
	case UnexpectedSignal:
		return fmt.Sprintf("server terminated by unexpected %s", proc.SignalName(o.Signal))
	case TimedOut:
		return "server exceeded the grace period"
	case MissingExpectedCrash:
		return "expected crash did not occur"
	case VerificationFailure:
		return "binary verification failed"
	case LaunchFailure:
		return "child process failed to launch"
	case UserInterrupted:
		return "interrupted"
	}
	return string(o.Kind)
}

// Classify maps one iteration's raw results to an outcome. Signal-based
// server terminations take priority over the replay client's own exit
// code: a crashed server is diagnostic regardless of what the client
// reported. The policy flags cover tests that are supposed to crash
// (ShouldCore) or supposed to run out of time (FailureOK).
func Classify(replayExit int, serverStatus proc.Status, policy Policy) Outcome {
	if serverStatus.Signaled() {
		sig := serverStatus.Signal()
		switch {
		case proc.IsCrash(sig):
			if policy.ShouldCore {
				return Outcome{Kind: Success}
			}
			return Outcome{Kind: Crashed, Signal: sig}
		case sig == proc.TimeoutSignal:
			if policy.FailureOK {
				return Outcome{Kind: Success}
			}
			return Outcome{Kind: TimedOut}
		default:
			// Always a hard failure, independent of policy.
			return Outcome{Kind: UnexpectedSignal, Signal: sig}
		}
	}

	// The server exited normally. A required crash that never happened is
	// a failure of its own; otherwise the replay client's exit code
	// passes through.
	if policy.ShouldCore {
		return Outcome{Kind: MissingExpectedCrash}
	}
	if replayExit != 0 {
		return Outcome{Kind: ReplayFailure, Exit: replayExit}
	}
	return Outcome{Kind: Success}
}
