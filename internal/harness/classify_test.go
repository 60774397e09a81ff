package harness

import (
	"syscall"
	"testing"

	"github.com/deixis/proctor/internal/proc"
)

func TestClassify_CrashSignals(t *testing.T) {
	crash := []syscall.Signal{syscall.SIGSEGV, syscall.SIGILL, syscall.SIGBUS}

	for _, sig := range crash {
		// Expected crash: success regardless of the replay exit code.
		out := Classify(1, proc.SignalStatus(sig), Policy{ShouldCore: true})
		if out.Kind != Success {
			t.Errorf("Classify(crash %v, ShouldCore) = %v, want success", sig, out.Kind)
		}

		// Unexpected crash: failure, carrying the signal.
		out = Classify(0, proc.SignalStatus(sig), Policy{})
		if out.Kind != Crashed {
			t.Errorf("Classify(crash %v) = %v, want crashed", sig, out.Kind)
		}
		if out.Signal != sig {
			t.Errorf("Classify(crash %v).Signal = %v", sig, out.Signal)
		}
	}
}

func TestClassify_Timeout(t *testing.T) {
	status := proc.SignalStatus(proc.TimeoutSignal)

	out := Classify(0, status, Policy{FailureOK: true})
	if out.Kind != Success {
		t.Errorf("Classify(timeout, FailureOK) = %v, want success", out.Kind)
	}

	out = Classify(0, status, Policy{})
	if out.Kind != TimedOut {
		t.Errorf("Classify(timeout) = %v, want timed_out", out.Kind)
	}
}

func TestClassify_UnexpectedSignal(t *testing.T) {
	// Any signal outside the crash/timeout vocabulary is a hard failure,
	// independent of policy.
	policies := []Policy{{}, {ShouldCore: true}, {FailureOK: true}, {ShouldCore: true, FailureOK: true}}
	for _, p := range policies {
		out := Classify(0, proc.SignalStatus(syscall.SIGKILL), p)
		if out.Kind != UnexpectedSignal {
			t.Errorf("Classify(SIGKILL, %+v) = %v, want unexpected_signal", p, out.Kind)
		}
		if out.Signal != syscall.SIGKILL {
			t.Errorf("Signal = %v, want SIGKILL", out.Signal)
		}
	}
}

func TestClassify_MissingExpectedCrash(t *testing.T) {
	// Normal server exit with ShouldCore: the required crash never came,
	// whatever the replay client said.
	for _, replayExit := range []int{0, 1} {
		out := Classify(replayExit, proc.ExitStatus(0), Policy{ShouldCore: true})
		if out.Kind != MissingExpectedCrash {
			t.Errorf("Classify(replay %d, exit 0, ShouldCore) = %v, want missing_expected_crash", replayExit, out.Kind)
		}
	}
}

func TestClassify_ReplayPassthrough(t *testing.T) {
	out := Classify(0, proc.ExitStatus(0), Policy{})
	if out.Kind != Success {
		t.Errorf("Classify(0, exit 0) = %v, want success", out.Kind)
	}

	out = Classify(3, proc.ExitStatus(0), Policy{})
	if out.Kind != ReplayFailure || out.Exit != 3 {
		t.Errorf("Classify(3, exit 0) = %+v, want replay_failure exit 3", out)
	}
}

func TestClassify_ServerExitCodeIgnoredWithoutCrash(t *testing.T) {
	// The server's own non-zero exit code is not classified; only
	// signals and the replay result matter.
	out := Classify(0, proc.ExitStatus(2), Policy{})
	if out.Kind != Success {
		t.Errorf("Classify(0, exit 2) = %v, want success", out.Kind)
	}
}

func TestOutcome_Failed(t *testing.T) {
	if (Outcome{Kind: Success}).Failed() {
		t.Error("success reported as failed")
	}
	for _, k := range []Kind{ReplayFailure, Crashed, UnexpectedSignal, TimedOut, MissingExpectedCrash, VerificationFailure, LaunchFailure, UserInterrupted} {
		if !(Outcome{Kind: k}).Failed() {
			t.Errorf("%s not reported as failed", k)
		}
	}
}
