package proc

import (
	"fmt"
	"syscall"
)

// Status encodes how a process ended: a negative value -s means the
// process was terminated by signal s, a non-negative value is a normal
// exit code. This is the canonical representation passed between the
// managed process, the bounded wait and the outcome classifier.
type Status int

// SignalStatus encodes termination by sig.
func SignalStatus(sig syscall.Signal) Status { return Status(-int(sig)) }

// ExitStatus encodes a normal exit with code.
func ExitStatus(code int) Status { return Status(code) }

// Signaled reports whether the status encodes a signal termination.
func (s Status) Signaled() bool { return s < 0 }

// Signal returns the terminating signal. Only meaningful when Signaled
// reports true.
func (s Status) Signal() syscall.Signal { return syscall.Signal(-int(s)) }

// ExitCode returns the normal exit code. Only meaningful when Signaled
// reports false.
func (s Status) ExitCode() int { return int(s) }

// The harness understands a closed signal vocabulary: three crash
// signals plus the synthesized timeout signal. Everything else is
// "unexpected".
const (
	SigIll  = syscall.SIGILL
	SigBus  = syscall.SIGBUS
	SigSegv = syscall.SIGSEGV

	// TimeoutSignal marks a bounded wait that expired before the process
	// exited. It is distinct from every crash signal.
	TimeoutSignal = syscall.SIGALRM
)

var signalNames = map[syscall.Signal]string{
	SigIll:        "SIGILL",
	SigBus:        "SIGBUS",
	SigSegv:       "SIGSEGV",
	TimeoutSignal: "SIGALRM",
}

// SignalName returns the fixed logical name for the signals the harness
// distinguishes, or "signal N" for anything outside the table.
func SignalName(sig syscall.Signal) string {
	if n, ok := signalNames[sig]; ok {
		return n
	}
	return fmt.Sprintf("signal %d", int(sig))
}

// IsCrash reports whether sig is one of the designated crash signals.
func IsCrash(sig syscall.Signal) bool {
	switch sig {
	case SigIll, SigBus, SigSegv:
		return true
	}
	return false
}

func (s Status) String() string {
	if s.Signaled() {
		return SignalName(s.Signal())
	}
	return fmt.Sprintf("exit %d", int(s))
}
