package proc

import "time"

// Waiter blocks until a process exits. *Managed implements it.
type Waiter interface {
	Wait() Status
}

// WaitBounded waits for w, but for at most d. If the timer fires first,
// it returns the synthesized timeout status and leaves the process
// running; the caller is responsible for terminating it. The timer is
// disarmed before returning on every path, so a stale timer can never
// fire against a later wait. d <= 0 means wait without bound.
func WaitBounded(w Waiter, d time.Duration) Status {
	if d <= 0 {
		return w.Wait()
	}

	done := make(chan Status, 1)
	go func() { done <- w.Wait() }()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case s := <-done:
		return s
	case <-timer.C:
		return SignalStatus(TimeoutSignal)
	}
}
