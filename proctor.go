// Package proctor is a test-execution harness: it launches a server under
// test, replays recorded interaction scripts against it, and classifies
// the outcome from exit codes and termination signals.
package proctor

// Version is the proctor release version.
const Version = "0.3.0"
