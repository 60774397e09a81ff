// Package report provides structured persistence and retrieval of
// harness run results.
package report

import "time"

// Store persists and retrieves run results.
type Store interface {
	Save(result *RunResult) error
	Load(runID string) (*RunResult, error)
}

// RunResult is the stored record of one harness run.
type RunResult struct {
	ID        string    `json:"id"`
	Binaries  []string  `json:"binaries"`
	Scenarios []string  `json:"scenarios"`
	Endpoint  string    `json:"endpoint"`
	StartedAt time.Time `json:"started_at"`

	// Outcome is the final classified outcome of the run, "success" when
	// every iteration passed.
	Outcome string `json:"outcome"`
	// Detail is the human-readable form of the final outcome.
	Detail string `json:"detail,omitempty"`

	Iterations []Iteration `json:"iterations,omitempty"`
}

// Iteration records one server/replay cycle.
type Iteration struct {
	Batch      []string      `json:"batch"`
	ReplayExit int           `json:"replay_exit"`
	// ServerStatus uses the signed wait encoding: negative values are
	// signals, non-negative values are exit codes.
	ServerStatus int           `json:"server_status"`
	Outcome      string        `json:"outcome"`
	Duration     time.Duration `json:"duration"`
}
