package harness

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Policy is the per-run configuration. Immutable after construction.
type Policy struct {
	// ShouldCore marks runs where a crash is the expected outcome. The
	// scenario set is then partitioned into singleton batches so the
	// crashing input can be attributed.
	ShouldCore bool
	// FailureOK tolerates a replay client failure or a timed-out server.
	FailureOK bool
	// Timeout is the per-iteration grace bound in seconds, passed through
	// to the server and the replay client. 0 means unbounded.
	Timeout int
	// Debug is the verbosity passthrough to child tools.
	Debug bool
	// Wrapper is an optional instrumentation executable the server
	// launcher prepends to the server invocation.
	Wrapper string
}

// ScenarioSet is the immutable input of one run: the ordered scenario
// scripts to replay and the binaries they target.
type ScenarioSet struct {
	Scenarios []string // scenario script paths, in replay order
	Binaries  []string // target binary names
	Dir       string   // directory containing the binaries
}

// Batches partitions the scenario list for iteration. With shouldCore,
// each scenario becomes its own singleton batch; otherwise the whole set
// runs as a single batch against one server instance.
func (s ScenarioSet) Batches(shouldCore bool) [][]string {
	if !shouldCore {
		return [][]string{s.Scenarios}
	}
	batches := make([][]string, 0, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		batches = append(batches, []string{sc})
	}
	return batches
}

// ResolveScenarios returns the scenario list from either an explicit
// file list or a directory glob of *.xml scripts. The two sources are
// mutually exclusive and exactly one is required.
func ResolveScenarios(files []string, dir string) ([]string, error) {
	switch {
	case len(files) > 0 && dir != "":
		return nil, errors.New("scenario files and a scenario directory are mutually exclusive")
	case len(files) > 0:
		return files, nil
	case dir != "":
		matches, err := filepath.Glob(filepath.Join(dir, "*.xml"))
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", dir, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no *.xml scenarios in %s", dir)
		}
		return matches, nil
	default:
		return nil, errors.New("no scenarios given")
	}
}
