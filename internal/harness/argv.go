package harness

import (
	"strconv"

	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/netalloc"
)

// Child process argv contracts. The shapes are fixed by the external
// tools' option parsers and must be reproduced exactly.

func verifyArgv(tools config.Tools, binPath string) []string {
	return []string{tools.Verify, binPath}
}

func validateArgv(tools config.Tools, scenarios []string) []string {
	return append([]string{tools.Validator}, scenarios...)
}

// serverArgv sizes the server to the batch: the connection budget (-m)
// equals the number of scenarios the iteration will replay.
func serverArgv(tools config.Tools, ep netalloc.Endpoint, set ScenarioSet, policy Policy, connections int) []string {
	argv := []string{
		tools.Server, "--insecure",
		"-p", strconv.Itoa(ep.Port),
		"-d", set.Dir,
		"-m", strconv.Itoa(connections),
	}
	if policy.Timeout > 0 {
		argv = append(argv, "-t", strconv.Itoa(policy.Timeout))
	}
	if policy.Debug {
		argv = append(argv, "--debug")
	} else {
		argv = append(argv, "-c", "0")
	}
	if policy.Wrapper != "" {
		argv = append(argv, "-w", policy.Wrapper)
	}
	return append(argv, set.Binaries...)
}

func replayArgv(tools config.Tools, ep netalloc.Endpoint, batch []string, policy Policy) []string {
	argv := []string{
		tools.Replay,
		"--host", ep.Addr,
		"--port", strconv.Itoa(ep.Port),
	}
	argv = append(argv, batch...)
	if policy.Timeout > 0 {
		argv = append(argv, "--timeout", strconv.Itoa(policy.Timeout))
	}
	if policy.FailureOK {
		argv = append(argv, "--failure_ok")
	}
	if policy.Debug {
		argv = append(argv, "--debug")
	}
	return argv
}

func captureArgv(tools config.Tools, ep netalloc.Endpoint, pcap string) []string {
	return []string{
		tools.Capture,
		"-i", "lo",
		"-w", pcap,
		"-s", "0",
		"-B", "65536",
		"port", strconv.Itoa(ep.Port), "and", "host", ep.Addr,
	}
}
