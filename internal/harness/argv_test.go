package harness

import (
	"reflect"
	"testing"

	"github.com/deixis/proctor/internal/config"
	"github.com/deixis/proctor/internal/netalloc"
)

var (
	testTools = config.Tools{
		Verify:  "replay-verify",
		Server:  "replay-server",
		Replay:  "replay-client",
		Capture: "tcpdump",
	}
	testEP = netalloc.Endpoint{Addr: "127.5.6.7", Port: 50001}
)

func TestServerArgv_Defaults(t *testing.T) {
	set := ScenarioSet{Binaries: []string{"target_1", "target_2"}, Dir: "/cbs"}
	got := serverArgv(testTools, testEP, set, Policy{}, 3)
	want := []string{
		"replay-server", "--insecure",
		"-p", "50001",
		"-d", "/cbs",
		"-m", "3",
		"-c", "0",
		"target_1", "target_2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("serverArgv = %q, want %q", got, want)
	}
}

func TestServerArgv_AllOptions(t *testing.T) {
	set := ScenarioSet{Binaries: []string{"target"}, Dir: "/cbs"}
	policy := Policy{Timeout: 15, Debug: true, Wrapper: "/usr/bin/tracer"}
	got := serverArgv(testTools, testEP, set, policy, 1)
	want := []string{
		"replay-server", "--insecure",
		"-p", "50001",
		"-d", "/cbs",
		"-m", "1",
		"-t", "15",
		"--debug",
		"-w", "/usr/bin/tracer",
		"target",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("serverArgv = %q, want %q", got, want)
	}
}

func TestReplayArgv(t *testing.T) {
	got := replayArgv(testTools, testEP, []string{"a.xml", "b.xml"}, Policy{})
	want := []string{
		"replay-client",
		"--host", "127.5.6.7",
		"--port", "50001",
		"a.xml", "b.xml",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("replayArgv = %q, want %q", got, want)
	}
}

func TestReplayArgv_AllOptions(t *testing.T) {
	policy := Policy{Timeout: 20, FailureOK: true, Debug: true}
	got := replayArgv(testTools, testEP, []string{"a.xml"}, policy)
	want := []string{
		"replay-client",
		"--host", "127.5.6.7",
		"--port", "50001",
		"a.xml",
		"--timeout", "20",
		"--failure_ok",
		"--debug",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("replayArgv = %q, want %q", got, want)
	}
}

func TestCaptureArgv(t *testing.T) {
	got := captureArgv(testTools, testEP, "/tmp/run.pcap")
	want := []string{
		"tcpdump",
		"-i", "lo",
		"-w", "/tmp/run.pcap",
		"-s", "0",
		"-B", "65536",
		"port", "50001", "and", "host", "127.5.6.7",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("captureArgv = %q, want %q", got, want)
	}
}

func TestVerifyArgv(t *testing.T) {
	got := verifyArgv(testTools, "/cbs/target_1")
	want := []string{"replay-verify", "/cbs/target_1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("verifyArgv = %q, want %q", got, want)
	}
}

func TestValidateArgv(t *testing.T) {
	tools := testTools
	tools.Validator = "scenario-lint"
	got := validateArgv(tools, []string{"a.xml", "b.xml"})
	want := []string{"scenario-lint", "a.xml", "b.xml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("validateArgv = %q, want %q", got, want)
	}
}
