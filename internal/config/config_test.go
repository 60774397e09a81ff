package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`version: 1
grace: 10s
connect_timeout: 500ms
tools:
  server: /opt/harness/bin/test-server
  validator: scenario-lint
`)
	if err := os.WriteFile(filepath.Join(dir, ".proctor"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if got := cfg.Grace(); got != 10*time.Second {
		t.Errorf("Grace() = %v, want 10s", got)
	}
	if got := cfg.ConnectTimeout(); got != 500*time.Millisecond {
		t.Errorf("ConnectTimeout() = %v, want 500ms", got)
	}

	tools := cfg.ResolvedTools()
	if tools.Server != "/opt/harness/bin/test-server" {
		t.Errorf("Tools.Server = %q, want the configured path", tools.Server)
	}
	if tools.Replay != "replay-client" {
		t.Errorf("Tools.Replay = %q, want default replay-client", tools.Replay)
	}
	if tools.Validator != "scenario-lint" {
		t.Errorf("Tools.Validator = %q, want scenario-lint", tools.Validator)
	}
}

func TestLoad_MissingFileDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Grace(); got != DefaultGrace {
		t.Errorf("Grace() = %v, want default %v", got, DefaultGrace)
	}
	tools := cfg.ResolvedTools()
	if tools.Verify != "replay-verify" || tools.Capture != "tcpdump" {
		t.Errorf("default tools = %+v", tools)
	}
	if tools.Validator != "" {
		t.Errorf("Validator = %q, want unset by default", tools.Validator)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".proctor"), []byte("tools: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestGrace_InvalidFallsBack(t *testing.T) {
	cfg := &Config{RawGrace: "soon"}
	if got := cfg.Grace(); got != DefaultGrace {
		t.Errorf("Grace() = %v, want default for unparsable value", got)
	}
	cfg = &Config{RawGrace: "-5s"}
	if got := cfg.Grace(); got != DefaultGrace {
		t.Errorf("Grace() = %v, want default for negative value", got)
	}
}
