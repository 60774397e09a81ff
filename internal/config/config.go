// Package config loads and validates the optional .proctor YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for harness configuration.
const (
	// DefaultGrace is the post-replay grace period: how long the harness
	// waits for the server to exit on its own after the replay client has
	// finished, before forcing termination.
	DefaultGrace = 30 * time.Second

	// DefaultConnectTimeout bounds each connection attempt of the
	// post-replay drain step.
	DefaultConnectTimeout = 2 * time.Second
)

// Config holds the parsed .proctor configuration. All fields are
// optional; zero values represent defaults.
type Config struct {
	Version        int    `yaml:"version"`
	RawGrace       string `yaml:"grace"`           // e.g. "30s"
	RawConnTimeout string `yaml:"connect_timeout"` // e.g. "2s"
	Tools          Tools  `yaml:"tools"`
}

// Tools names the external binaries the harness drives. They are argv[0]
// values, resolved via PATH unless given as paths. Empty fields fall back
// to the defaults below; the validator has no default and the scenario
// validation step is skipped when it is unset.
type Tools struct {
	Verify    string `yaml:"verify"`
	Server    string `yaml:"server"`
	Replay    string `yaml:"replay"`
	Capture   string `yaml:"capture"`
	Validator string `yaml:"validator"`
}

var defaultTools = Tools{
	Verify:  "replay-verify",
	Server:  "replay-server",
	Replay:  "replay-client",
	Capture: "tcpdump",
}

// Grace returns the configured post-replay grace period or the default.
func (c *Config) Grace() time.Duration {
	if c.RawGrace != "" {
		d, err := time.ParseDuration(c.RawGrace)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultGrace
}

// ConnectTimeout returns the configured drain-dial timeout or the default.
func (c *Config) ConnectTimeout() time.Duration {
	if c.RawConnTimeout != "" {
		d, err := time.ParseDuration(c.RawConnTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultConnectTimeout
}

// ResolvedTools returns the tool set with defaults filled in.
func (c *Config) ResolvedTools() Tools {
	t := c.Tools
	if t.Verify == "" {
		t.Verify = defaultTools.Verify
	}
	if t.Server == "" {
		t.Server = defaultTools.Server
	}
	if t.Replay == "" {
		t.Replay = defaultTools.Replay
	}
	if t.Capture == "" {
		t.Capture = defaultTools.Capture
	}
	return t
}

// Load reads the .proctor file from dir, typically the directory holding
// the target binaries. A missing file yields a default Config.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ".proctor")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading .proctor: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .proctor: %w", err)
	}
	return cfg, nil
}
