// Package config loads and validates the optional courier YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for server and runner configuration.
const (
	DefaultListen    = "127.0.0.1:9001"
	DefaultTimeout   = 5 * time.Minute
	DefaultTailBytes = 2000
	DefaultMaxOutput = 1 << 20 // 1 MB per stream
	DefaultHistory   = 5
)

// DefaultPath is the config file read when no -config flag is given.
const DefaultPath = "courier.yaml"

// Config holds the parsed courier configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version       int           `yaml:"version"`
	Listen        string        `yaml:"listen"`         // HTTP bind address
	RawTimeout    string        `yaml:"timeout"`        // e.g. "5m", "30s"
	RawTailBytes  int           `yaml:"tail_bytes"`     // trailing chars returned per stream
	RawMaxOutput  int           `yaml:"max_output"`     // capture cap per stream, bytes
	MaxConcurrent int           `yaml:"max_concurrent"` // 0 = unbounded
	Agent         AgentConfig   `yaml:"agent"`
	History       HistoryConfig `yaml:"history"`
}

// AgentConfig describes the external agent command line.
type AgentConfig struct {
	Command      []string `yaml:"command"`       // argv prefix, e.g. [./venv/bin/python, main.py]
	BaseURL      string   `yaml:"base_url"`      // passed as --base-url
	Model        string   `yaml:"model"`         // passed as --model
	Workdir      string   `yaml:"workdir"`       // fixed working directory for the agent
	DeviceSerial string   `yaml:"device_serial"` // exported as ANDROID_SERIAL to the child
}

// HistoryConfig controls the in-memory run record cache.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// ListenAddr returns the configured bind address or the default.
func (c *Config) ListenAddr() string {
	if c.Listen != "" {
		return c.Listen
	}
	return DefaultListen
}

// Timeout returns the configured run ceiling or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// TailBytes returns the configured tail size or the default.
func (c *Config) TailBytes() int {
	if c.RawTailBytes > 0 {
		return c.RawTailBytes
	}
	return DefaultTailBytes
}

// MaxOutputBytes returns the configured capture cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// HistoryCapacity returns the configured LRU capacity or the default.
func (c *Config) HistoryCapacity() int {
	if c.History.Capacity > 0 {
		return c.History.Capacity
	}
	return DefaultHistory
}

// Validate reports configuration errors that cannot be defaulted away.
func (c *Config) Validate() error {
	if len(c.Agent.Command) == 0 {
		return fmt.Errorf("agent.command is required")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must be >= 0")
	}
	return nil
}

// Load reads the courier config file at path. A missing file yields a
// default Config only when path is the default location; an explicitly
// given path must exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
