// Package config handles loading and validation of scopekit.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/specvital/scopekit/pkg/lifecycle"
	"github.com/specvital/scopekit/pkg/runner"
)

// FileName is the configuration file looked up by Load.
const FileName = "scopekit.yaml"

// Config is the project configuration shared by sessions and runners.
type Config struct {
	// Color enables colored console output. Nil means enabled.
	Color    *bool    `yaml:"color,omitempty"`
	FailFast bool     `yaml:"failFast,omitempty"`
	Naming   string   `yaml:"naming,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
	// Separator joins flat names. Ignored for hierarchical naming.
	Separator string `yaml:"separator,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Naming:    lifecycle.NamingFlat,
		Separator: lifecycle.DefaultSeparator,
		Workers:   runner.DefaultWorkers,
	}
}

// Load reads and parses scopekit.yaml from the given directory.
// Fields absent from the file keep their Default values.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := lifecycle.NamerFor(c.Naming, c.Separator); err != nil {
		return err
	}
	if err := lifecycle.ValidatePatterns(c.Patterns); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Workers > runner.MaxWorkers {
		return fmt.Errorf("workers must not exceed %d, got %d", runner.MaxWorkers, c.Workers)
	}
	return nil
}

// ColorEnabled reports whether console output should be colored.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

// SessionOptions converts the configuration into session options.
// The naming style must already be valid, as it is after Load.
func (c *Config) SessionOptions() []lifecycle.Option {
	var opts []lifecycle.Option
	if namer, err := lifecycle.NamerFor(c.Naming, c.Separator); err == nil {
		opts = append(opts, lifecycle.WithNamer(namer))
	}
	if len(c.Patterns) > 0 {
		opts = append(opts, lifecycle.WithPatterns(c.Patterns...))
	}
	return opts
}

// RunnerOptions converts the configuration into runner options.
func (c *Config) RunnerOptions() []runner.Option {
	return []runner.Option{
		runner.WithWorkers(c.Workers),
		runner.WithFailFast(c.FailFast),
		runner.WithNoColor(!c.ColorEnabled()),
	}
}
