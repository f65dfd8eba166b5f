// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "BUREAU_MONITOR_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the monitor configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Source configures where snapshots are fetched from.
	Source SourceConfig `yaml:"source"`

	// Poll configures the fetch loop timing.
	Poll PollConfig `yaml:"poll"`

	// Substitute configures the dataset shown when the source has
	// never been reached.
	Substitute SubstituteConfig `yaml:"substitute"`

	// Display configures the terminal UI.
	Display DisplayConfig `yaml:"display"`

	// Journal configures the optional outcome journal.
	Journal JournalConfig `yaml:"journal"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Source     *SourceConfig     `yaml:"source,omitempty"`
	Poll       *PollConfig       `yaml:"poll,omitempty"`
	Substitute *SubstituteConfig `yaml:"substitute,omitempty"`
	Display    *DisplayConfig    `yaml:"display,omitempty"`
	Journal    *JournalConfig    `yaml:"journal,omitempty"`
}

// SourceConfig configures the rollout service endpoint.
type SourceConfig struct {
	// Endpoint is the service base URL: http://host:port,
	// https://host, or unix:///path/to/socket.
	// Default: http://localhost:8000
	Endpoint string `yaml:"endpoint"`

	// Path is the snapshot resource path.
	// Default: /api/history
	Path string `yaml:"path"`
}

// PollConfig configures the fetch loop. Durations use Go syntax
// ("2s", "1500ms").
type PollConfig struct {
	// Interval is the time between fetch starts.
	// Default: 2s
	Interval time.Duration `yaml:"interval"`

	// FetchTimeout bounds a single fetch.
	// Default: 10s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// SubstituteConfig configures the fallback dataset.
type SubstituteConfig struct {
	// File is a JSON, JSONC, YAML or CBOR snapshot to use instead of
	// the built-in dataset.
	File string `yaml:"file"`

	// Builtin enables the built-in demonstration dataset when File is
	// empty. Default: true (development), false (production)
	Builtin bool `yaml:"builtin"`
}

// DisplayConfig configures the terminal UI.
type DisplayConfig struct {
	// SplitRatio is the fraction of the width given to the rollout
	// list, between 0.2 and 0.8. Default: 0.4
	SplitRatio float64 `yaml:"split_ratio"`
}

// JournalConfig configures the SQLite journal of poll outcomes and
// rollout changes.
type JournalConfig struct {
	// Path is the database file. Empty disables the journal.
	Path string `yaml:"path"`
}

// Default returns the default configuration, the base that a config
// file is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Source: SourceConfig{
			Endpoint: "http://localhost:8000",
			Path:     "/api/history",
		},
		Poll: PollConfig{
			Interval:     2 * time.Second,
			FetchTimeout: 10 * time.Second,
		},
		Substitute: SubstituteConfig{
			Builtin: true,
		},
		Display: DisplayConfig{
			SplitRatio: 0.4,
		},
	}
}

// Load loads configuration from the file named by
// BUREAU_MONITOR_CONFIG. There is no fallback: an unset variable is an
// error.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your monitor config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// section for the configured environment, and expands ${VAR} and
// ${VAR:-default} in the endpoint and substitute file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production never shows demonstration data unless the
		// production section asks for it.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Substitute: &SubstituteConfig{Builtin: false},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Source != nil {
		if overrides.Source.Endpoint != "" {
			c.Source.Endpoint = overrides.Source.Endpoint
		}
		if overrides.Source.Path != "" {
			c.Source.Path = overrides.Source.Path
		}
	}

	if overrides.Poll != nil {
		if overrides.Poll.Interval != 0 {
			c.Poll.Interval = overrides.Poll.Interval
		}
		if overrides.Poll.FetchTimeout != 0 {
			c.Poll.FetchTimeout = overrides.Poll.FetchTimeout
		}
	}

	if overrides.Substitute != nil {
		if overrides.Substitute.File != "" {
			c.Substitute.File = overrides.Substitute.File
		}
		// Builtin is a bool, so it is always applied from overrides.
		c.Substitute.Builtin = overrides.Substitute.Builtin
	}

	if overrides.Display != nil && overrides.Display.SplitRatio != 0 {
		c.Display.SplitRatio = overrides.Display.SplitRatio
	}

	if overrides.Journal != nil && overrides.Journal.Path != "" {
		c.Journal.Path = overrides.Journal.Path
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Source.Endpoint = expandVars(c.Source.Endpoint, vars)
	c.Substitute.File = expandVars(c.Substitute.File, vars)
	c.Journal.Path = expandVars(c.Journal.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if err := validateEndpoint(c.Source.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasPrefix(c.Source.Path, "/") {
		errs = append(errs, fmt.Errorf("source.path must start with /, got %q", c.Source.Path))
	}

	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval))
	}
	if c.Poll.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("poll.fetch_timeout must be positive, got %s", c.Poll.FetchTimeout))
	}

	if c.Display.SplitRatio < 0.2 || c.Display.SplitRatio > 0.8 {
		errs = append(errs, fmt.Errorf("display.split_ratio must be between 0.2 and 0.8, got %g", c.Display.SplitRatio))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("source.endpoint is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("source.endpoint: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return fmt.Errorf("source.endpoint %q has no host", endpoint)
		}
	case "unix":
		if parsed.Path == "" {
			return fmt.Errorf("source.endpoint %q has no socket path", endpoint)
		}
	default:
		return fmt.Errorf("source.endpoint %q: scheme must be http, https or unix", endpoint)
	}
	return nil
}

// UsesSubstitute reports whether any substitute dataset is configured.
func (c *Config) UsesSubstitute() bool {
	return c.Substitute.File != "" || c.Substitute.Builtin
}
