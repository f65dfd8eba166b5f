// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "monitor.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Source.Path != "/api/history" {
		t.Errorf("expected path=/api/history, got %s", cfg.Source.Path)
	}
	if cfg.Poll.Interval != 2*time.Second {
		t.Errorf("expected interval=2s, got %s", cfg.Poll.Interval)
	}
	if !cfg.Substitute.Builtin {
		t.Error("expected builtin substitute enabled for development")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when BUREAU_MONITOR_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "BUREAU_MONITOR_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
source:
  endpoint: http://rollouts.internal:9000
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Source.Endpoint != "http://rollouts.internal:9000" {
		t.Errorf("expected endpoint from file, got %s", cfg.Source.Endpoint)
	}
	// Unset fields keep their defaults.
	if cfg.Source.Path != "/api/history" {
		t.Errorf("expected default path, got %s", cfg.Source.Path)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

source:
  endpoint: unix:///run/rollouts.sock
  path: /v2/history

poll:
  interval: 1500ms
  fetch_timeout: 3s

substitute:
  file: /etc/monitor/demo.jsonc
  builtin: false

display:
  split_ratio: 0.5
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Source.Endpoint != "unix:///run/rollouts.sock" {
		t.Errorf("expected unix endpoint, got %s", cfg.Source.Endpoint)
	}
	if cfg.Source.Path != "/v2/history" {
		t.Errorf("expected path=/v2/history, got %s", cfg.Source.Path)
	}
	if cfg.Poll.Interval != 1500*time.Millisecond {
		t.Errorf("expected interval=1.5s, got %s", cfg.Poll.Interval)
	}
	if cfg.Poll.FetchTimeout != 3*time.Second {
		t.Errorf("expected fetch_timeout=3s, got %s", cfg.Poll.FetchTimeout)
	}
	if cfg.Substitute.File != "/etc/monitor/demo.jsonc" || cfg.Substitute.Builtin {
		t.Errorf("unexpected substitute config: %+v", cfg.Substitute)
	}
	if cfg.Display.SplitRatio != 0.5 {
		t.Errorf("expected split_ratio=0.5, got %g", cfg.Display.SplitRatio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	configPath := writeConfig(t, "poll:\n  interval: often\n")
	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected error for an unparseable duration")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: production

source:
  endpoint: http://localhost:8000

substitute:
  builtin: true

production:
  source:
    endpoint: https://rollouts.example.com
  poll:
    interval: 10s
  substitute:
    builtin: true
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Source.Endpoint != "https://rollouts.example.com" {
		t.Errorf("expected production endpoint, got %s", cfg.Source.Endpoint)
	}
	if cfg.Poll.Interval != 10*time.Second {
		t.Errorf("expected interval=10s, got %s", cfg.Poll.Interval)
	}
	if !cfg.Substitute.Builtin {
		t.Error("expected builtin=true from production override")
	}
	if cfg.Poll.FetchTimeout != 10*time.Second {
		t.Errorf("fetch_timeout should keep its default, got %s", cfg.Poll.FetchTimeout)
	}
}

func TestProductionDisablesBuiltinByDefault(t *testing.T) {
	configPath := writeConfig(t, "environment: production\n")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Substitute.Builtin {
		t.Error("expected builtin substitute disabled in production")
	}
	if cfg.UsesSubstitute() {
		t.Error("UsesSubstitute() = true with no file and no builtin")
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("MONITOR_TEST_HOST", "build-7")
	configPath := writeConfig(t, `
source:
  endpoint: http://${MONITOR_TEST_HOST}:${MONITOR_TEST_PORT:-8000}
substitute:
  file: ${HOME}/demo.yaml
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Source.Endpoint != "http://build-7:8000" {
		t.Errorf("expected expanded endpoint, got %s", cfg.Source.Endpoint)
	}
	if want := os.Getenv("HOME") + "/demo.yaml"; cfg.Substitute.File != want {
		t.Errorf("expected substitute file %s, got %s", want, cfg.Substitute.File)
	}
}

func TestJournalPath(t *testing.T) {
	if Default().Journal.Path != "" {
		t.Error("journal should be disabled by default")
	}

	t.Setenv("MONITOR_TEST_STATE", "/var/lib/monitor")
	configPath := writeConfig(t, `
environment: staging
journal:
  path: ${MONITOR_TEST_STATE}/journal.db
staging:
  journal:
    path: ${MONITOR_TEST_STATE}/staging.db
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Journal.Path != "/var/lib/monitor/staging.db" {
		t.Errorf("expected staging journal path, got %s", cfg.Journal.Path)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/monitor",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/monitor",
		},
		{
			input:    "${MONITOR_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:   "unix endpoint",
			modify: func(c *Config) { c.Source.Endpoint = "unix:///run/rollouts.sock" },
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "invalid" },
			wantErr: "invalid environment",
		},
		{
			name:    "empty endpoint",
			modify:  func(c *Config) { c.Source.Endpoint = "" },
			wantErr: "source.endpoint is required",
		},
		{
			name:    "unsupported scheme",
			modify:  func(c *Config) { c.Source.Endpoint = "ftp://host" },
			wantErr: "scheme must be",
		},
		{
			name:    "http without host",
			modify:  func(c *Config) { c.Source.Endpoint = "http:///api" },
			wantErr: "has no host",
		},
		{
			name:    "relative path",
			modify:  func(c *Config) { c.Source.Path = "api/history" },
			wantErr: "source.path must start with /",
		},
		{
			name:    "zero interval",
			modify:  func(c *Config) { c.Poll.Interval = 0 },
			wantErr: "poll.interval must be positive",
		},
		{
			name:    "split ratio out of range",
			modify:  func(c *Config) { c.Display.SplitRatio = 0.95 },
			wantErr: "display.split_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Source.Endpoint = ""
	cfg.Poll.Interval = -time.Second
	cfg.Poll.FetchTimeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"source.endpoint", "poll.interval", "poll.fetch_timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}
