// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-monitor watches a rollout service: it polls the service's
// history endpoint, keeps the last good snapshot when the service
// goes away, and shows one rollout's files at a time.
//
// Three modes of operation:
//
// TUI (default when stdout is a terminal): a two-pane terminal UI
// with the rollout list on the left and the selected rollout's files
// on the right.
//
// Plain (--plain, or stdout is not a terminal): follows the poller
// and logs every change to the rollout set as structured log records.
//
// Once (--once): runs a single poll cycle and prints the reconciled
// view as JSON on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/monitor/lib/config"
	"github.com/bureau-foundation/monitor/lib/rollout"
	"github.com/bureau-foundation/monitor/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var categorized *cliError
		if errors.As(err, &categorized) {
			if categorized.hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", categorized.hint)
			}
			os.Exit(categorized.ExitCode())
		}
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	configPath   string
	endpoint     string
	path         string
	interval     time.Duration
	fetchTimeout time.Duration
	substitute   string
	noSubstitute bool
	plain        bool
	once         bool
	logOutput    string
	journalPath  string
	showVersion  bool
	help         bool
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("bureau-monitor", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.endpoint, "endpoint", "", "rollout service URL: http://host:port, https://host, or unix:///path")
	flagSet.StringVar(&opts.path, "path", "", "snapshot resource path (default /api/history)")
	flagSet.DurationVar(&opts.interval, "interval", 0, "time between polls (default 2s)")
	flagSet.DurationVar(&opts.fetchTimeout, "fetch-timeout", 0, "timeout for a single fetch (default 10s)")
	flagSet.StringVar(&opts.substitute, "substitute", "", "snapshot file (.json, .jsonc, .yaml, .cbor) shown until the service is reached")
	flagSet.BoolVar(&opts.noSubstitute, "no-substitute", false, "show nothing until the service is reached")
	flagSet.BoolVar(&opts.plain, "plain", false, "log changes instead of running the terminal UI")
	flagSet.BoolVar(&opts.once, "once", false, "poll once and print the reconciled view as JSON")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file (in addition to the display)")
	flagSet.StringVar(&opts.journalPath, "journal", "", "record poll outcomes and rollout changes in this SQLite database")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")
	flagSet.SetOutput(io.Discard)
	return flagSet
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return validationError("%w", err).withHint("Run 'bureau-monitor --help' for usage.")
	}
	if opts.help {
		printHelp(stderr, flagSet)
		return nil
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "bureau-monitor %s\n", version.Full())
		return nil
	}
	if remaining := flagSet.Args(); len(remaining) > 0 {
		return validationError("unexpected argument: %s", remaining[0])
	}
	if opts.plain && opts.once {
		return validationError("--plain and --once are mutually exclusive")
	}
	if opts.noSubstitute && opts.substitute != "" {
		return validationError("--substitute and --no-substitute are mutually exclusive")
	}

	cfg, err := resolveConfig(flagSet, &opts)
	if err != nil {
		return err
	}
	substitute, err := loadSubstitute(cfg)
	if err != nil {
		return err
	}

	switch {
	case opts.once:
		return runOnce(ctx, cfg, substitute, stdout, stderr)
	case opts.plain || !isTerminal(stdout):
		return runPlain(ctx, cfg, substitute, stderr, opts.logOutput)
	default:
		return runTUI(ctx, cfg, substitute, opts.logOutput)
	}
}

// resolveConfig loads the config file named by --config or the
// environment, or the defaults when neither is set, then applies
// explicitly given flags on top.
func resolveConfig(flagSet *pflag.FlagSet, opts *options) (*config.Config, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = os.Getenv(config.EnvironmentVariable)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return nil, validationError("loading config: %w", err)
		}
		cfg = loaded
	}

	if flagSet.Changed("endpoint") {
		cfg.Source.Endpoint = opts.endpoint
	}
	if flagSet.Changed("path") {
		cfg.Source.Path = opts.path
	}
	if flagSet.Changed("interval") {
		cfg.Poll.Interval = opts.interval
	}
	if flagSet.Changed("fetch-timeout") {
		cfg.Poll.FetchTimeout = opts.fetchTimeout
	}
	if flagSet.Changed("journal") {
		cfg.Journal.Path = opts.journalPath
	}
	if opts.substitute != "" {
		cfg.Substitute.File = opts.substitute
	}
	if opts.noSubstitute {
		cfg.Substitute.File = ""
		cfg.Substitute.Builtin = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, validationError("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadSubstitute returns the configured substitute dataset: the file
// when one is set, else the built-in dataset when enabled, else nil.
func loadSubstitute(cfg *config.Config) (*rollout.Snapshot, error) {
	switch {
	case cfg.Substitute.File != "":
		snapshot, err := rollout.LoadFile(cfg.Substitute.File)
		if err != nil {
			return nil, validationError("%w", err).
				withHint("The substitute file must hold a snapshot with active_id and history keys.")
		}
		return snapshot, nil
	case cfg.Substitute.Builtin:
		return rollout.Builtin(), nil
	default:
		return nil, nil
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func printHelp(writer io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(writer, `bureau-monitor: watch rollouts reported by a rollout service.

Polls the service's history endpoint every interval. When the service
is unreachable the last good snapshot stays on screen, marked STALE;
before the service has ever answered, a substitute dataset is shown,
marked SUBSTITUTE DATA.

Usage:
  bureau-monitor [flags]

Examples:
  # Watch a local service in the terminal UI
  bureau-monitor --endpoint http://localhost:8000

  # Poll a service on a unix socket every 5 seconds, logging changes
  bureau-monitor --endpoint unix:///run/rollouts.sock --interval 5s --plain

  # Print the current rollouts as JSON
  bureau-monitor --once --no-substitute | jq '.entries[].id'

  # Keep a journal of every poll for later inspection
  bureau-monitor --plain --journal ~/.local/state/bureau-monitor.db

Flags:
`)
	flagSet.SetOutput(writer)
	flagSet.PrintDefaults()
}
