// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/monitor/lib/config"
	"github.com/bureau-foundation/monitor/lib/journal"
	"github.com/bureau-foundation/monitor/lib/monitor"
	"github.com/bureau-foundation/monitor/lib/monitorui"
	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

// newPoller builds the HTTP fetcher and poller for cfg.
func newPoller(cfg *config.Config, logger *slog.Logger) (*poll.Poller, error) {
	fetcher, err := poll.NewHTTPFetcher(cfg.Source.Endpoint)
	if err != nil {
		return nil, validationError("%w", err)
	}
	poller, err := poll.New(poll.Config{
		Fetcher:      fetcher,
		Path:         cfg.Source.Path,
		Interval:     cfg.Poll.Interval,
		FetchTimeout: cfg.Poll.FetchTimeout,
		Logger:       logger,
	})
	if err != nil {
		return nil, internalError("%w", err)
	}
	return poller, nil
}

// openJournal opens the configured journal. It returns nil when no
// journal path is configured.
func openJournal(cfg *config.Config, logger *slog.Logger) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	opened, err := journal.Open(journal.Config{Path: cfg.Journal.Path, Logger: logger})
	if err != nil {
		return nil, validationError("%w", err).
			withHint("The journal's parent directory must exist and be writable.")
	}
	return opened, nil
}

// journalRecorder returns the onApply callback that writes each applied
// outcome to recorder. A write failure is logged and polling continues.
// A nil recorder yields a nil callback.
func journalRecorder(ctx context.Context, recorder *journal.Journal, logger *slog.Logger) func(poll.Outcome, rollout.Change) {
	if recorder == nil {
		return nil
	}
	return func(outcome poll.Outcome, change rollout.Change) {
		if err := recorder.Record(ctx, outcome, change); err != nil {
			logger.Warn("journal write failed", "cycle", outcome.Cycle, "error", err)
		}
	}
}

// closeJournal logs this run's availability and closes the journal.
func closeJournal(recorder *journal.Journal, since time.Time, logger *slog.Logger) {
	if recorder == nil {
		return
	}
	availability, err := recorder.Availability(context.Background(), since)
	if err != nil {
		logger.Warn("journal summary failed", "error", err)
	} else if availability.Total > 0 {
		logger.Info("poll summary",
			"polls", availability.Total,
			"failures", availability.Failures,
			"success_ratio", availability.Ratio(),
			"last_failure", availability.LastFailure,
		)
	}
	if err := recorder.Close(); err != nil {
		logger.Warn("closing journal failed", "error", err)
	}
}

// runOnce performs a single poll cycle and writes the reconciled view
// to stdout. A failed fetch still prints the view (substitute data or
// nothing) and then reports a transient error.
func runOnce(ctx context.Context, cfg *config.Config, substitute *rollout.Snapshot, stdout, stderr io.Writer) error {
	logger := newCommandLogger(stderr, slog.LevelWarn)
	poller, err := newPoller(cfg, logger)
	if err != nil {
		return err
	}
	session := monitor.NewSession(substitute, logger)
	recorder, err := openJournal(cfg, logger)
	if err != nil {
		return err
	}
	defer closeJournal(recorder, time.Now(), logger)

	poller.Start(ctx)
	var outcome poll.Outcome
	select {
	case outcome = <-poller.Outcomes():
	case <-ctx.Done():
		poller.Stop()
		return ctx.Err()
	}
	poller.Stop()
	if change, applied := session.Apply(outcome); applied {
		if record := journalRecorder(ctx, recorder, logger); record != nil {
			record(outcome, change)
		}
	}
	session.Detach()

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(session.View()); err != nil {
		return internalError("writing view: %w", err)
	}

	if outcome.Failed() {
		return transientError("fetching %s%s: %s", cfg.Source.Endpoint, cfg.Source.Path, outcome.Detail())
	}
	return nil
}

// runPlain follows the poller until ctx is cancelled, logging each
// change to the rollout set and each change of connection state.
func runPlain(ctx context.Context, cfg *config.Config, substitute *rollout.Snapshot, stderr io.Writer, logOutput string) error {
	logger := newCommandLogger(stderr, slog.LevelInfo)
	if logOutput != "" {
		fileHandler, fileCloser, err := openFileLogHandler(logOutput)
		if err != nil {
			return validationError("cannot open log file %s: %w", logOutput, err)
		}
		defer fileCloser()
		logger = slog.New(fanoutHandler{logger.Handler(), fileHandler})
	}

	poller, err := newPoller(cfg, logger.With("component", "poller"))
	if err != nil {
		return err
	}
	session := monitor.NewSession(substitute, logger.With("component", "session"))
	recorder, err := openJournal(cfg, logger.With("component", "journal"))
	if err != nil {
		return err
	}
	defer closeJournal(recorder, time.Now(), logger)
	record := journalRecorder(ctx, recorder, logger)

	logger.Info("following rollout service",
		"endpoint", cfg.Source.Endpoint,
		"path", cfg.Source.Path,
		"interval", cfg.Poll.Interval,
		"substitute", substitute != nil,
	)

	poller.Start(ctx)
	defer poller.Stop()
	defer session.Detach()

	err = monitor.Follow(ctx, poller, session, func(outcome poll.Outcome, change rollout.Change) {
		logChange(logger, session.View(), change)
		if record != nil {
			record(outcome, change)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// logChange logs one record per added, removed or changed rollout.
func logChange(logger *slog.Logger, view monitor.View, change rollout.Change) {
	byID := make(map[string]monitor.Entry, len(view.Entries))
	for _, entry := range view.Entries {
		byID[entry.ID] = entry
	}
	for _, id := range change.Added {
		entry := byID[id]
		logger.Info("rollout added",
			"id", id,
			"status", entry.Record.Status,
			"category", entry.Category().String(),
			"container", entry.ContainerLabel(),
		)
	}
	for _, id := range change.Changed {
		entry := byID[id]
		logger.Info("rollout updated",
			"id", id,
			"status", entry.Record.Status,
			"category", entry.Category().String(),
		)
	}
	for _, id := range change.Removed {
		logger.Info("rollout removed", "id", id)
	}
	if change.ActiveChanged {
		logger.Info("active rollout changed", "selected", view.SelectedID)
	}
}

// runTUI runs the terminal UI. Background logging is routed through a
// monitorui.LogHandler that shows warnings in the status bar instead
// of writing to stderr, which would corrupt the alt-screen display.
func runTUI(ctx context.Context, cfg *config.Config, substitute *rollout.Snapshot, logOutput string) error {
	tuiHandler := monitorui.NewLogHandler(slog.LevelWarn)

	var logger *slog.Logger
	if logOutput != "" {
		fileHandler, fileCloser, err := openFileLogHandler(logOutput)
		if err != nil {
			return validationError("cannot open log file %s: %w", logOutput, err)
		}
		defer fileCloser()
		logger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		logger = slog.New(tuiHandler)
	}

	poller, err := newPoller(cfg, logger.With("component", "poller"))
	if err != nil {
		return err
	}
	session := monitor.NewSession(substitute, logger.With("component", "session"))
	recorder, err := openJournal(cfg, logger.With("component", "journal"))
	if err != nil {
		return err
	}
	defer closeJournal(recorder, time.Now(), logger)

	model := monitorui.NewModel(monitorui.Config{
		Session:    session,
		Source:     poller,
		Interval:   poller.Interval(),
		SplitRatio: cfg.Display.SplitRatio,
		Logger:     logger,
		OnApply:    journalRecorder(ctx, recorder, logger),
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tuiHandler.SetProgram(program)

	poller.Start(ctx)
	_, err = program.Run()
	poller.Stop()
	session.Detach()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return internalError("terminal UI: %w", err)
	}
	return nil
}
