// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

// View is the read-only projection the renderer consumes.
type View struct {
	Entries    []Entry `json:"entries"`
	SelectedID string  `json:"selected_id"`

	// Selected points into Entries, or is nil when nothing is
	// selected.
	Selected *Entry `json:"-"`

	// Files is the selected entry's file partition.
	Files rollout.FilesView `json:"-"`

	// SelectedFile is the file the cursor rests on for the selected
	// entry, or "".
	SelectedFile string `json:"selected_file,omitempty"`

	Live            bool      `json:"live"`
	LastError       string    `json:"last_error,omitempty"`
	UsingSubstitute bool      `json:"using_substitute"`
	HasData         bool      `json:"has_data"`
	LastSuccess     time.Time `json:"last_success,omitzero"`
	Cycle           uint64    `json:"cycle"`
}

// Connecting reports whether no dataset and no error have been seen
// yet: the first fetch is still outstanding.
func (view View) Connecting() bool {
	return !view.HasData && view.LastError == ""
}

// SelectedContent returns the content of SelectedFile.
func (view View) SelectedContent() string {
	if view.Selected == nil || view.SelectedFile == "" {
		return ""
	}
	return view.Selected.Record.Files[view.SelectedFile]
}

// Session owns the reconciled state, the ordered entries, the
// selection and the per-rollout file cursors. Use from one goroutine.
type Session struct {
	reconciler *Reconciler
	selection  Selection
	entries    []Entry
	cursors    map[string]*rollout.FileCursor
	lastCycle  uint64
	detached   bool
	degraded   bool
	logger     *slog.Logger
}

// NewSession returns an empty session. substitute may be nil.
func NewSession(substitute *rollout.Snapshot, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		reconciler: NewReconciler(substitute),
		cursors:    make(map[string]*rollout.FileCursor),
		logger:     logger,
	}
}

// State returns the reconciled state.
func (session *Session) State() State {
	return session.reconciler.State()
}

// Apply folds an outcome into the session. It returns the dataset
// change and whether the outcome was applied: outcomes from a cycle
// at or before the last applied one, and all outcomes after Detach,
// are dropped without touching any state.
func (session *Session) Apply(outcome poll.Outcome) (rollout.Change, bool) {
	if session.detached {
		session.logger.Debug("dropping outcome after detach", "cycle", outcome.Cycle)
		return rollout.Change{}, false
	}
	if outcome.Cycle <= session.lastCycle {
		session.logger.Debug("dropping stale outcome",
			"cycle", outcome.Cycle,
			"last_applied", session.lastCycle,
		)
		return rollout.Change{}, false
	}
	session.lastCycle = outcome.Cycle

	change := session.reconciler.Apply(outcome)
	state := session.reconciler.State()

	// Log transitions only; a source that stays down would otherwise
	// produce a warning every interval.
	switch {
	case state.Live && session.degraded:
		session.degraded = false
		session.logger.Info("rollout source reachable again", "rollouts", state.Dataset.Len())
	case !state.Live && !session.degraded:
		session.degraded = true
		session.logger.Warn("rollout source unreachable",
			"kind", outcome.Kind.String(),
			"detail", outcome.Detail(),
			"using_substitute", state.UsingSubstitute,
		)
	}

	session.entries = Order(state.Dataset)
	if session.selection.Reconcile(session.entries) {
		session.logger.Debug("selection changed automatically", "selected", session.selection.ID())
	}
	for _, id := range change.Removed {
		delete(session.cursors, id)
	}
	return change, true
}

// Select makes id the explicit selection. See Selection.Select.
func (session *Session) Select(id string) error {
	return session.selection.Select(id, session.entries)
}

// SelectIndex selects the entry at index in the ordered list, clamped
// to the list bounds. It is a no-op on an empty list.
func (session *Session) SelectIndex(index int) {
	if len(session.entries) == 0 {
		return
	}
	index = max(0, min(index, len(session.entries)-1))
	// The id comes from the list itself, so Select cannot fail.
	_ = session.selection.Select(session.entries[index].ID, session.entries)
}

// SelectedIndex returns the position of the selected entry, or -1.
func (session *Session) SelectedIndex() int {
	for index, entry := range session.entries {
		if entry.ID == session.selection.ID() {
			return index
		}
	}
	return -1
}

// ChooseFile moves the selected rollout's file cursor to path.
func (session *Session) ChooseFile(path string) error {
	entry, cursor := session.selectedCursor()
	if entry == nil {
		return fmt.Errorf("choose file %q: nothing selected", path)
	}
	if !cursor.Choose(path, entry.Files().Files) {
		return fmt.Errorf("choose file %q: not in rollout %s", path, entry.ID)
	}
	return nil
}

// MoveFile steps the selected rollout's file cursor by delta.
func (session *Session) MoveFile(delta int) {
	entry, cursor := session.selectedCursor()
	if entry == nil {
		return
	}
	cursor.Move(delta, entry.Files().Files)
}

func (session *Session) selectedCursor() (*Entry, *rollout.FileCursor) {
	index := session.SelectedIndex()
	if index < 0 {
		return nil, nil
	}
	entry := &session.entries[index]
	cursor, exists := session.cursors[entry.ID]
	if !exists {
		cursor = &rollout.FileCursor{}
		session.cursors[entry.ID] = cursor
	}
	return entry, cursor
}

// Detach stops the session from accepting further outcomes. Used at
// teardown so that a late outcome cannot mutate state.
func (session *Session) Detach() {
	session.detached = true
}

// View returns the current render projection.
func (session *Session) View() View {
	state := session.reconciler.State()
	entries := make([]Entry, len(session.entries))
	copy(entries, session.entries)

	view := View{
		Entries:         entries,
		SelectedID:      session.selection.ID(),
		Live:            state.Live,
		LastError:       state.LastError,
		UsingSubstitute: state.UsingSubstitute,
		HasData:         state.HasData(),
		LastSuccess:     state.LastSuccess,
		Cycle:           state.Cycle,
	}

	if entry, cursor := session.selectedCursor(); entry != nil {
		index := session.SelectedIndex()
		view.Selected = &view.Entries[index]
		view.Files = entry.Files()
		view.SelectedFile = cursor.Resolve(view.Files.Files)
	}
	return view
}
