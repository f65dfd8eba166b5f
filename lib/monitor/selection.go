// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"fmt"
)

// ErrSelectionNotFound is returned by Select for an id that is not in
// the current list. It indicates a UI that is out of sync with the
// data, never a user-facing failure.
var ErrSelectionNotFound = errors.New("selection not found")

// Selection tracks the selected rollout id. The zero value selects
// nothing.
type Selection struct {
	selectedID string
	explicit   bool
}

// ID returns the selected id, or "".
func (selection *Selection) ID() string { return selection.selectedID }

// Explicit reports whether the current selection was made by the user
// rather than by the automatic rule.
func (selection *Selection) Explicit() bool { return selection.explicit }

// Reconcile applies the automatic rule: when nothing is selected, or
// the selected id is no longer in entries, select the active entry,
// else the first entry, else nothing. A valid selection is left alone,
// so calling Reconcile repeatedly with the same entries is a no-op
// after the first call. Reports whether the selection changed.
func (selection *Selection) Reconcile(entries []Entry) bool {
	if selection.selectedID != "" && contains(entries, selection.selectedID) {
		return false
	}

	previous := selection.selectedID
	selection.selectedID = ""
	selection.explicit = false
	for _, entry := range entries {
		if entry.Active {
			selection.selectedID = entry.ID
			break
		}
	}
	if selection.selectedID == "" && len(entries) > 0 {
		selection.selectedID = entries[0].ID
	}
	return selection.selectedID != previous
}

// Select makes id the explicit selection. An id absent from entries
// returns an error wrapping ErrSelectionNotFound and leaves the
// selection unchanged.
func (selection *Selection) Select(id string, entries []Entry) error {
	if !contains(entries, id) {
		return fmt.Errorf("select %q: %w", id, ErrSelectionNotFound)
	}
	selection.selectedID = id
	selection.explicit = true
	return nil
}

func contains(entries []Entry, id string) bool {
	for _, entry := range entries {
		if entry.ID == id {
			return true
		}
	}
	return false
}
