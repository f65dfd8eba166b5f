// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/monitor/lib/monitor"
	"github.com/bureau-foundation/monitor/lib/tui"
)

// FilterModel narrows the rollout list with fzf-style fuzzy matching
// against id, status and container. The filter never reorders: the
// list keeps monitor.Order's ranking and the filter only hides rows.
type FilterModel struct {
	// Input is the current query text.
	Input string

	// Active is true while the filter input has keyboard focus.
	Active bool

	slab *util.Slab
}

// filteredEntry is an entry that passed the filter, with the rune
// positions in its id that matched (for highlighting).
type filteredEntry struct {
	monitor.Entry
	IDPositions []int
}

// Apply returns the entries that match the query, in input order.
// An empty query passes everything through.
func (filter *FilterModel) Apply(entries []monitor.Entry) []filteredEntry {
	result := make([]filteredEntry, 0, len(entries))
	if filter.Input == "" {
		for _, entry := range entries {
			result = append(result, filteredEntry{Entry: entry})
		}
		return result
	}

	if filter.slab == nil {
		filter.slab = tui.NewSlab()
	}
	pattern := tui.FuzzyPattern(filter.Input)
	for _, entry := range entries {
		idMatch := tui.FuzzyMatch(entry.ID, pattern, filter.slab)
		if idMatch.Matched {
			result = append(result, filteredEntry{Entry: entry, IDPositions: idMatch.Positions})
			continue
		}
		if tui.FuzzyMatch(entry.Record.Status, pattern, filter.slab).Matched ||
			tui.FuzzyMatch(entry.Record.ContainerID, pattern, filter.slab).Matched {
			result = append(result, filteredEntry{Entry: entry})
		}
	}
	return result
}

// Clear resets the query and deactivates the input.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// Backspace removes the last rune of the query.
func (filter *FilterModel) Backspace() {
	runes := []rune(filter.Input)
	if len(runes) > 0 {
		filter.Input = string(runes[:len(runes)-1])
	}
}
