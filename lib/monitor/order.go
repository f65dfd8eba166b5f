// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bureau-foundation/monitor/lib/rollout"
)

// Entry is one row of the ordered rollout list.
type Entry struct {
	ID     string
	Record rollout.Record

	// Active is true for the snapshot's (non-dangling) active rollout.
	Active bool
}

// Category classifies the entry's status. Computed on every call.
func (entry Entry) Category() rollout.Category {
	return rollout.Categorize(entry.Record.Status, entry.Active)
}

// ShortID returns the id up to its first "-", the compact form used
// in the list.
func (entry Entry) ShortID() string {
	if index := strings.IndexByte(entry.ID, '-'); index > 0 {
		return entry.ID[:index]
	}
	return entry.ID
}

// ContainerLabel returns the container id, or "No Container".
func (entry Entry) ContainerLabel() string {
	if entry.Record.ContainerID == "" {
		return "No Container"
	}
	return entry.Record.ContainerID
}

// Started converts StartTime to a time.Time. A zero or non-finite
// start time yields the zero Time.
func (entry Entry) Started() time.Time {
	seconds := entry.Record.StartTime
	if seconds == 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}
	}
	whole, fraction := math.Modf(seconds)
	return time.Unix(int64(whole), int64(fraction*float64(time.Second)))
}

// Files projects the entry's files for display.
func (entry Entry) Files() rollout.FilesView {
	return rollout.ProjectFiles(entry.Record.Files)
}

type entryJSON struct {
	ID          string   `json:"id"`
	Active      bool     `json:"active"`
	Category    string   `json:"category"`
	ContainerID string   `json:"container_id"`
	Status      string   `json:"status"`
	LastUpdated string   `json:"last_updated"`
	StartTime   float64  `json:"start_time"`
	Files       []string `json:"files"`
}

// MarshalJSON encodes the display fields of the entry. File contents
// are omitted; only paths are listed.
func (entry Entry) MarshalJSON() ([]byte, error) {
	files := entry.Files().Files
	if files == nil {
		files = []string{}
	}
	return json.Marshal(entryJSON{
		ID:          entry.ID,
		Active:      entry.Active,
		Category:    entry.Category().String(),
		ContainerID: entry.Record.ContainerID,
		Status:      entry.Record.Status,
		LastUpdated: entry.Record.LastUpdated,
		StartTime:   entry.Record.StartTime,
		Files:       files,
	})
}

// Order ranks the rollouts of a snapshot: the active rollout first,
// then by start time, newest first. Equal start times keep id order,
// so the result is deterministic. A nil snapshot yields nil.
func Order(snapshot *rollout.Snapshot) []Entry {
	ids := snapshot.IDs()
	if len(ids) == 0 {
		return nil
	}
	activeID, hasActive := snapshot.Active()

	entries := make([]Entry, len(ids))
	for i, id := range ids {
		entries[i] = Entry{
			ID:     id,
			Record: snapshot.History[id],
			Active: hasActive && id == activeID,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Active != entries[j].Active {
			return entries[i].Active
		}
		return entries[i].Record.StartTime > entries[j].Record.StartTime
	})
	return entries
}
