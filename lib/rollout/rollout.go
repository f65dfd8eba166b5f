// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rollout

import (
	"encoding/json"
	"sort"
)

// Reserved keys in Record.Files. They carry narrative messages from
// the rollout service, not file content.
const (
	InfoKey  = "info"
	ErrorKey = "error"
)

// Record is one tracked rollout.
type Record struct {
	// ContainerID identifies the execution environment. May be empty
	// (for example before the container has started).
	ContainerID string `json:"container_id"`

	// Status is a free-text label ("Active", "Finished (exit 0)",
	// "Error: ..."). There is no fixed vocabulary.
	Status string `json:"status"`

	// LastUpdated is a display-formatted timestamp. Never parsed.
	LastUpdated string `json:"last_updated"`

	// StartTime is Unix seconds, possibly fractional. Used for
	// ordering and display.
	StartTime float64 `json:"start_time"`

	// Files maps relative paths (plus the reserved InfoKey and
	// ErrorKey) to raw text content.
	Files map[string]string `json:"files"`
}

// Snapshot is one complete payload from the rollout endpoint.
type Snapshot struct {
	// ActiveID is the id of the rollout currently running, or "" when
	// the source reported none. It may dangle (reference an id absent
	// from History); use Active to resolve it.
	ActiveID string

	// History maps rollout id to record. Never nil after Decode.
	History map[string]Record
}

// Active returns the active rollout id when it references a record in
// History. A dangling or empty ActiveID reports false.
func (snapshot *Snapshot) Active() (string, bool) {
	if snapshot == nil || snapshot.ActiveID == "" {
		return "", false
	}
	if _, exists := snapshot.History[snapshot.ActiveID]; !exists {
		return "", false
	}
	return snapshot.ActiveID, true
}

// IDs returns the rollout ids in History sorted lexicographically.
func (snapshot *Snapshot) IDs() []string {
	if snapshot == nil {
		return nil
	}
	ids := make([]string, 0, len(snapshot.History))
	for id := range snapshot.History {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of rollouts in the snapshot.
func (snapshot *Snapshot) Len() int {
	if snapshot == nil {
		return 0
	}
	return len(snapshot.History)
}

// wireSnapshot is the JSON shape of a snapshot: active_id is null
// rather than "" when no rollout is active.
type wireSnapshot struct {
	ActiveID *string           `json:"active_id"`
	History  map[string]Record `json:"history"`
}

// MarshalJSON encodes the snapshot in the endpoint's wire format.
func (snapshot Snapshot) MarshalJSON() ([]byte, error) {
	wire := wireSnapshot{History: snapshot.History}
	if wire.History == nil {
		wire.History = map[string]Record{}
	}
	if snapshot.ActiveID != "" {
		activeID := snapshot.ActiveID
		wire.ActiveID = &activeID
	}
	return json.Marshal(wire)
}
