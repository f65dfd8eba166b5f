// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/bureau-foundation/monitor/lib/rollout"
)

// HeatDecayDuration is how long a row glows after a change.
const HeatDecayDuration = 5 * time.Second

// HeatTickInterval is the re-render interval while any row is hot.
const HeatTickInterval = 100 * time.Millisecond

// HeatKind distinguishes different types of changes for color selection.
type HeatKind int

const (
	// HeatPut marks an added or updated rollout (amber glow).
	HeatPut HeatKind = iota
	// HeatRemove marks a rollout that left the snapshot (red glow).
	HeatRemove
)

type heatEntry struct {
	ignition time.Time
	kind     HeatKind
}

// HeatTracker maps rollout ids to ignition timestamps. Each change
// ignites an id, which then decays from 1.0 to 0.0 over
// HeatDecayDuration. Not safe for concurrent use; the bubbletea model
// owns it.
type HeatTracker struct {
	entries map[string]heatEntry
}

// NewHeatTracker creates an empty heat tracker.
func NewHeatTracker() *HeatTracker {
	return &HeatTracker{entries: make(map[string]heatEntry)}
}

// Ignite records a change for an id, restarting its decay.
func (tracker *HeatTracker) Ignite(id string, kind HeatKind, now time.Time) {
	tracker.entries[id] = heatEntry{ignition: now, kind: kind}
}

// IgniteChange ignites every id in a snapshot change. Removed ids get
// HeatRemove, added and changed ids HeatPut. Reports whether anything
// was ignited.
func (tracker *HeatTracker) IgniteChange(change rollout.Change, now time.Time) bool {
	for _, id := range change.Added {
		tracker.Ignite(id, HeatPut, now)
	}
	for _, id := range change.Changed {
		tracker.Ignite(id, HeatPut, now)
	}
	for _, id := range change.Removed {
		tracker.Ignite(id, HeatRemove, now)
	}
	return len(change.Added)+len(change.Changed)+len(change.Removed) > 0
}

// Heat returns the current intensity for an id: 1.0 at ignition,
// decaying linearly to 0.0. Never-ignited and fully decayed ids
// return 0.
func (tracker *HeatTracker) Heat(id string, now time.Time) float64 {
	entry, exists := tracker.entries[id]
	if !exists {
		return 0
	}
	elapsed := now.Sub(entry.ignition)
	if elapsed >= HeatDecayDuration {
		return 0
	}
	return 1.0 - float64(elapsed)/float64(HeatDecayDuration)
}

// Kind returns the heat kind for an id. Only meaningful while Heat
// is positive.
func (tracker *HeatTracker) Kind(id string) HeatKind {
	return tracker.entries[id].kind
}

// HasHot reports whether any id still has heat, garbage-collecting
// fully decayed entries along the way.
func (tracker *HeatTracker) HasHot(now time.Time) bool {
	hot := false
	for id, entry := range tracker.entries {
		if now.Sub(entry.ignition) < HeatDecayDuration {
			hot = true
			continue
		}
		delete(tracker.entries, id)
	}
	return hot
}
