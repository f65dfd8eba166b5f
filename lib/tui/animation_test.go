// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"testing"
	"time"

	"github.com/bureau-foundation/monitor/lib/rollout"
)

func TestHeatDecay(t *testing.T) {
	tracker := NewHeatTracker()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.Ignite("a", HeatPut, start)

	if heat := tracker.Heat("a", start); heat != 1.0 {
		t.Errorf("heat at ignition = %v, want 1.0", heat)
	}
	if heat := tracker.Heat("a", start.Add(HeatDecayDuration/2)); heat != 0.5 {
		t.Errorf("heat at half decay = %v, want 0.5", heat)
	}
	if heat := tracker.Heat("a", start.Add(HeatDecayDuration)); heat != 0 {
		t.Errorf("heat after decay = %v, want 0", heat)
	}
	if heat := tracker.Heat("never", start); heat != 0 {
		t.Errorf("heat of unknown id = %v", heat)
	}
}

func TestHeatHasHotCollects(t *testing.T) {
	tracker := NewHeatTracker()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.Ignite("a", HeatPut, start)

	if !tracker.HasHot(start.Add(time.Second)) {
		t.Error("HasHot = false while a is glowing")
	}
	if tracker.HasHot(start.Add(HeatDecayDuration)) {
		t.Error("HasHot = true after decay")
	}
	if len(tracker.entries) != 0 {
		t.Errorf("decayed entries not collected: %v", tracker.entries)
	}
}

func TestIgniteChange(t *testing.T) {
	tracker := NewHeatTracker()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if tracker.IgniteChange(rollout.Change{ActiveChanged: true}, now) {
		t.Error("IgniteChange reported ignition for an id-less change")
	}

	change := rollout.Change{Added: []string{"new"}, Changed: []string{"upd"}, Removed: []string{"gone"}}
	if !tracker.IgniteChange(change, now) {
		t.Fatal("IgniteChange reported nothing ignited")
	}
	for id, want := range map[string]HeatKind{"new": HeatPut, "upd": HeatPut, "gone": HeatRemove} {
		if tracker.Heat(id, now) != 1.0 {
			t.Errorf("%s not ignited", id)
		}
		if tracker.Kind(id) != want {
			t.Errorf("Kind(%s) = %v, want %v", id, tracker.Kind(id), want)
		}
	}
}
