// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"slices"
	"testing"

	"github.com/bureau-foundation/monitor/lib/monitor"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

func filterEntries() []monitor.Entry {
	return []monitor.Entry{
		{ID: "rollout-alpha", Record: rollout.Record{Status: "Active"}, Active: true},
		{ID: "rollout-beta", Record: rollout.Record{Status: "Error: out of memory", ContainerID: "ctr-7f3a"}},
		{ID: "rollout-gamma", Record: rollout.Record{Status: "Finished (exit 0)"}},
	}
}

func filteredIDs(entries []filteredEntry) []string {
	ids := make([]string, len(entries))
	for index, entry := range entries {
		ids[index] = entry.ID
	}
	return ids
}

func TestFilterEmptyQueryPassesAll(t *testing.T) {
	var filter FilterModel
	got := filter.Apply(filterEntries())
	if want := []string{"rollout-alpha", "rollout-beta", "rollout-gamma"}; !slices.Equal(filteredIDs(got), want) {
		t.Errorf("Apply() = %v, want %v", filteredIDs(got), want)
	}
	for _, entry := range got {
		if entry.IDPositions != nil {
			t.Errorf("%s has positions %v with an empty query", entry.ID, entry.IDPositions)
		}
	}
}

func TestFilterMatchesID(t *testing.T) {
	filter := FilterModel{Input: "GAMMA"}
	got := filter.Apply(filterEntries())
	if len(got) != 1 || got[0].ID != "rollout-gamma" {
		t.Fatalf("Apply() = %v, want [rollout-gamma]", filteredIDs(got))
	}
	if want := []int{8, 9, 10, 11, 12}; !slices.Equal(got[0].IDPositions, want) {
		t.Errorf("IDPositions = %v, want %v", got[0].IDPositions, want)
	}
}

func TestFilterMatchesStatusAndContainer(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"memory", []string{"rollout-beta"}},
		{"7f3a", []string{"rollout-beta"}},
		{"exit", []string{"rollout-gamma"}},
		{"zzz", []string{}},
	}
	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			filter := FilterModel{Input: test.query}
			got := filter.Apply(filterEntries())
			if !slices.Equal(filteredIDs(got), test.want) {
				t.Errorf("Apply(%q) = %v, want %v", test.query, filteredIDs(got), test.want)
			}
			for _, entry := range got {
				if len(entry.IDPositions) != 0 {
					t.Errorf("%s: non-id match carries id positions %v", entry.ID, entry.IDPositions)
				}
			}
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	filter := FilterModel{Input: "ro"}
	got := filter.Apply(filterEntries())
	if want := []string{"rollout-alpha", "rollout-beta", "rollout-gamma"}; !slices.Equal(filteredIDs(got), want) {
		t.Errorf("Apply() = %v, want input order %v", filteredIDs(got), want)
	}
}

func TestFilterBackspaceAndClear(t *testing.T) {
	filter := FilterModel{Input: "añ", Active: true}
	filter.Backspace()
	if filter.Input != "a" {
		t.Errorf("after Backspace: %q, want a", filter.Input)
	}
	filter.Backspace()
	filter.Backspace()
	if filter.Input != "" {
		t.Errorf("Backspace on empty input: %q", filter.Input)
	}
	filter.Input = "x"
	filter.Clear()
	if filter.Input != "" || filter.Active {
		t.Errorf("after Clear: %+v", filter)
	}
}
