// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/monitor/lib/rollout"
)

func TestSessionScenarioActiveFirst(t *testing.T) {
	session := NewSession(nil, nil)
	if _, applied := session.Apply(success(1, snapshot("B", map[string]float64{"A": 100, "B": 200}))); !applied {
		t.Fatal("outcome not applied")
	}
	view := session.View()
	if got := entryIDs(view.Entries); !slices.Equal(got, []string{"B", "A"}) {
		t.Errorf("entries = %v, want [B A]", got)
	}
	if view.SelectedID != "B" || view.Selected == nil || view.Selected.ID != "B" {
		t.Errorf("selection = %q (%v), want B", view.SelectedID, view.Selected)
	}
	if !view.Live || !view.HasData || view.UsingSubstitute || view.LastError != "" {
		t.Errorf("view flags = %+v", view)
	}
}

func TestSessionScenarioSelectedDisappears(t *testing.T) {
	session := NewSession(nil, nil)
	session.Apply(success(1, snapshot("", map[string]float64{"A": 100, "B": 200})))
	if err := session.Select("B"); err != nil {
		t.Fatalf("Select(B): %v", err)
	}

	session.Apply(success(2, snapshot("", map[string]float64{"A": 100, "C": 300})))
	view := session.View()
	if view.SelectedID != "C" {
		t.Errorf("selection = %q, want C (auto-select over new snapshot)", view.SelectedID)
	}
}

func TestSessionScenarioFirstFailureUsesSubstitute(t *testing.T) {
	substitute := rollout.Builtin()
	session := NewSession(substitute, nil)
	session.Apply(transportFailure(1))

	view := session.View()
	if !view.HasData || view.Live || !view.UsingSubstitute {
		t.Errorf("view = %+v, want substitute data, not live", view)
	}
	if len(view.Entries) != substitute.Len() {
		t.Errorf("entries = %d, want %d", len(view.Entries), substitute.Len())
	}
	if view.SelectedID == "" {
		t.Error("nothing auto-selected in substitute data")
	}
}

func TestSessionScenarioFailureAfterLiveData(t *testing.T) {
	session := NewSession(rollout.Builtin(), nil)
	data := snapshot("A", map[string]float64{"A": 1})
	session.Apply(success(1, data))
	session.Apply(httpFailure(2, 503))

	state := session.State()
	if state.Dataset != data {
		t.Error("dataset replaced after failure")
	}
	if state.Live || state.UsingSubstitute {
		t.Errorf("Live=%v UsingSubstitute=%v, want false/false", state.Live, state.UsingSubstitute)
	}
	if state.LastError != "Connection lost (HTTP 503). Retrying..." {
		t.Errorf("LastError = %q", state.LastError)
	}
}

func TestSessionConnecting(t *testing.T) {
	session := NewSession(nil, nil)
	if !session.View().Connecting() {
		t.Error("fresh session is not connecting")
	}
	session.Apply(transportFailure(1))
	if session.View().Connecting() {
		t.Error("session still connecting after a failure")
	}
}

func TestSessionDropsStaleCycles(t *testing.T) {
	session := NewSession(nil, nil)
	newer := snapshot("", map[string]float64{"new": 1})
	session.Apply(success(5, newer))

	if _, applied := session.Apply(success(3, snapshot("", map[string]float64{"old": 1}))); applied {
		t.Error("older cycle applied")
	}
	if _, applied := session.Apply(transportFailure(5)); applied {
		t.Error("repeated cycle applied")
	}
	state := session.State()
	if state.Dataset != newer || !state.Live || state.Cycle != 5 {
		t.Errorf("state = %+v, want unchanged", state)
	}
}

func TestSessionDetach(t *testing.T) {
	session := NewSession(nil, nil)
	session.Apply(success(1, snapshot("", map[string]float64{"a": 1})))
	session.Detach()

	if _, applied := session.Apply(transportFailure(2)); applied {
		t.Error("outcome applied after Detach")
	}
	if state := session.State(); !state.Live || state.Cycle != 1 {
		t.Errorf("state mutated after Detach: %+v", state)
	}
}

func TestSessionSelectNotFound(t *testing.T) {
	session := NewSession(nil, nil)
	session.Apply(success(1, snapshot("", map[string]float64{"a": 1, "b": 2})))
	before := session.View()

	err := session.Select("zzz")
	if !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("error = %v, want ErrSelectionNotFound", err)
	}
	if session.View().SelectedID != before.SelectedID {
		t.Error("failed Select changed the selection")
	}
}

func TestSessionSelectIndex(t *testing.T) {
	session := NewSession(nil, nil)
	session.SelectIndex(3)
	if session.SelectedIndex() != -1 {
		t.Error("SelectIndex on empty session selected something")
	}

	session.Apply(success(1, snapshot("", map[string]float64{"a": 1, "b": 2, "c": 3})))
	session.SelectIndex(1)
	if session.View().SelectedID != "b" {
		t.Errorf("selection = %q, want b", session.View().SelectedID)
	}
	session.SelectIndex(10)
	if session.SelectedIndex() != 2 {
		t.Errorf("SelectedIndex = %d, want 2 (clamped)", session.SelectedIndex())
	}
	session.SelectIndex(-4)
	if session.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex = %d, want 0 (clamped)", session.SelectedIndex())
	}
}

func TestSessionFiles(t *testing.T) {
	data := &rollout.Snapshot{
		ActiveID: "r",
		History: map[string]rollout.Record{
			"r": {Status: "Active", Files: map[string]string{"a.txt": "x", "b.txt": "y", "info": "note"}},
		},
	}
	session := NewSession(nil, nil)
	session.Apply(success(1, data))

	view := session.View()
	if !slices.Equal(view.Files.Files, []string{"a.txt", "b.txt"}) {
		t.Errorf("Files = %v", view.Files.Files)
	}
	if len(view.Files.Messages) != 1 || view.Files.Messages[0].Content != "note" {
		t.Errorf("Messages = %v", view.Files.Messages)
	}
	if view.SelectedFile != "a.txt" || view.SelectedContent() != "x" {
		t.Errorf("selected file = %q %q", view.SelectedFile, view.SelectedContent())
	}

	session.MoveFile(1)
	if view := session.View(); view.SelectedFile != "b.txt" || view.SelectedContent() != "y" {
		t.Errorf("after MoveFile selected file = %q", view.SelectedFile)
	}
	if err := session.ChooseFile("info"); err == nil {
		t.Error("ChooseFile accepted a reserved key")
	}

	// b.txt disappears: cursor falls back to the first file.
	next := &rollout.Snapshot{
		ActiveID: "r",
		History: map[string]rollout.Record{
			"r": {Status: "Active", Files: map[string]string{"a.txt": "x2", "c.txt": "z"}},
		},
	}
	session.Apply(success(2, next))
	if view := session.View(); view.SelectedFile != "a.txt" || view.SelectedContent() != "x2" {
		t.Errorf("after removal selected file = %q %q", view.SelectedFile, view.SelectedContent())
	}
	if err := session.ChooseFile("c.txt"); err != nil {
		t.Errorf("ChooseFile(c.txt): %v", err)
	}
}

func TestSessionViewIsACopy(t *testing.T) {
	session := NewSession(nil, nil)
	session.Apply(success(1, snapshot("", map[string]float64{"a": 1, "b": 2})))
	view := session.View()
	view.Entries[0].ID = "mutated"
	if session.View().Entries[0].ID == "mutated" {
		t.Error("View shares its entry slice with the session")
	}
}

func TestSessionLogsTransitionsOnce(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelInfo}))
	session := NewSession(nil, logger)

	session.Apply(success(1, snapshot("", map[string]float64{"a": 1})))
	session.Apply(transportFailure(2))
	session.Apply(transportFailure(3))
	session.Apply(success(4, snapshot("", map[string]float64{"a": 1})))

	output := buffer.String()
	if count := strings.Count(output, "rollout source unreachable"); count != 1 {
		t.Errorf("unreachable logged %d times, want 1:\n%s", count, output)
	}
	if count := strings.Count(output, "rollout source reachable again"); count != 1 {
		t.Errorf("reachable logged %d times, want 1:\n%s", count, output)
	}
}

func TestViewJSON(t *testing.T) {
	session := NewSession(nil, nil)
	session.Apply(success(1, snapshot("b", map[string]float64{"a": 1, "b": 2})))
	data, err := json.Marshal(session.View())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded struct {
		Entries []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
		} `json:"entries"`
		SelectedID string `json:"selected_id"`
		Live       bool   `json:"live"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.SelectedID != "b" || !decoded.Live || len(decoded.Entries) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Entries[0].Category != "running" {
		t.Errorf("active entry category = %q", decoded.Entries[0].Category)
	}
}
