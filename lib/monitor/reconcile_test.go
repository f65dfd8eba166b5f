// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"

	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

func TestReconcilerSuccess(t *testing.T) {
	reconciler := NewReconciler(rollout.Builtin())
	data := snapshot("B", map[string]float64{"A": 100, "B": 200})

	change := reconciler.Apply(success(1, data))
	state := reconciler.State()
	if state.Dataset != data || !state.Live || state.LastError != "" || state.UsingSubstitute {
		t.Errorf("state = %+v", state)
	}
	if state.Cycle != 1 || !state.LastSuccess.Equal(testEpoch.Add(1e9)) {
		t.Errorf("Cycle/LastSuccess = %d/%v", state.Cycle, state.LastSuccess)
	}
	if !slices.Equal(change.Added, []string{"A", "B"}) || !change.ActiveChanged {
		t.Errorf("change = %+v", change)
	}
}

func TestReconcilerFirstFailureInstallsSubstitute(t *testing.T) {
	substitute := rollout.Builtin()
	reconciler := NewReconciler(substitute)

	reconciler.Apply(transportFailure(1))
	state := reconciler.State()
	if state.Dataset != substitute {
		t.Fatal("substitute not installed")
	}
	if state.Live {
		t.Error("Live = true with substitute data")
	}
	if !state.UsingSubstitute {
		t.Error("UsingSubstitute = false")
	}
	if state.LastError != "Connection lost (connection refused). Retrying..." {
		t.Errorf("LastError = %q", state.LastError)
	}

	// A later success replaces the substitute.
	data := snapshot("", map[string]float64{"x": 1})
	reconciler.Apply(success(2, data))
	state = reconciler.State()
	if state.Dataset != data || state.UsingSubstitute || !state.Live || state.LastError != "" {
		t.Errorf("after success state = %+v", state)
	}
}

func TestReconcilerFailureWithoutSubstitute(t *testing.T) {
	reconciler := NewReconciler(nil)
	reconciler.Apply(httpFailure(1, 503))
	state := reconciler.State()
	if state.HasData() || state.UsingSubstitute || state.Live {
		t.Errorf("state = %+v, want empty and not live", state)
	}
	if state.LastError != "Connection lost (HTTP 503). Retrying..." {
		t.Errorf("LastError = %q", state.LastError)
	}
}

func TestReconcilerFailureAfterSuccessPreservesDataset(t *testing.T) {
	reconciler := NewReconciler(rollout.Builtin())
	data := snapshot("A", map[string]float64{"A": 1, "B": 2})
	reconciler.Apply(success(1, data))
	before := reconciler.State()

	for cycle, outcome := range []poll.Outcome{transportFailure(2), httpFailure(3, 500), parseFailure(4)} {
		change := reconciler.Apply(outcome)
		state := reconciler.State()
		if state.Dataset != data {
			t.Fatalf("failure %d replaced the dataset", cycle)
		}
		if !reflect.DeepEqual(state.Dataset.History, before.Dataset.History) {
			t.Fatalf("failure %d modified the dataset", cycle)
		}
		if state.Live || state.UsingSubstitute || state.LastError == "" {
			t.Errorf("failure %d: state = %+v", cycle, state)
		}
		if !change.Empty() {
			t.Errorf("failure %d reported change %+v", cycle, change)
		}
		if !state.LastSuccess.Equal(before.LastSuccess) {
			t.Errorf("failure %d moved LastSuccess", cycle)
		}
	}
	if got := reconciler.State().LastError; got != "Connection lost (malformed snapshot: history: is an array, not a mapping). Retrying..." {
		t.Errorf("parse LastError = %q", got)
	}
}

func TestReconcilerSubstituteKeptAcrossFailures(t *testing.T) {
	substitute := rollout.Builtin()
	reconciler := NewReconciler(substitute)
	reconciler.Apply(transportFailure(1))
	reconciler.Apply(httpFailure(2, 502))
	state := reconciler.State()
	if state.Dataset != substitute || !state.UsingSubstitute {
		t.Errorf("state = %+v", state)
	}
	if state.LastError != "Connection lost (HTTP 502). Retrying..." {
		t.Errorf("LastError = %q", state.LastError)
	}
}

func TestReconcilerEmptySnapshotSuccess(t *testing.T) {
	reconciler := NewReconciler(nil)
	reconciler.Apply(success(1, &rollout.Snapshot{History: map[string]rollout.Record{}}))
	state := reconciler.State()
	if !state.HasData() || state.Dataset.Len() != 0 || !state.Live {
		t.Errorf("state = %+v", state)
	}
}

// TestReconcilerProperties drives random outcome sequences and checks
// that a dataset, once present, never disappears, and that failures
// after a success never alter it.
func TestReconcilerProperties(t *testing.T) {
	random := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		var substitute *rollout.Snapshot
		if random.IntN(2) == 0 {
			substitute = rollout.Builtin()
		}
		reconciler := NewReconciler(substitute)
		hadData := false
		for cycle := uint64(1); cycle <= 20; cycle++ {
			before := reconciler.State()
			var outcome poll.Outcome
			switch random.IntN(4) {
			case 0:
				outcome = success(cycle, snapshot("", map[string]float64{"r": float64(cycle)}))
			case 1:
				outcome = transportFailure(cycle)
			case 2:
				outcome = httpFailure(cycle, 500+random.IntN(4))
			default:
				outcome = parseFailure(cycle)
			}
			reconciler.Apply(outcome)
			after := reconciler.State()

			if hadData && !after.HasData() {
				t.Fatalf("run %d cycle %d: dataset became nil", run, cycle)
			}
			if outcome.Failed() && before.HasData() && after.Dataset != before.Dataset {
				t.Fatalf("run %d cycle %d: failure replaced the dataset", run, cycle)
			}
			if outcome.Failed() && before.HasData() && after.UsingSubstitute != before.UsingSubstitute {
				t.Fatalf("run %d cycle %d: failure toggled UsingSubstitute", run, cycle)
			}
			if after.Live == outcome.Failed() {
				t.Fatalf("run %d cycle %d: Live = %v after %v", run, cycle, after.Live, outcome.Kind)
			}
			hadData = after.HasData()
		}
	}
}
