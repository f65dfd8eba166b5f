// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

// State is the reconciled view of the rollout source.
type State struct {
	// Dataset is the snapshot on display. Nil only until the first
	// success, or the first failure when a substitute is configured.
	// Once non-nil it is never nil again.
	Dataset *rollout.Snapshot

	// Live is true when Dataset came from the most recent cycle.
	Live bool

	// LastError is the advisory message from the most recent failed
	// cycle, or "" after a success.
	LastError string

	// UsingSubstitute is true while Dataset is the substitute rather
	// than data from the source.
	UsingSubstitute bool

	// LastSuccess is when the most recent successful fetch completed.
	LastSuccess time.Time

	// Cycle is the token of the last applied poll cycle.
	Cycle uint64
}

// HasData reports whether a dataset has been installed.
func (state State) HasData() bool {
	return state.Dataset != nil
}

// ConnectionLostMessage formats the advisory shown while the source
// is unreachable.
func ConnectionLostMessage(detail string) string {
	return fmt.Sprintf("Connection lost (%s). Retrying...", detail)
}

// Reconciler applies poll outcomes to State. It is the only writer of
// the state it holds.
type Reconciler struct {
	state      State
	substitute *rollout.Snapshot
}

// NewReconciler returns a Reconciler with empty state. substitute is
// installed on a failure that arrives before any dataset exists; nil
// disables the fallback.
func NewReconciler(substitute *rollout.Snapshot) *Reconciler {
	return &Reconciler{substitute: substitute}
}

// State returns the current state.
func (reconciler *Reconciler) State() State {
	return reconciler.state
}

// Apply folds one outcome into the state and returns the keyed change
// between the previous and new dataset.
//
//	outcome  dataset before  dataset after  Live   UsingSubstitute
//	success  any             outcome's      true   false
//	failure  nil             substitute     false  true (false if none)
//	failure  present         unchanged      false  unchanged
func (reconciler *Reconciler) Apply(outcome poll.Outcome) rollout.Change {
	previous := reconciler.state.Dataset
	state := &reconciler.state
	state.Cycle = outcome.Cycle

	if !outcome.Failed() {
		state.Dataset = outcome.Snapshot
		if state.Dataset == nil {
			state.Dataset = &rollout.Snapshot{History: map[string]rollout.Record{}}
		}
		state.Live = true
		state.LastError = ""
		state.UsingSubstitute = false
		state.LastSuccess = outcome.Completed
		return rollout.Diff(previous, state.Dataset)
	}

	state.Live = false
	state.LastError = ConnectionLostMessage(outcome.Detail())
	if state.Dataset == nil && reconciler.substitute != nil {
		state.Dataset = reconciler.substitute
		state.UsingSubstitute = true
	}
	return rollout.Diff(previous, state.Dataset)
}
