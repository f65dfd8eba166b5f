// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal records poll outcomes and rollout changes in a local
// SQLite database.
//
// The monitor itself keeps no history beyond the last snapshot. The
// journal is an opt-in sidecar: every applied outcome becomes one row
// in poll_outcomes, and every added, removed or changed rollout id
// becomes one row in rollout_changes. Rows carry the run they belong
// to (the journal's open time) so cycle numbers, which restart with
// each process, stay unambiguous.
//
// Reads answer two questions: how available has the endpoint been
// ([Journal.Availability]) and what happened to one rollout over time
// ([Journal.History]).
package journal
