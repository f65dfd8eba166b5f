// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor turns the poller's stream of outcomes into the state
// the user interface renders.
//
// The [Reconciler] owns the canonical [State]: the dataset on display,
// whether it is live, the advisory error message, and whether the
// dataset is the configured substitute. Its degradation policy never
// discards data: once a dataset is installed, failures only mark it
// stale. The substitute dataset is installed only when a failure
// arrives before any dataset has ever been obtained.
//
// [Order] ranks a snapshot's rollouts (active first, then newest
// start time) and [Selection] tracks which rollout the user is looking
// at, falling back to an automatic choice whenever the selection would
// point at nothing.
//
// A [Session] bundles the two with per-rollout file cursors and is the
// only object a consumer mutates. It is not safe for concurrent use:
// exactly one goroutine (the bubbletea update loop, or [Follow] in
// plain mode) owns it. Session.Apply drops outcomes whose cycle token
// it has already passed and every outcome after Session.Detach.
package monitor
