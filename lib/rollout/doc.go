// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rollout defines the snapshot contract served by a rollout
// history endpoint and the pure projections the monitor derives from
// it.
//
// A [Snapshot] is the whole dataset at one point in time: an optional
// active rollout id and a map from rollout id to [Record]. Snapshots
// replace each other wholesale; nothing here merges them. [Diff]
// computes the keyed change set between two snapshots (added, removed,
// changed ids) so a UI can highlight what moved without the wire
// contract having to carry deltas.
//
// [Decode] validates untrusted bodies (JSON or CBOR) and reports
// structural problems as [*ParseError]. [LoadFile] and [Builtin]
// produce substitute datasets shown when the endpoint has never been
// reachable.
//
// The projections are stateless: [ProjectFiles] splits a record's file
// map into sorted file paths and the reserved info/error system
// messages, and [Categorize] maps a free-text status onto a display
// [Category].
package rollout
