// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rollout

import (
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/monitor/lib/codec"
)

// Fingerprint returns a content hash of a record: BLAKE3 over its
// deterministic CBOR encoding. Two records with equal fields (in any
// map iteration order) have equal fingerprints.
func Fingerprint(record Record) [32]byte {
	encoded, err := codec.Marshal(record)
	if err != nil {
		// Record holds only strings, a float and a string map, all of
		// which CBOR encodes unconditionally.
		panic("rollout: encoding record for fingerprint: " + err.Error())
	}
	return blake3.Sum256(encoded)
}

// Change is the keyed difference between two snapshots.
type Change struct {
	// Added lists ids present only in the newer snapshot.
	Added []string

	// Removed lists ids present only in the older snapshot.
	Removed []string

	// Changed lists ids present in both whose record content differs.
	Changed []string

	// ActiveChanged is true when the resolved active id differs.
	ActiveChanged bool
}

// Empty reports whether the two snapshots were equivalent.
func (change Change) Empty() bool {
	return len(change.Added) == 0 && len(change.Removed) == 0 &&
		len(change.Changed) == 0 && !change.ActiveChanged
}

// Diff compares previous against next by rollout id. Either side may
// be nil, which is treated as an empty snapshot. All id slices are
// sorted.
func Diff(previous, next *Snapshot) Change {
	var change Change

	for _, id := range next.IDs() {
		before, existed := lookup(previous, id)
		if !existed {
			change.Added = append(change.Added, id)
			continue
		}
		if Fingerprint(before) != Fingerprint(next.History[id]) {
			change.Changed = append(change.Changed, id)
		}
	}
	for _, id := range previous.IDs() {
		if _, exists := lookup(next, id); !exists {
			change.Removed = append(change.Removed, id)
		}
	}

	previousActive, _ := previous.Active()
	nextActive, _ := next.Active()
	change.ActiveChanged = previousActive != nextActive
	return change
}

func lookup(snapshot *Snapshot, id string) (Record, bool) {
	if snapshot == nil {
		return Record{}, false
	}
	record, exists := snapshot.History[id]
	return record, exists
}
