// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"errors"
	"time"

	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// snapshot builds a snapshot whose records have the given start
// times.
func snapshot(activeID string, startTimes map[string]float64) *rollout.Snapshot {
	history := make(map[string]rollout.Record, len(startTimes))
	for id, startTime := range startTimes {
		history[id] = rollout.Record{
			Status:    "Finished (exit 0)",
			StartTime: startTime,
			Files:     map[string]string{},
		}
	}
	return &rollout.Snapshot{ActiveID: activeID, History: history}
}

func success(cycle uint64, data *rollout.Snapshot) poll.Outcome {
	completed := testEpoch.Add(time.Duration(cycle) * time.Second)
	return poll.Outcome{
		Cycle:     cycle,
		Kind:      poll.KindSuccess,
		Snapshot:  data,
		Status:    200,
		Started:   completed,
		Completed: completed,
	}
}

func transportFailure(cycle uint64) poll.Outcome {
	return poll.Outcome{
		Cycle: cycle,
		Kind:  poll.KindTransportError,
		Err:   errors.New("connection refused"),
	}
}

func httpFailure(cycle uint64, status int) poll.Outcome {
	return poll.Outcome{
		Cycle:  cycle,
		Kind:   poll.KindHTTPError,
		Status: status,
		Err:    errors.New("HTTP error"),
	}
}

func parseFailure(cycle uint64) poll.Outcome {
	return poll.Outcome{
		Cycle:  cycle,
		Kind:   poll.KindParseError,
		Status: 200,
		Err:    &rollout.ParseError{Path: "history", Reason: "is an array, not a mapping"},
	}
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return ids
}
