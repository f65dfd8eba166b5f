// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package poll periodically fetches rollout snapshots and reports each
// completed fetch as an [Outcome].
//
// A [Poller] owns one goroutine (the loop) that holds the ticker, the
// in-flight flag and the cycle counter. Fetches run on a helper
// goroutine and report back to the loop; the loop is the only sender
// on the channel returned by [Poller.Outcomes]. At most one fetch is
// outstanding: ticks and [Poller.RefreshNow] calls that arrive while
// a fetch is pending are coalesced, never queued.
//
// The first fetch starts immediately. Every outcome carries a cycle
// token that strictly increases, so a consumer can detect results it
// has already superseded. [Poller.Stop] cancels the ticker and the
// pending fetch, waits for the loop to exit and closes the outcome
// channel. A fetch that completes after Stop is discarded.
//
// The poller does not interpret errors. Deciding what an HTTP 503 or a
// malformed body means for the displayed data is the consumer's job
// (see lib/monitor).
package poll
