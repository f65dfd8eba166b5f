// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the
// snapshot poller.
//
// Production code receives [Real]; tests receive [Fake], whose time
// stands still until Advance is called. The poller never calls
// time.Now or time.NewTicker directly, so a test can start it, wait
// for its ticker to register, and fire poll cycles one interval at a
// time:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	poller := poll.New(poll.Config{Fetcher: fetcher, Clock: fake})
//	poller.Start(ctx)
//	fake.WaitForTimers(1)       // the poll ticker is registered
//	fake.Advance(2 * time.Second) // one tick
//
// WaitForTimers closes the race between a goroutine registering its
// ticker and the test advancing time.
package clock
