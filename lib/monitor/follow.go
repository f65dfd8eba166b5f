// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"

	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

// Source delivers poll outcomes. *poll.Poller implements it.
type Source interface {
	Outcomes() <-chan poll.Outcome
}

// Follow applies every outcome from source to session until ctx is
// cancelled or the source closes its channel. onApply, if non-nil, is
// called after each applied outcome on the calling goroutine. Follow
// returns ctx.Err() on cancellation and nil when the source closes.
func Follow(ctx context.Context, source Source, session *Session, onApply func(poll.Outcome, rollout.Change)) error {
	outcomes := source.Outcomes()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case outcome, ok := <-outcomes:
			if !ok {
				return nil
			}
			change, applied := session.Apply(outcome)
			if applied && onApply != nil {
				onApply(outcome, change)
			}
		}
	}
}
