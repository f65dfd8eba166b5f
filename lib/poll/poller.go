// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/monitor/lib/clock"
	"github.com/bureau-foundation/monitor/lib/rollout"
)

// Defaults applied by New to zero Config fields.
const (
	DefaultPath         = "/api/history"
	DefaultInterval     = 2000 * time.Millisecond
	DefaultFetchTimeout = 10 * time.Second
)

// Config configures a Poller.
type Config struct {
	// Fetcher performs the GET. Required.
	Fetcher Fetcher

	// Path is the request path. Defaults to DefaultPath.
	Path string

	// Interval between the starts of scheduled cycles. Defaults to
	// DefaultInterval.
	Interval time.Duration

	// FetchTimeout bounds a single fetch. Defaults to
	// DefaultFetchTimeout.
	FetchTimeout time.Duration

	// Clock drives the ticker and the outcome timestamps. Defaults
	// to clock.Real().
	Clock clock.Clock

	// Logger receives per-cycle debug records. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// Stats counts poller activity.
type Stats struct {
	// Started is the number of fetches started.
	Started uint64

	// Delivered is the number of outcomes handed to the consumer.
	Delivered uint64

	// Skipped is the number of ticks and refresh requests coalesced
	// into an already pending fetch.
	Skipped uint64
}

// Poller fetches snapshots on a fixed interval. Create with New, then
// call Start once. Outcomes must be drained by exactly one consumer.
type Poller struct {
	fetcher      Fetcher
	path         string
	interval     time.Duration
	fetchTimeout time.Duration
	clock        clock.Clock
	logger       *slog.Logger

	outcomes chan Outcome
	refresh  chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	startedCount   atomic.Uint64
	deliveredCount atomic.Uint64
	skippedCount   atomic.Uint64
}

// New validates config and returns an unstarted Poller.
func New(config Config) (*Poller, error) {
	if config.Fetcher == nil {
		return nil, errors.New("poll: Fetcher is required")
	}
	if config.Interval < 0 {
		return nil, fmt.Errorf("poll: negative interval %v", config.Interval)
	}
	if config.FetchTimeout < 0 {
		return nil, fmt.Errorf("poll: negative fetch timeout %v", config.FetchTimeout)
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	return &Poller{
		fetcher:      config.Fetcher,
		path:         config.Path,
		interval:     config.Interval,
		fetchTimeout: config.FetchTimeout,
		clock:        config.Clock,
		logger:       config.Logger,
		outcomes:     make(chan Outcome),
		refresh:      make(chan struct{}, 1),
		done:         make(chan struct{}),
	}, nil
}

// Interval returns the configured poll interval.
func (poller *Poller) Interval() time.Duration { return poller.interval }

// Path returns the configured request path.
func (poller *Poller) Path() string { return poller.path }

// Outcomes returns the channel on which completed cycles are
// delivered, in completion order. It is closed when the poller stops.
func (poller *Poller) Outcomes() <-chan Outcome { return poller.outcomes }

// Start launches the poll loop. The first fetch begins immediately.
// The loop runs until ctx is cancelled or Stop is called. Calling
// Start more than once, or after Stop, has no effect.
func (poller *Poller) Start(ctx context.Context) {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if poller.started || poller.stopped {
		return
	}
	poller.started = true

	loopContext, cancel := context.WithCancel(ctx)
	poller.cancel = cancel
	go poller.run(loopContext)
}

// Stop cancels the ticker and any pending fetch, waits for the loop
// to exit and closes the outcome channel. It is safe to call more
// than once and from any goroutine other than one blocked inside the
// consumer of Outcomes.
func (poller *Poller) Stop() {
	poller.mu.Lock()
	if poller.stopped {
		poller.mu.Unlock()
		<-poller.done
		return
	}
	poller.stopped = true
	started := poller.started
	cancel := poller.cancel
	poller.mu.Unlock()

	if !started {
		close(poller.outcomes)
		close(poller.done)
		return
	}
	cancel()
	<-poller.done
}

// RefreshNow requests an immediate cycle outside the schedule. If a
// fetch is already pending the request is coalesced into it. Never
// blocks.
func (poller *Poller) RefreshNow() {
	select {
	case poller.refresh <- struct{}{}:
	default:
		poller.skippedCount.Add(1)
	}
}

// Stats returns a snapshot of the poller's counters.
func (poller *Poller) Stats() Stats {
	return Stats{
		Started:   poller.startedCount.Load(),
		Delivered: poller.deliveredCount.Load(),
		Skipped:   poller.skippedCount.Load(),
	}
}

func (poller *Poller) run(ctx context.Context) {
	defer close(poller.done)
	defer close(poller.outcomes)

	ticker := poller.clock.NewTicker(poller.interval)
	defer ticker.Stop()

	// One slot is enough: at most one fetch is ever outstanding, so
	// the helper goroutine never blocks on send even after the loop
	// has exited.
	results := make(chan Outcome, 1)

	var (
		cycle       uint64
		inFlight    bool
		cancelFetch context.CancelFunc = func() {}
	)
	defer func() { cancelFetch() }()

	begin := func(reason string) {
		if inFlight {
			poller.skippedCount.Add(1)
			poller.logger.Debug("poll cycle coalesced", "reason", reason, "pending_cycle", cycle)
			return
		}
		cycle++
		inFlight = true
		poller.startedCount.Add(1)

		var fetchContext context.Context
		fetchContext, cancelFetch = context.WithTimeout(ctx, poller.fetchTimeout)
		go poller.fetch(fetchContext, cycle, results)
	}

	begin("start")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			begin("tick")
		case <-poller.refresh:
			begin("refresh")
		case outcome := <-results:
			inFlight = false
			cancelFetch()
			poller.logger.Debug("poll cycle complete",
				"cycle", outcome.Cycle,
				"kind", outcome.Kind.String(),
				"status", outcome.Status,
				"duration", outcome.Duration(),
			)
			select {
			case poller.outcomes <- outcome:
				poller.deliveredCount.Add(1)
			case <-ctx.Done():
				return
			}
		}
	}
}

// fetch performs one GET and classifies the result. It always sends
// exactly one Outcome on results.
func (poller *Poller) fetch(ctx context.Context, cycle uint64, results chan<- Outcome) {
	outcome := Outcome{Cycle: cycle, Started: poller.clock.Now()}
	defer func() {
		outcome.Completed = poller.clock.Now()
		results <- outcome
	}()

	response, err := poller.fetcher.Fetch(ctx, poller.path)
	if err != nil {
		outcome.Kind = KindTransportError
		outcome.Err = err
		return
	}

	outcome.Status = response.Status
	if response.Status < 200 || response.Status > 299 {
		outcome.Kind = KindHTTPError
		if len(response.Body) > 0 {
			outcome.Err = fmt.Errorf("HTTP %d: %s", response.Status, response.Body)
		} else {
			outcome.Err = fmt.Errorf("HTTP %d", response.Status)
		}
		return
	}

	snapshot, err := rollout.Decode(response.ContentType, response.Body)
	if err != nil {
		outcome.Kind = KindParseError
		outcome.Err = err
		return
	}
	outcome.Kind = KindSuccess
	outcome.Snapshot = snapshot
}
