// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/monitor/lib/clock"
	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
	"github.com/bureau-foundation/monitor/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS poll_outcomes (
	run         INTEGER NOT NULL,
	cycle       INTEGER NOT NULL,
	kind        TEXT    NOT NULL,
	status      INTEGER NOT NULL,
	detail      TEXT    NOT NULL,
	started     INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL,
	rollouts    INTEGER NOT NULL,
	active_id   TEXT    NOT NULL,
	PRIMARY KEY (run, cycle)
);

CREATE INDEX IF NOT EXISTS idx_poll_outcomes_started ON poll_outcomes (started);

CREATE TABLE IF NOT EXISTS rollout_changes (
	run        INTEGER NOT NULL,
	cycle      INTEGER NOT NULL,
	rollout_id TEXT    NOT NULL,
	change     TEXT    NOT NULL,
	status     TEXT    NOT NULL,
	recorded   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rollout_changes_id ON rollout_changes (rollout_id, recorded);
`

// Change kinds stored in rollout_changes.change.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
	ChangeUpdated = "updated"
)

// Config holds the parameters for Open.
type Config struct {
	// Path is the database file. Created if missing.
	Path string

	// Clock stamps the run id. Defaults to the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Journal appends to and queries one journal database.
type Journal struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
	run    int64
}

// Open opens (creating if needed) the journal at cfg.Path and ensures
// the schema exists.
func Open(cfg Config) (*Journal, error) {
	if cfg.Path == "" {
		return nil, errors.New("journal: Path is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	// Connections open lazily; take one now so a bad path or schema
	// fails here rather than on the first Record.
	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("journal: %w", err)
	}
	pool.Put(conn)

	journal := &Journal{
		pool:   pool,
		logger: logger,
		run:    clk.Now().UnixNano(),
	}
	logger.Info("journal opened", "path", cfg.Path, "run", journal.run)
	return journal, nil
}

// Run returns the id stamped on every row this Journal writes.
func (journal *Journal) Run() int64 { return journal.run }

// Close closes the database.
func (journal *Journal) Close() error {
	return journal.pool.Close()
}

// Record appends one applied outcome and the change it produced. For
// a failed outcome the change is empty and only the outcome row is
// written. All rows for one outcome commit together.
func (journal *Journal) Record(ctx context.Context, outcome poll.Outcome, change rollout.Change) (err error) {
	conn, err := journal.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer journal.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("journal: begin: %w", err)
	}
	defer endTransaction(&err)

	activeID, _ := outcome.Snapshot.Active()
	err = sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO poll_outcomes
			(run, cycle, kind, status, detail, started, duration_ns, rollouts, active_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			journal.run,
			int64(outcome.Cycle),
			outcome.Kind.String(),
			outcome.Status,
			outcome.Detail(),
			outcome.Started.UnixNano(),
			outcome.Duration().Nanoseconds(),
			outcome.Snapshot.Len(),
			activeID,
		}})
	if err != nil {
		return fmt.Errorf("journal: recording outcome %d: %w", outcome.Cycle, err)
	}

	recorded := outcome.Completed.UnixNano()
	insert := func(id, kind, status string) error {
		return sqlitex.Execute(conn,
			`INSERT INTO rollout_changes (run, cycle, rollout_id, change, status, recorded)
			VALUES (?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{
				journal.run, int64(outcome.Cycle), id, kind, status, recorded,
			}})
	}
	for _, id := range change.Added {
		if err = insert(id, ChangeAdded, statusOf(outcome.Snapshot, id)); err != nil {
			return fmt.Errorf("journal: recording %s: %w", id, err)
		}
	}
	for _, id := range change.Changed {
		if err = insert(id, ChangeUpdated, statusOf(outcome.Snapshot, id)); err != nil {
			return fmt.Errorf("journal: recording %s: %w", id, err)
		}
	}
	for _, id := range change.Removed {
		if err = insert(id, ChangeRemoved, ""); err != nil {
			return fmt.Errorf("journal: recording %s: %w", id, err)
		}
	}
	return nil
}

func statusOf(snapshot *rollout.Snapshot, id string) string {
	if snapshot == nil {
		return ""
	}
	return snapshot.History[id].Status
}

// Availability summarizes poll outcomes started at or after since,
// across every run in the journal.
type Availability struct {
	Total    int
	Failures int

	// LastSuccess is the start of the newest successful poll, or the
	// zero time when there was none.
	LastSuccess time.Time

	// LastFailure is the detail of the newest failed poll.
	LastFailure string
}

// Ratio returns the fraction of successful polls, or 0 with no polls.
func (availability Availability) Ratio() float64 {
	if availability.Total == 0 {
		return 0
	}
	return float64(availability.Total-availability.Failures) / float64(availability.Total)
}

// Availability reads the outcome summary since the given time.
func (journal *Journal) Availability(ctx context.Context, since time.Time) (Availability, error) {
	conn, err := journal.pool.Take(ctx)
	if err != nil {
		return Availability{}, fmt.Errorf("journal: %w", err)
	}
	defer journal.pool.Put(conn)

	var result Availability
	successKind := poll.KindSuccess.String()
	err = sqlitex.Execute(conn,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN kind != ? THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN kind = ? THEN started END), 0)
		FROM poll_outcomes WHERE started >= ?`,
		&sqlitex.ExecOptions{
			Args: []any{successKind, successKind, since.UnixNano()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result.Total = stmt.ColumnInt(0)
				result.Failures = stmt.ColumnInt(1)
				if nanos := stmt.ColumnInt64(2); nanos != 0 {
					result.LastSuccess = time.Unix(0, nanos)
				}
				return nil
			},
		})
	if err != nil {
		return Availability{}, fmt.Errorf("journal: availability: %w", err)
	}

	err = sqlitex.Execute(conn,
		`SELECT detail FROM poll_outcomes
		WHERE kind != ? AND started >= ?
		ORDER BY started DESC LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{successKind, since.UnixNano()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result.LastFailure = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return Availability{}, fmt.Errorf("journal: last failure: %w", err)
	}
	return result, nil
}

// ChangeRecord is one row of a rollout's history.
type ChangeRecord struct {
	Run      int64
	Cycle    uint64
	Change   string
	Status   string
	Recorded time.Time
}

// History returns every recorded change for id, oldest first.
func (journal *Journal) History(ctx context.Context, id string) ([]ChangeRecord, error) {
	conn, err := journal.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	defer journal.pool.Put(conn)

	var records []ChangeRecord
	err = sqlitex.Execute(conn,
		`SELECT run, cycle, change, status, recorded FROM rollout_changes
		WHERE rollout_id = ?
		ORDER BY recorded, run, cycle`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				records = append(records, ChangeRecord{
					Run:      stmt.ColumnInt64(0),
					Cycle:    uint64(stmt.ColumnInt64(1)),
					Change:   stmt.ColumnText(2),
					Status:   stmt.ColumnText(3),
					Recorded: time.Unix(0, stmt.ColumnInt64(4)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("journal: history of %s: %w", id, err)
	}
	return records, nil
}
