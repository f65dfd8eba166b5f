// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/monitor/lib/sqlitepool"
)

func TestPragmasApplied(t *testing.T) {
	pool := openTestPool(t, 0, nil)

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	if mode := queryText(t, conn, "PRAGMA journal_mode"); mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	if synchronous := queryText(t, conn, "PRAGMA synchronous"); synchronous != "1" {
		t.Errorf("synchronous = %s, want 1 (NORMAL)", synchronous)
	}
	if timeout := queryText(t, conn, "PRAGMA busy_timeout"); timeout != "5000" {
		t.Errorf("busy_timeout = %s, want 5000", timeout)
	}
}

func TestDefaultPoolSize(t *testing.T) {
	pool := openTestPool(t, 0, nil)
	if pool.Size() != sqlitepool.DefaultPoolSize {
		t.Errorf("Size() = %d, want %d", pool.Size(), sqlitepool.DefaultPoolSize)
	}
	if !strings.HasSuffix(pool.Path(), "test.db") {
		t.Errorf("Path() = %q", pool.Path())
	}
}

func TestOnConnectCreatesSchema(t *testing.T) {
	pool := openTestPool(t, 1, func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, `
			CREATE TABLE IF NOT EXISTS notes (value TEXT NOT NULL);
		`, nil)
	})

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	err = sqlitex.Execute(conn, "INSERT INTO notes (value) VALUES (?)", &sqlitex.ExecOptions{
		Args: []any{"hello"},
	})
	if err != nil {
		t.Fatalf("INSERT: %v", err)
	}
	if count := queryText(t, conn, "SELECT COUNT(*) FROM notes"); count != "1" {
		t.Errorf("row count = %s, want 1", count)
	}
}

func TestOnConnectErrorSurfacesFromTake(t *testing.T) {
	pool := openTestPool(t, 1, func(*sqlite.Conn) error {
		return errors.New("schema rejected")
	})

	conn, err := pool.Take(context.Background())
	if err == nil {
		pool.Put(conn)
		t.Fatal("expected Take to fail when OnConnect fails")
	}
	if !strings.Contains(err.Error(), "schema rejected") {
		t.Errorf("error = %v, want the OnConnect cause", err)
	}
}

func TestEmptyPathRejected(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestTakeHonorsCancellation(t *testing.T) {
	pool := openTestPool(t, 1, nil)

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Take(ctx); err == nil {
		t.Fatal("expected error from cancelled context with the pool exhausted")
	}
}

func TestPutNil(t *testing.T) {
	pool := openTestPool(t, 1, nil)
	pool.Put(nil)
}

func queryText(t *testing.T, conn *sqlite.Conn, query string) string {
	t.Helper()
	var value string
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return value
}

func openTestPool(t *testing.T, size int, onConnect func(*sqlite.Conn) error) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:      filepath.Join(t.TempDir(), "test.db"),
		PoolSize:  size,
		OnConnect: onConnect,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}
