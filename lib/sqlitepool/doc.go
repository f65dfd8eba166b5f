// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens small SQLite connection pools for the
// monitor's local storage.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies one set
// of pragmas to every connection:
//
//   - journal_mode=WAL so a reader never waits on the writer.
//   - synchronous=NORMAL: commits survive a process crash, not power loss.
//   - busy_timeout=5000 to wait for the write lock instead of failing.
//   - temp_store=MEMORY.
//
// Callers [Pool.Take] a connection, do their work, and [Pool.Put] it
// back. A connection belongs to one goroutine at a time.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path: path,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
package sqlitepool
