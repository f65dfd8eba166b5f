// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the monitor's
// packages.
//
// [RequireReceive], [RequireClosed] and [RequireNoReceive] encapsulate
// the timeout safety valve pattern (select with time.After fallback)
// so that individual tests do not call time.After directly. They are
// the only place in the test suite where real wall-clock timeouts are
// used; everything else runs on lib/clock's fake clock.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets, whose paths are limited to 108 bytes.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
