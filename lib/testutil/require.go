// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// Fatalfer is the subset of testing.TB the helpers need.
type Fatalfer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test. A closed channel is a failure.
//
//	outcome := testutil.RequireReceive(t, poller.Outcomes(), 5*time.Second, "first outcome")
func RequireReceive[T any](t Fatalfer, ch <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without sending a value: %s", formatMessage(msgAndArgs))
		}
		return v
	case <-time.After(timeout): //nolint:realclock test hang prevention
		t.Fatalf("timed out after %v: %s", timeout, formatMessage(msgAndArgs))
	}
	panic("unreachable")
}

// RequireClosed waits for ch to be closed within timeout, draining
// any values sent before the close. It fails the test on timeout and
// returns the drained values.
//
//	leftovers := testutil.RequireClosed(t, poller.Outcomes(), 5*time.Second, "outcomes closed")
func RequireClosed[T any](t Fatalfer, ch <-chan T, timeout time.Duration, msgAndArgs ...any) []T {
	t.Helper()
	deadline := time.After(timeout) //nolint:realclock test hang prevention
	var drained []T
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return drained
			}
			drained = append(drained, v)
		case <-deadline:
			t.Fatalf("timed out after %v waiting for channel close: %s", timeout, formatMessage(msgAndArgs))
			return drained
		}
	}
}

// RequireNoReceive fails the test if ch yields a value (or closes)
// within wait. Use it to assert that nothing happens; keep wait
// short, since a passing call always takes the full duration.
func RequireNoReceive[T any](t Fatalfer, ch <-chan T, wait time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected value %v: %s", v, formatMessage(msgAndArgs))
			return
		}
		t.Fatalf("unexpected channel close: %s", formatMessage(msgAndArgs))
	case <-time.After(wait): //nolint:realclock test hang prevention
	}
}

// formatMessage formats optional message arguments into a string.
// Accepts either a single string or a format string followed by args.
func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "(no message)"
	}
	if len(msgAndArgs) == 1 {
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}
