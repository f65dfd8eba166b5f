// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/monitor/lib/rollout"
)

// Kind discriminates the result of one fetch.
type Kind int

const (
	// KindSuccess: 2xx with a well-formed snapshot body.
	KindSuccess Kind = iota

	// KindHTTPError: the endpoint answered with a non-2xx status.
	KindHTTPError

	// KindTransportError: no response (connection refused, timeout,
	// DNS failure, truncated body).
	KindTransportError

	// KindParseError: 2xx whose body is not a snapshot.
	KindParseError
)

func (kind Kind) String() string {
	switch kind {
	case KindSuccess:
		return "success"
	case KindHTTPError:
		return "http_error"
	case KindTransportError:
		return "transport_error"
	case KindParseError:
		return "parse_error"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// Outcome is the result of one completed poll cycle.
type Outcome struct {
	// Cycle is the poll cycle token. Tokens strictly increase over
	// the lifetime of a Poller, starting at 1.
	Cycle uint64

	Kind Kind

	// Snapshot is set only for KindSuccess.
	Snapshot *rollout.Snapshot

	// Status is the HTTP status code for KindSuccess, KindHTTPError
	// and KindParseError. Zero for KindTransportError.
	Status int

	// Err describes the failure for every kind except KindSuccess.
	// For KindParseError it wraps a *rollout.ParseError.
	Err error

	// Started and Completed bracket the fetch, read from the poller's
	// clock.
	Started   time.Time
	Completed time.Time
}

// Failed reports whether the outcome is any kind of error.
func (outcome Outcome) Failed() bool {
	return outcome.Kind != KindSuccess
}

// Detail returns a short description of a failed outcome, suitable
// for an advisory message: "HTTP 503", the transport cause, or
// "malformed snapshot: <cause>". It returns "" for a success.
func (outcome Outcome) Detail() string {
	switch outcome.Kind {
	case KindSuccess:
		return ""
	case KindHTTPError:
		return fmt.Sprintf("HTTP %d", outcome.Status)
	case KindParseError:
		return "malformed snapshot: " + errorText(outcome.Err)
	default:
		return errorText(outcome.Err)
	}
}

// Duration returns how long the fetch took.
func (outcome Outcome) Duration() time.Duration {
	return outcome.Completed.Sub(outcome.Started)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
