// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "fmt"

// errorCategory classifies command failures so that scripts can tell
// a bad invocation from an unreachable source by exit code alone.
type errorCategory string

const (
	// categoryValidation: bad flags, bad config, unreadable substitute
	// file. Fix the input and retry.
	categoryValidation errorCategory = "validation"

	// categoryTransient: the rollout service could not be reached or
	// returned an unusable snapshot. Retrying may succeed.
	categoryTransient errorCategory = "transient"

	// categoryInternal: anything else.
	categoryInternal errorCategory = "internal"
)

// cliError is a categorized error returned by run. main maps the
// category to the process exit code.
type cliError struct {
	category errorCategory
	err      error
	hint     string
}

func (e *cliError) Error() string { return e.err.Error() }

func (e *cliError) Unwrap() error { return e.err }

// ExitCode returns the process exit status for the error's category.
func (e *cliError) ExitCode() int {
	switch e.category {
	case categoryValidation:
		return 2
	case categoryTransient:
		return 3
	default:
		return 1
	}
}

// withHint attaches a suggestion printed after the error message.
func (e *cliError) withHint(hint string) *cliError {
	e.hint = hint
	return e
}

func validationError(format string, args ...any) *cliError {
	return &cliError{category: categoryValidation, err: fmt.Errorf(format, args...)}
}

func transientError(format string, args ...any) *cliError {
	return &cliError{category: categoryTransient, err: fmt.Errorf(format, args...)}
}

func internalError(format string, args ...any) *cliError {
	return &cliError{category: categoryInternal, err: fmt.Errorf(format, args...)}
}
