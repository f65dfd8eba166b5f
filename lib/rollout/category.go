// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rollout

import "strings"

// Category is the display classification of a rollout's status.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryRunning
	CategoryCompleted
	CategoryFailed
)

// String returns the lowercase category name.
func (category Category) String() string {
	switch category {
	case CategoryRunning:
		return "running"
	case CategoryCompleted:
		return "completed"
	case CategoryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name.
func (category Category) MarshalText() ([]byte, error) {
	return []byte(category.String()), nil
}

// Categorize maps a free-text status and the active flag to a
// category. Precedence: active (or status "active"/"starting") wins,
// then "finished", then "error" or "failed". Matching ignores case.
func Categorize(status string, active bool) Category {
	lower := strings.ToLower(status)
	switch {
	case active, lower == "active", lower == "starting":
		return CategoryRunning
	case strings.Contains(lower, "finished"):
		return CategoryCompleted
	case strings.Contains(lower, "error"), strings.Contains(lower, "failed"):
		return CategoryFailed
	default:
		return CategoryUnknown
	}
}
