// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var fuzzyInitOnce sync.Once

// FuzzyResult is the outcome of matching one string against a query.
type FuzzyResult struct {
	Matched bool

	// Score ranks matches; higher is better.
	Score int

	// Positions are the rune indices of matched characters in the
	// text, ascending.
	Positions []int
}

// NewSlab allocates the scratch space FuzzyMatch reuses between
// calls. One slab per goroutine.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyPattern prepares a query for FuzzyMatch. Matching is
// case-insensitive, so the pattern is lowercased.
func FuzzyPattern(query string) []rune {
	return []rune(strings.ToLower(query))
}

// FuzzyMatch runs fzf's V2 algorithm over text. An empty pattern
// matches everything with score 0.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	fuzzyInitOnce.Do(func() { algo.Init("default") })

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		match.Positions = append(match.Positions, (*positions)...)
		slices.Sort(match.Positions)
	}
	return match
}
