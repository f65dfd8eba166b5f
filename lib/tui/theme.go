// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/monitor/lib/rollout"
)

// Theme defines the color palette for the monitor's terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Category colors for rollout status badges.
	CategoryRunning   lipgloss.Color
	CategoryCompleted lipgloss.Color
	CategoryFailed    lipgloss.Color
	CategoryUnknown   lipgloss.Color

	// Connection indicators. Stale marks real data that is no longer
	// confirmed fresh; Substitute marks placeholder data that never
	// came from the source.
	LiveIndicator       lipgloss.Color
	StaleIndicator      lipgloss.Color
	SubstituteIndicator lipgloss.Color

	// System messages in the file pane.
	InfoMessage  lipgloss.Color
	ErrorMessage lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	AccentColor      lipgloss.Color

	// Animation accents: background tint for recently-changed rows.
	HotAccentPut    lipgloss.Color
	HotAccentRemove lipgloss.Color

	// Background tint for fuzzy filter matches.
	SearchHighlightBackground lipgloss.Color

	// Markdown link foreground.
	LinkForeground lipgloss.Color
}

// CategoryColor returns the badge color for a rollout category.
func (theme Theme) CategoryColor(category rollout.Category) lipgloss.Color {
	switch category {
	case rollout.CategoryRunning:
		return theme.CategoryRunning
	case rollout.CategoryCompleted:
		return theme.CategoryCompleted
	case rollout.CategoryFailed:
		return theme.CategoryFailed
	default:
		return theme.CategoryUnknown
	}
}

// CategoryIcon returns a one-cell glyph for a rollout category.
func CategoryIcon(category rollout.Category) string {
	switch category {
	case rollout.CategoryRunning:
		return "●"
	case rollout.CategoryCompleted:
		return "✓"
	case rollout.CategoryFailed:
		return "✗"
	default:
		return "?"
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	CategoryRunning:   lipgloss.Color("75"),  // blue
	CategoryCompleted: lipgloss.Color("114"), // green
	CategoryFailed:    lipgloss.Color("196"), // red
	CategoryUnknown:   lipgloss.Color("245"), // gray

	LiveIndicator:       lipgloss.Color("114"), // green
	StaleIndicator:      lipgloss.Color("220"), // amber
	SubstituteIndicator: lipgloss.Color("208"), // orange

	InfoMessage:  lipgloss.Color("75"),
	ErrorMessage: lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	AccentColor:      lipgloss.Color("220"),

	HotAccentPut:    lipgloss.Color("58"), // dark amber background tint
	HotAccentRemove: lipgloss.Color("52"), // dark red background tint

	SearchHighlightBackground: lipgloss.Color("58"),

	LinkForeground: lipgloss.Color("75"),
}
