// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Scrollbar describes a vertical scroll position: Total items (or
// lines) of which Visible fit, starting at Offset.
type Scrollbar struct {
	Total   int
	Visible int
	Offset  int
}

// thumb returns the thumb's first row and size for a track of the
// given height.
func (bar Scrollbar) thumb(height int) (offset, size int) {
	if bar.Total <= bar.Visible || bar.Total <= 0 {
		return 0, height
	}
	size = max(1, height*bar.Visible/bar.Total)
	scrollable := bar.Total - bar.Visible
	track := height - size
	if scrollable > 0 && track > 0 {
		offset = min(bar.Offset, scrollable) * track / scrollable
	}
	if offset+size > height {
		offset = height - size
	}
	return max(0, offset), size
}

// Render produces a single-column scrollbar of the given height. When
// the content fits the thumb spans the whole track. The thumb uses
// the accent color when focused.
func (bar Scrollbar) Render(theme Theme, height int, focused bool) string {
	if height <= 0 {
		return ""
	}
	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.AccentColor
	}
	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(thumbColor)

	thumbOffset, thumbSize := bar.thumb(height)
	lines := make([]string, height)
	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}
