// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/monitor/lib/monitor"
	"github.com/bureau-foundation/monitor/lib/tui"
)

// Fixed column widths for the list pane. The status column takes
// whatever remains.
const (
	columnWidthIcon = 2
	columnWidthID   = 10
	columnWidthAge  = 9
)

// listRenderer renders rollout rows at a fixed width.
type listRenderer struct {
	theme tui.Theme
	width int
	now   time.Time
}

func newListRenderer(theme tui.Theme, width int, now time.Time) listRenderer {
	return listRenderer{theme: theme, width: width, now: now}
}

// renderRow renders one rollout as a single line:
//
//	● 0003    Active                          2 min ago
//	✗ 0002    Error: container exited 137      1 hr ago
//
// matchPositions are rune indices into the full id; only those
// falling within the short id are highlighted.
func (renderer listRenderer) renderRow(entry monitor.Entry, selected bool, matchPositions []int) string {
	category := entry.Category()
	statusWidth := max(renderer.width-columnWidthIcon-columnWidthID-columnWidthAge, 4)

	baseStyle := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	iconStyle := lipgloss.NewStyle().Foreground(renderer.theme.CategoryColor(category))
	ageStyle := lipgloss.NewStyle().Foreground(renderer.theme.FaintText)
	highlightStyle := baseStyle.Background(renderer.theme.SearchHighlightBackground)
	if selected {
		baseStyle = baseStyle.
			Foreground(renderer.theme.SelectedForeground).
			Background(renderer.theme.SelectedBackground).
			Bold(true)
		iconStyle = iconStyle.Background(renderer.theme.SelectedBackground)
		ageStyle = ageStyle.Background(renderer.theme.SelectedBackground)
		highlightStyle = highlightStyle.Bold(true)
	}

	shortID := entry.ShortID()
	idCell := ansi.Truncate(shortID, columnWidthID-1, "…")
	idCell += strings.Repeat(" ", columnWidthID-ansi.StringWidth(idCell))

	status := ansi.Truncate(entry.Record.Status, statusWidth-1, "…")
	status += strings.Repeat(" ", statusWidth-ansi.StringWidth(status))

	age := renderer.age(entry)
	age = strings.Repeat(" ", max(0, columnWidthAge-ansi.StringWidth(age))) + age

	var row strings.Builder
	row.WriteString(iconStyle.Render(tui.CategoryIcon(category) + " "))
	row.WriteString(highlightRunes(idCell, matchPositions, len([]rune(shortID)), baseStyle, highlightStyle))
	row.WriteString(baseStyle.Render(status))
	row.WriteString(ageStyle.Render(age))
	return ansi.Truncate(row.String(), renderer.width, "")
}

// age renders the start time relative to now, or "" when unknown.
func (renderer listRenderer) age(entry monitor.Entry) string {
	started := entry.Started()
	if started.IsZero() {
		return ""
	}
	label := humanize.CustomRelTime(started, renderer.now, "ago", "from now", compactMagnitudes)
	return ansi.Truncate(label, columnWidthAge, "")
}

// compactMagnitudes is humanize.defaultMagnitudes with abbreviated
// units so the age fits its column.
var compactMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1s %s", DivBy: 1},
	{D: time.Minute, Format: "%ds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1m %s", DivBy: 1},
	{D: time.Hour, Format: "%dm %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1h %s", DivBy: 1},
	{D: humanize.Day, Format: "%dh %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1d %s", DivBy: 1},
	{D: humanize.Week, Format: "%dd %s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1w %s", DivBy: 1},
	{D: humanize.Month, Format: "%dw %s", DivBy: humanize.Week},
	{D: humanize.Year, Format: "%dmo %s", DivBy: humanize.Month},
	{D: humanize.LongTime, Format: "%dy %s", DivBy: humanize.Year},
	{D: 1<<63 - 1, Format: "long %s", DivBy: 1},
}

// highlightRunes renders text with the runes at positions styled by
// highlightStyle. Positions at or beyond limit are ignored. Runs of
// equally-styled runes are rendered together.
func highlightRunes(text string, positions []int, limit int, baseStyle, highlightStyle lipgloss.Style) string {
	if len(positions) == 0 {
		return baseStyle.Render(text)
	}
	matched := make(map[int]bool, len(positions))
	for _, position := range positions {
		if position < limit {
			matched[position] = true
		}
	}

	runes := []rune(text)
	var result strings.Builder
	runStart := 0
	for index := 1; index <= len(runes); index++ {
		if index < len(runes) && matched[index] == matched[runStart] {
			continue
		}
		chunk := string(runes[runStart:index])
		if matched[runStart] {
			result.WriteString(highlightStyle.Render(chunk))
		} else {
			result.WriteString(baseStyle.Render(chunk))
		}
		runStart = index
	}
	return result.String()
}
