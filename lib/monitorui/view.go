// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/monitor/lib/monitor"
	"github.com/bureau-foundation/monitor/lib/rollout"
	"github.com/bureau-foundation/monitor/lib/tui"
)

// Placeholder texts.
const (
	connectingText  = "Connecting to Monitor Service..."
	emptyText       = "No rollouts recorded yet."
	noSelectionText = "Select a rollout to view its files."
	noFilesText     = "No files reported for this rollout."
	noMatchesText   = "No rollouts match the filter."
)

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}
	view := model.session.View()

	if view.Connecting() {
		text := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(connectingText)
		return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center,
			model.spinner.View()+" "+text)
	}

	sections := []string{model.renderHeader(view)}
	if view.LastError != "" {
		sections = append(sections, model.renderErrorBanner(view))
	}

	height := model.visibleHeight()
	if len(view.Entries) == 0 {
		sections = append(sections, model.placeholder(emptyText, model.width, height))
	} else {
		listView := model.renderListPane(view)
		divider := lipgloss.NewStyle().
			Foreground(model.theme.BorderColor).
			Width(1).Height(height).
			Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
		detailView := lipgloss.NewStyle().PaddingLeft(1).Render(model.renderDetailPane(view))
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, listView, divider, detailView))
	}

	sections = append(sections,
		lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render(strings.Repeat("─", model.width)),
		model.renderFooter(),
	)
	return strings.Join(sections, "\n")
}

// renderHeader renders the title line: name, connection indicator,
// rollout count and the age of the last successful fetch. While a
// filter is set its query replaces the count.
func (model Model) renderHeader(view monitor.View) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	left := " " + titleStyle.Render("Rollout Monitor") + "  " + model.renderIndicator(view)

	var right string
	if model.filter.Active || model.filter.Input != "" {
		cursor := ""
		if model.filter.Active {
			cursor = "█"
		}
		right = lipgloss.NewStyle().Foreground(model.theme.AccentColor).Render("/"+model.filter.Input+cursor) +
			faint.Render(fmt.Sprintf("  %d/%d", len(model.visible), len(view.Entries)))
	} else {
		noun := "rollouts"
		if len(view.Entries) == 1 {
			noun = "rollout"
		}
		right = faint.Render(fmt.Sprintf("%d %s", len(view.Entries), noun))
	}
	if !view.LastSuccess.IsZero() {
		right += faint.Render("  updated " + humanize.RelTime(view.LastSuccess, model.now(), "ago", "from now"))
	}
	right += " "

	gap := max(1, model.width-lipgloss.Width(left)-lipgloss.Width(right))
	return ansi.Truncate(left+strings.Repeat(" ", gap)+right, model.width, "")
}

// renderIndicator renders LIVE, STALE or SUBSTITUTE DATA.
func (model Model) renderIndicator(view monitor.View) string {
	label, color := "LIVE", model.theme.LiveIndicator
	switch {
	case view.UsingSubstitute:
		label, color = "SUBSTITUTE DATA", model.theme.SubstituteIndicator
	case !view.Live:
		label, color = "STALE", model.theme.StaleIndicator
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render("● " + label)
}

func (model Model) renderErrorBanner(view monitor.View) string {
	style := lipgloss.NewStyle().Foreground(model.theme.ErrorMessage)
	return ansi.Truncate(style.Render(" "+view.LastError), model.width, "…")
}

// renderListPane renders the filtered rollout rows and a scrollbar.
func (model Model) renderListPane(view monitor.View) string {
	listWidth := model.listWidth()
	rowWidth := max(1, listWidth-1)
	height := model.visibleHeight()

	if len(model.visible) == 0 {
		return model.placeholder(noMatchesText, listWidth, height)
	}

	now := model.now()
	renderer := newListRenderer(model.theme, rowWidth, now)
	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+height && index < len(model.visible); index++ {
		entry := model.visible[index]
		selected := entry.ID == view.SelectedID
		row := renderer.renderRow(entry.Entry, selected, entry.IDPositions)
		if !selected {
			if heat := model.heat.Heat(entry.ID, now); heat > 0 {
				accent := model.theme.HotAccentPut
				if model.heat.Kind(entry.ID) == tui.HeatRemove {
					accent = model.theme.HotAccentRemove
				}
				row = lipgloss.NewStyle().Background(accent).Width(rowWidth).MaxWidth(rowWidth).Render(row)
			}
		}
		rows = append(rows, row)
	}

	scrollbar := tui.Scrollbar{
		Total:   len(model.visible),
		Visible: height,
		Offset:  model.scrollOffset,
	}.Render(model.theme, height, model.focus == FocusList)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(rowWidth).Height(height).Render(strings.Join(rows, "\n")),
		scrollbar,
	)
}

// renderDetailPane renders the selected rollout: identity, start
// time, system messages, file tabs and the content viewport.
func (model Model) renderDetailPane(view monitor.View) string {
	width := model.detailWidth()
	height := model.visibleHeight()
	if view.Selected == nil {
		return model.placeholder(noSelectionText, width, height)
	}
	entry := *view.Selected
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	category := entry.Category()
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(entry.ID) + "  " +
			lipgloss.NewStyle().Foreground(model.theme.CategoryColor(category)).
				Render(tui.CategoryIcon(category)+" "+entry.Record.Status),
		faint.Render(model.describeOrigin(entry)),
		"",
	}

	if len(view.Files.Messages) > 0 {
		for _, message := range view.Files.Messages {
			lines = append(lines, model.renderSystemMessage(message))
		}
		lines = append(lines, "")
	}

	if len(view.Files.Files) == 0 {
		lines = append(lines, faint.Italic(true).Render(noFilesText))
	} else {
		lines = append(lines, model.renderFileTabs(view), model.content.View())
	}

	lines = strings.Split(strings.Join(lines, "\n"), "\n")
	for index, line := range lines {
		lines[index] = ansi.Truncate(line, width, "…")
	}
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

// describeOrigin renders "container · started <local time> (<age>)".
func (model Model) describeOrigin(entry monitor.Entry) string {
	origin := entry.ContainerLabel()
	if started := entry.Started(); !started.IsZero() {
		origin += " · started " + started.Local().Format("2006-01-02 15:04:05") +
			" (" + humanize.RelTime(started, model.now(), "ago", "from now") + ")"
	}
	if entry.Record.LastUpdated != "" {
		origin += " · updated " + entry.Record.LastUpdated
	}
	return origin
}

func (model Model) renderSystemMessage(message rollout.SystemMessage) string {
	icon, color := "ℹ ", model.theme.InfoMessage
	if message.Kind == rollout.MessageError {
		icon, color = "⚠ ", model.theme.ErrorMessage
	}
	// Messages are shown on one line each; the full text is in the
	// rollout's files when it matters.
	text := strings.Join(strings.Fields(message.Content), " ")
	return lipgloss.NewStyle().Foreground(color).Render(icon + text)
}

// renderFileTabs renders the selected rollout's files as a tab strip
// with sizes, the current file highlighted.
func (model Model) renderFileTabs(view monitor.View) string {
	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground)
	normalStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var tabs []string
	for _, path := range view.Files.Files {
		size := humanize.Bytes(uint64(len(view.Selected.Record.Files[path])))
		label := " " + path + " " + lipgloss.NewStyle().Faint(true).Render(size) + " "
		if path == view.SelectedFile {
			tabs = append(tabs, selectedStyle.Render(label))
		} else {
			tabs = append(tabs, normalStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (model Model) placeholder(text string, width, height int) string {
	style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, style.Render(text))
}

// renderFooter renders the help line, or the latest log message while
// one is showing, with the polling state on the right.
func (model Model) renderFooter() string {
	var left string
	if model.statusMessage != "" {
		color := model.theme.InfoMessage
		if model.statusLevel >= slog.LevelWarn {
			color = model.theme.ErrorMessage
		}
		left = lipgloss.NewStyle().Foreground(color).Render(" " + model.statusMessage)
	} else {
		left = lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(" " + model.helpLine())
	}

	polling := fmt.Sprintf("Auto-polling enabled (%s)", model.interval)
	if model.sourceClosed {
		polling = "Polling stopped"
	}
	right := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(polling + " ")

	leftWidth := model.width - lipgloss.Width(right) - 1
	left = ansi.Truncate(left, max(0, leftWidth), "…")
	gap := max(1, model.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (model Model) helpLine() string {
	focus := "LIST"
	switch model.focus {
	case FocusContent:
		focus = "FILE"
	case FocusFilter:
		focus = "FILTER"
	}
	parts := []string{"[" + focus + "]"}
	for _, binding := range model.keys.helpBindings() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
