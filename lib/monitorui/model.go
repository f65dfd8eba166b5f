// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/monitor/lib/monitor"
	"github.com/bureau-foundation/monitor/lib/poll"
	"github.com/bureau-foundation/monitor/lib/rollout"
	"github.com/bureau-foundation/monitor/lib/tui"
)

// Source is the polling side of the TUI: a stream of fetch outcomes
// and a way to request an immediate cycle. *poll.Poller satisfies it.
type Source interface {
	Outcomes() <-chan poll.Outcome
	RefreshNow()
}

// FocusRegion identifies which pane receives navigation keys.
type FocusRegion int

const (
	// FocusList means navigation keys move the rollout selection.
	FocusList FocusRegion = iota
	// FocusContent means navigation keys scroll the file content.
	FocusContent
	// FocusFilter means printable keys edit the filter query.
	FocusFilter
)

// Split ratio bounds for the list pane.
const (
	defaultSplitRatio = 0.4
	splitRatioMin     = 0.2
	splitRatioMax     = 0.8
	splitRatioStep    = 0.05
)

// outcomeMsg carries one poll outcome into the update loop.
type outcomeMsg struct {
	outcome poll.Outcome
}

// sourceClosedMsg reports that the outcome channel closed.
type sourceClosedMsg struct{}

// heatTickMsg drives the change highlight decay.
type heatTickMsg struct{}

// Config configures a Model.
type Config struct {
	// Session is the state the model renders and mutates. Required.
	Session *monitor.Session

	// Source delivers outcomes. Required.
	Source Source

	// Interval is the polling interval shown in the footer.
	Interval time.Duration

	// SplitRatio is the initial list pane fraction. Zero selects the
	// default; other values are clamped.
	SplitRatio float64

	// Logger receives selection errors at debug. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// Now overrides the wall clock for relative times. Defaults to
	// time.Now.
	Now func() time.Time

	// OnApply, if set, is called on the UI goroutine after each
	// outcome the session applies.
	OnApply func(poll.Outcome, rollout.Change)
}

// Model is the bubbletea model for the rollout monitor. It owns the
// session on the UI goroutine: outcomes arrive as messages and are
// applied in Update, so the session never sees concurrent access.
type Model struct {
	session  *monitor.Session
	source   Source
	interval time.Duration
	theme    tui.Theme
	keys     KeyMap
	logger   *slog.Logger
	now      func() time.Time
	onApply  func(poll.Outcome, rollout.Change)

	width  int
	height int
	ready  bool

	focus      FocusRegion
	priorFocus FocusRegion
	splitRatio float64

	filter  FilterModel
	visible []filteredEntry

	// scrollOffset is the first visible row of the list pane.
	scrollOffset int

	heat        *tui.HeatTracker
	tickRunning bool

	content viewport.Model
	// What the viewport currently shows: rollout id and path, the raw
	// text and the width it was rendered at.
	contentFile  string
	contentText  string
	contentWidth int

	spinner spinner.Model

	statusMessage  string
	statusLevel    slog.Level
	statusSequence uint64

	sourceClosed bool
}

// NewModel creates a model. The session may already hold state; the
// first render reflects it.
func NewModel(config Config) Model {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	interval := config.Interval
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	splitRatio := config.SplitRatio
	if splitRatio == 0 {
		splitRatio = defaultSplitRatio
	}
	splitRatio = max(splitRatioMin, min(splitRatio, splitRatioMax))

	model := Model{
		session:    config.Session,
		source:     config.Source,
		interval:   interval,
		theme:      tui.DefaultTheme,
		keys:       DefaultKeyMap,
		logger:     logger,
		now:        now,
		onApply:    config.OnApply,
		splitRatio: splitRatio,
		heat:       tui.NewHeatTracker(),
		content:    viewport.New(0, 0),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
		),
	}
	model.refreshVisible()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(listenForOutcome(model.source.Outcomes()), model.spinner.Tick)
}

// listenForOutcome waits for the next outcome. Each outcomeMsg
// handler re-arms it, so exactly one receive is outstanding.
func listenForOutcome(outcomes <-chan poll.Outcome) tea.Cmd {
	return func() tea.Msg {
		outcome, ok := <-outcomes
		if !ok {
			return sourceClosedMsg{}
		}
		return outcomeMsg{outcome: outcome}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		if model.focus == FocusFilter {
			return model.handleFilterKeys(message)
		}
		return model.handleKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()
		model.ensureSelectionVisible()
		model.syncContent()

	case outcomeMsg:
		return model.handleOutcome(message.outcome)

	case sourceClosedMsg:
		model.sourceClosed = true

	case heatTickMsg:
		if model.heat.HasHot(model.now()) {
			return model, scheduleHeatTick()
		}
		model.tickRunning = false

	case spinner.TickMsg:
		// Keep spinning only while the first fetch is outstanding.
		if !model.session.View().Connecting() {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command

	case logRecordMsg:
		model.statusSequence++
		model.statusMessage = message.Summary
		model.statusLevel = message.Level
		sequence := model.statusSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.statusSequence {
			model.statusMessage = ""
		}
	}
	return model, nil
}

func (model Model) handleOutcome(outcome poll.Outcome) (tea.Model, tea.Cmd) {
	commands := []tea.Cmd{listenForOutcome(model.source.Outcomes())}

	change, applied := model.session.Apply(outcome)
	if !applied {
		return model, commands[0]
	}
	if model.onApply != nil {
		model.onApply(outcome, change)
	}
	if model.heat.IgniteChange(change, model.now()) && !model.tickRunning {
		model.tickRunning = true
		commands = append(commands, scheduleHeatTick())
	}
	model.refreshVisible()
	model.ensureSelectionVisible()
	model.syncContent()
	return model, tea.Batch(commands...)
}

func scheduleHeatTick() tea.Cmd {
	return tea.Tick(tui.HeatTickInterval, func(time.Time) tea.Msg {
		return heatTickMsg{}
	})
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusList {
			model.focus = FocusContent
		} else {
			model.focus = FocusList
		}

	case key.Matches(message, model.keys.SplitGrow):
		model.splitRatio = min(model.splitRatio+splitRatioStep, splitRatioMax)
		model.updatePaneSizes()
		model.syncContent()

	case key.Matches(message, model.keys.SplitShrink):
		model.splitRatio = max(model.splitRatio-splitRatioStep, splitRatioMin)
		model.updatePaneSizes()
		model.syncContent()

	case key.Matches(message, model.keys.Refresh):
		model.source.RefreshNow()

	case key.Matches(message, model.keys.FilterActivate):
		model.priorFocus = model.focus
		model.focus = FocusFilter
		model.filter.Active = true
		model.scrollOffset = 0

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.refreshVisible()
			model.ensureSelectionVisible()
		}

	case key.Matches(message, model.keys.NextFile):
		model.session.MoveFile(1)
		model.syncContent()

	case key.Matches(message, model.keys.PreviousFile):
		model.session.MoveFile(-1)
		model.syncContent()

	default:
		if model.focus == FocusList {
			model.handleListKeys(message)
		} else {
			model.handleContentKeys(message)
		}
	}
	return model, nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
		}
		model.filter.Active = false
		model.focus = model.priorFocus

	case message.Type == tea.KeyEnter:
		model.filter.Active = false
		model.focus = FocusList

	case message.Type == tea.KeyBackspace:
		model.filter.Backspace()

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		model.filter.Input += string(message.Runes)

	default:
		return model, nil
	}
	model.refreshVisible()
	model.ensureSelectionVisible()
	return model, nil
}

func (model *Model) handleListKeys(message tea.KeyMsg) {
	if len(model.visible) == 0 {
		return
	}
	position := model.selectedPosition()
	last := len(model.visible) - 1

	target := position
	switch {
	case key.Matches(message, model.keys.Up):
		target = position - 1
		if position < 0 {
			target = 0
		}
	case key.Matches(message, model.keys.Down):
		target = position + 1
	case key.Matches(message, model.keys.PageUp):
		target = position - model.visibleHeight()
	case key.Matches(message, model.keys.PageDown):
		target = position + model.visibleHeight()
	case key.Matches(message, model.keys.Home):
		target = 0
	case key.Matches(message, model.keys.End):
		target = last
	default:
		return
	}
	model.selectID(model.visible[max(0, min(target, last))].ID)
}

func (model *Model) handleContentKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.content.LineUp(1)
	case key.Matches(message, model.keys.Down):
		model.content.LineDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.content.LineUp(max(1, model.content.Height))
	case key.Matches(message, model.keys.PageDown):
		model.content.LineDown(max(1, model.content.Height))
	case key.Matches(message, model.keys.Home):
		model.content.GotoTop()
	case key.Matches(message, model.keys.End):
		model.content.GotoBottom()
	}
}

// selectID makes id the explicit selection. A stale id (the rollout
// vanished between render and keypress) is logged and ignored.
func (model *Model) selectID(id string) {
	if err := model.session.Select(id); err != nil {
		if errors.Is(err, monitor.ErrSelectionNotFound) {
			model.logger.Debug("selection target vanished", "error", err)
			return
		}
		model.logger.Warn("selection failed", "error", err)
		return
	}
	model.ensureSelectionVisible()
	model.syncContent()
}

// refreshVisible recomputes the filtered list from the session.
func (model *Model) refreshVisible() {
	model.visible = model.filter.Apply(model.session.View().Entries)
}

// selectedPosition returns the selected entry's row in the filtered
// list, or -1 when it is filtered out or nothing is selected.
func (model Model) selectedPosition() int {
	selectedID := model.session.View().SelectedID
	if selectedID == "" {
		return -1
	}
	for index, entry := range model.visible {
		if entry.ID == selectedID {
			return index
		}
	}
	return -1
}

// visibleHeight is the number of list rows between the chrome above
// (header, plus the error banner while the source is failing) and
// the footer (separator plus help line).
func (model Model) visibleHeight() int {
	chrome := 3
	if model.session.State().LastError != "" {
		chrome++
	}
	return max(0, model.height-chrome)
}

func (model Model) listWidth() int {
	return int(float64(model.width) * model.splitRatio)
}

// detailWidth is the detail pane width: everything right of the list
// and the divider, less one column of left padding.
func (model Model) detailWidth() int {
	return max(10, model.width-model.listWidth()-2)
}

// ensureSelectionVisible scrolls the list so the selected row is on
// screen, and clamps the offset after the list shrinks.
func (model *Model) ensureSelectionVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}
	model.scrollOffset = min(model.scrollOffset, max(0, len(model.visible)-visible))
	position := model.selectedPosition()
	if position < 0 {
		return
	}
	if position < model.scrollOffset {
		model.scrollOffset = position
	}
	if position >= model.scrollOffset+visible {
		model.scrollOffset = position - visible + 1
	}
}

// detailHeaderLines is the number of lines above the content
// viewport in the detail pane: id, container/start, blank, file tabs.
const detailHeaderLines = 4

func (model *Model) updatePaneSizes() {
	model.content.Width = model.detailWidth()
	model.content.Height = max(1, model.visibleHeight()-detailHeaderLines-model.messageLines())
}

// messageLines is the height of the system messages block for the
// selected rollout, including its trailing blank line.
func (model Model) messageLines() int {
	view := model.session.View()
	if view.Selected == nil || len(view.Files.Messages) == 0 {
		return 0
	}
	return len(view.Files.Messages) + 1
}

// syncContent re-renders the file content when the selected rollout,
// file, file content or pane width changed. The scroll position
// survives updates to the same file.
func (model *Model) syncContent() {
	if !model.ready {
		return
	}
	model.updatePaneSizes()
	view := model.session.View()

	file := ""
	if view.Selected != nil && view.SelectedFile != "" {
		file = view.Selected.ID + "\x00" + view.SelectedFile
	}
	content := view.SelectedContent()
	if file == model.contentFile && content == model.contentText && model.content.Width == model.contentWidth {
		return
	}
	sameFile := file != "" && file == model.contentFile
	model.contentFile = file
	model.contentText = content
	model.contentWidth = model.content.Width

	if file == "" {
		model.content.SetContent("")
		model.content.GotoTop()
		return
	}
	offset := model.content.YOffset
	model.content.SetContent(renderFileContent(view.SelectedFile, content, model.theme, model.content.Width))
	if sameFile {
		model.content.SetYOffset(offset)
	} else {
		model.content.GotoTop()
	}
}
