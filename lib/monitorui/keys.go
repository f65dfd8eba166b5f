// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the monitor TUI.
type KeyMap struct {
	// Navigation (context-sensitive: list movement or content
	// scrolling depending on focus).
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// File selection within the selected rollout.
	NextFile     key.Binding
	PreviousFile key.Binding

	FocusToggle key.Binding

	SplitGrow   key.Binding
	SplitShrink key.Binding

	Refresh key.Binding

	FilterActivate key.Binding
	FilterClear    key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	NextFile: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next file"),
	),
	PreviousFile: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "prev file"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	SplitGrow: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "grow list"),
	),
	SplitShrink: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "shrink list"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpBindings lists the bindings shown in the footer, in order.
func (keys KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		keys.Down, keys.Up, keys.NextFile, keys.FocusToggle,
		keys.FilterActivate, keys.Refresh, keys.Quit,
	}
}
