// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/monitor/lib/tui"
)

// maxHighlightBytes bounds the content handed to chroma. Larger files
// are shown as plain text; tokenizing multi-megabyte logs on every
// selection change makes the UI stutter.
const maxHighlightBytes = 512 << 10

// renderFileContent renders a file for the content pane: markdown
// files through the terminal markdown renderer, everything else
// syntax-highlighted by file name when chroma recognizes it. Tabs are
// expanded and long lines are hard-wrapped to width.
func renderFileContent(filePath, content string, theme tui.Theme, width int) string {
	if content == "" {
		return lipgloss.NewStyle().Foreground(theme.FaintText).Italic(true).Render("(empty file)")
	}
	content = strings.ReplaceAll(content, "\t", "    ")

	switch strings.ToLower(path.Ext(filePath)) {
	case ".md", ".markdown":
		return renderTerminalMarkdown(content, theme, width)
	}

	highlighted := highlightSource(filePath, content)
	if highlighted == "" {
		highlighted = lipgloss.NewStyle().Foreground(theme.NormalText).Render(content)
	}
	return ansi.Hardwrap(highlighted, max(width, 10), true)
}

// highlightSource returns ANSI-highlighted content, or "" when the
// file type is unknown or the content too large.
func highlightSource(filePath, content string) string {
	if len(content) > maxHighlightBytes {
		return ""
	}
	lexer := lexers.Match(path.Base(filePath))
	if lexer == nil {
		return ""
	}
	return highlightWith(lexer, content)
}

// highlightCode highlights a fenced code block by language name.
// Returns "" for unknown languages.
func highlightCode(code, language string) string {
	if language == "" {
		return ""
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return ""
	}
	return highlightWith(lexer, code)
}

func highlightWith(lexer chroma.Lexer, content string) string {
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, content)
	if err != nil {
		return ""
	}
	style := styles.Get("monokai")
	formatter := formatters.Get("terminal256")
	var buffer strings.Builder
	if err := formatter.Format(&buffer, style, iterator); err != nil {
		return ""
	}
	return buffer.String()
}
