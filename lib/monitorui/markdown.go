// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/bureau-foundation/monitor/lib/tui"
)

// The goldmark parser is configured once and shared; Parse creates
// per-call state.
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParserInstance
}

// renderTerminalMarkdown renders markdown as styled terminal text
// wrapped to width. Soft line breaks become spaces so hard-wrapped
// source reflows at any width.
func renderTerminalMarkdown(input string, theme tui.Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Force ANSI256: this output always goes to the TUI, and
	// auto-detection yields uncolored output without a TTY.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks a goldmark AST. Inline content accumulates
// in a buffer and is word-wrapped as a unit when its block closes.
type markdownRenderer struct {
	source      []byte
	theme       tui.Theme
	width       int
	lipRenderer *lipgloss.Renderer

	output strings.Builder
	inline strings.Builder

	// linePrefix is prepended to every emitted line (blockquote bars,
	// list indentation). pendingBullet replaces it for the next line
	// only.
	prefixes      []string
	linePrefix    string
	pendingBullet string

	boldCount          int
	italicCount        int
	strikethroughCount int

	lists []listState

	trailingNewlines int
}

type listState struct {
	ordered bool
	counter int
}

func (renderer *markdownRenderer) style() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

func (renderer *markdownRenderer) currentWidth() int {
	return max(renderer.width-ansi.StringWidth(renderer.linePrefix), 10)
}

func (renderer *markdownRenderer) pushPrefix(prefix string) {
	renderer.prefixes = append(renderer.prefixes, prefix)
	renderer.linePrefix = strings.Join(renderer.prefixes, "")
}

func (renderer *markdownRenderer) popPrefix() {
	if len(renderer.prefixes) == 0 {
		return
	}
	renderer.prefixes = renderer.prefixes[:len(renderer.prefixes)-1]
	renderer.linePrefix = strings.Join(renderer.prefixes, "")
}

func (renderer *markdownRenderer) write(s string) {
	if s == "" {
		return
	}
	renderer.output.WriteString(s)
	trimmed := strings.TrimRight(s, "\n")
	trailing := len(s) - len(trimmed)
	if trimmed == "" {
		renderer.trailingNewlines += trailing
	} else {
		renderer.trailingNewlines = trailing
	}
}

func (renderer *markdownRenderer) ensureNewline() {
	if renderer.output.Len() > 0 && renderer.trailingNewlines < 1 {
		renderer.write("\n")
	}
}

func (renderer *markdownRenderer) ensureBlankLine() {
	if renderer.output.Len() == 0 {
		return
	}
	for renderer.trailingNewlines < 2 {
		renderer.write("\n")
	}
}

func (renderer *markdownRenderer) nextPrefix() string {
	if renderer.pendingBullet != "" {
		bullet := renderer.pendingBullet
		renderer.pendingBullet = ""
		return bullet
	}
	return renderer.linePrefix
}

// emitLines writes content line by line with prefixes applied.
func (renderer *markdownRenderer) emitLines(content string) {
	for _, line := range strings.Split(content, "\n") {
		renderer.write(renderer.nextPrefix() + line)
		renderer.write("\n")
	}
}

func (renderer *markdownRenderer) flushInline() {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		return
	}
	renderer.emitLines(ansi.Wrap(content, renderer.currentWidth(), " ,.;-+|"))
}

func (renderer *markdownRenderer) styledText(content string) string {
	style := renderer.style().Foreground(renderer.theme.NormalText)
	if renderer.boldCount > 0 {
		style = style.Bold(true)
	}
	if renderer.italicCount > 0 {
		style = style.Italic(true)
	}
	if renderer.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

func (renderer *markdownRenderer) codeLines(lines *text.Segments) string {
	var code strings.Builder
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(renderer.source))
	}
	return strings.TrimRight(code.String(), "\n")
}

// plainText concatenates the text of a node's descendants.
func (renderer *markdownRenderer) plainText(node ast.Node) string {
	var builder strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := child.(type) {
		case *ast.Text:
			builder.Write(typed.Segment.Value(renderer.source))
		case *ast.String:
			builder.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return builder.String()
}

func (renderer *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch typed := node.(type) {
	case *ast.Document:

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			if _, isParagraph := typed.(*ast.Paragraph); isParagraph && !renderer.inTightListItem(node) {
				renderer.ensureBlankLine()
			}
		} else {
			renderer.flushInline()
		}

	case *ast.Heading:
		if entering {
			renderer.ensureBlankLine()
			return ast.WalkContinue, nil
		}
		content := ansi.Strip(renderer.inline.String())
		renderer.inline.Reset()
		style := renderer.style().Bold(true).Foreground(renderer.theme.HeaderForeground)
		if typed.Level == 1 {
			style = style.Underline(true)
		} else if typed.Level > 2 {
			style = style.Foreground(renderer.theme.NormalText)
		}
		renderer.emitLines(ansi.Wrap(style.Render(content), renderer.currentWidth(), " ,.;-+|"))
		renderer.ensureBlankLine()

	case *ast.Blockquote:
		if entering {
			renderer.ensureBlankLine()
			renderer.pushPrefix(renderer.style().Foreground(renderer.theme.BorderColor).Render("│ "))
		} else {
			renderer.popPrefix()
			renderer.ensureBlankLine()
		}

	case *ast.List:
		if entering {
			if len(renderer.lists) == 0 {
				renderer.ensureBlankLine()
			}
			renderer.lists = append(renderer.lists, listState{ordered: typed.IsOrdered(), counter: typed.Start})
		} else {
			renderer.lists = renderer.lists[:len(renderer.lists)-1]
			if len(renderer.lists) == 0 {
				renderer.ensureBlankLine()
			}
		}

	case *ast.ListItem:
		if entering {
			renderer.ensureNewline()
			state := &renderer.lists[len(renderer.lists)-1]
			bullet := "• "
			if state.ordered {
				bullet = fmt.Sprintf("%d. ", state.counter)
				state.counter++
			}
			renderer.pendingBullet = renderer.linePrefix +
				renderer.style().Foreground(renderer.theme.FaintText).Render(bullet)
			renderer.pushPrefix(strings.Repeat(" ", ansi.StringWidth(bullet)))
		} else {
			renderer.pendingBullet = ""
			renderer.popPrefix()
		}

	case *ast.FencedCodeBlock:
		if entering {
			code := renderer.codeLines(typed.Lines())
			highlighted := highlightCode(code, string(typed.Language(renderer.source)))
			if highlighted == "" {
				highlighted = renderer.style().Foreground(renderer.theme.FaintText).Render(code)
			}
			renderer.ensureBlankLine()
			renderer.emitLines(strings.TrimRight(highlighted, "\n"))
			renderer.ensureBlankLine()
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			renderer.ensureBlankLine()
			faint := renderer.style().Foreground(renderer.theme.FaintText)
			for _, line := range strings.Split(renderer.codeLines(typed.Lines()), "\n") {
				renderer.emitLines(faint.Render(line))
			}
			renderer.ensureBlankLine()
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			renderer.ensureBlankLine()
			rule := strings.Repeat("─", renderer.currentWidth())
			renderer.emitLines(renderer.style().Foreground(renderer.theme.BorderColor).Render(rule))
			renderer.ensureBlankLine()
		}

	case *ast.HTMLBlock:
		if entering {
			renderer.ensureBlankLine()
			renderer.emitLines(renderer.style().Foreground(renderer.theme.FaintText).Render(renderer.codeLines(typed.Lines())))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			renderer.inline.WriteString(renderer.styledText(string(typed.Segment.Value(renderer.source))))
			switch {
			case typed.HardLineBreak():
				renderer.inline.WriteString("\n")
			case typed.SoftLineBreak():
				renderer.inline.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			renderer.inline.WriteString(renderer.styledText(string(typed.Value)))
		}

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if typed.Level >= 2 {
			renderer.boldCount += delta
		} else {
			renderer.italicCount += delta
		}

	case *extast.Strikethrough:
		if entering {
			renderer.strikethroughCount++
		} else {
			renderer.strikethroughCount--
		}

	case *ast.CodeSpan:
		if entering {
			style := renderer.style().Foreground(renderer.theme.AccentColor)
			renderer.inline.WriteString(style.Render(renderer.plainText(typed)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if entering {
			label := renderer.plainText(typed)
			style := renderer.style().Foreground(renderer.theme.LinkForeground).Underline(true)
			renderer.inline.WriteString(style.Render(label))
			if destination := string(typed.Destination); destination != "" && destination != label {
				renderer.inline.WriteString(renderer.style().Foreground(renderer.theme.FaintText).Render(" (" + destination + ")"))
			}
		}
		return ast.WalkSkipChildren, nil

	case *ast.AutoLink:
		if entering {
			style := renderer.style().Foreground(renderer.theme.LinkForeground).Underline(true)
			renderer.inline.WriteString(style.Render(string(typed.URL(renderer.source))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Image:
		if entering {
			alt := renderer.plainText(typed)
			renderer.inline.WriteString(renderer.style().Foreground(renderer.theme.FaintText).Render("[image: " + alt + "]"))
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *extast.TaskCheckBox:
		if entering {
			box := "[ ] "
			if typed.IsChecked {
				box = "[x] "
			}
			renderer.inline.WriteString(renderer.styledText(box))
		}

	case *extast.Table:
		if entering {
			renderer.renderTable(typed)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// inTightListItem reports whether a paragraph sits directly in an
// item of a tight list, where no blank line separates items.
func (renderer *markdownRenderer) inTightListItem(node ast.Node) bool {
	item, ok := node.Parent().(*ast.ListItem)
	if !ok {
		return false
	}
	list, ok := item.Parent().(*ast.List)
	return ok && list.IsTight
}

// renderTable lays a GFM table out in padded columns. Cells are
// rendered as plain text.
func (renderer *markdownRenderer) renderTable(table *extast.Table) {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(renderer.plainText(cell)))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row))
	}
	widths := make([]int, columns)
	for _, row := range rows {
		for index, cell := range row {
			widths[index] = max(widths[index], ansi.StringWidth(cell))
		}
	}

	border := renderer.style().Foreground(renderer.theme.BorderColor)
	header := renderer.style().Bold(true).Foreground(renderer.theme.HeaderForeground)
	body := renderer.style().Foreground(renderer.theme.NormalText)

	renderer.ensureBlankLine()
	for rowIndex, row := range rows {
		var line strings.Builder
		for index := 0; index < columns; index++ {
			cell := ""
			if index < len(row) {
				cell = row[index]
			}
			padded := cell + strings.Repeat(" ", widths[index]-ansi.StringWidth(cell))
			if index > 0 {
				line.WriteString(border.Render(" │ "))
			}
			if rowIndex == 0 {
				line.WriteString(header.Render(padded))
			} else {
				line.WriteString(body.Render(padded))
			}
		}
		renderer.emitLines(ansi.Truncate(line.String(), renderer.currentWidth(), "…"))
		if rowIndex == 0 {
			var rule []string
			for _, width := range widths {
				rule = append(rule, strings.Repeat("─", width))
			}
			renderer.emitLines(border.Render(strings.Join(rule, "─┼─")))
		}
	}
	renderer.ensureBlankLine()
}
