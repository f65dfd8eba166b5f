// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitorui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/monitor/lib/tui"
)

func TestRenderTerminalMarkdown(t *testing.T) {
	input := strings.Join([]string{
		"# Rollout notes",
		"",
		"Deployed *canary* to the **east** region",
		"with `replicas=3`.",
		"",
		"- first step",
		"- second step",
		"",
		"1. one",
		"2. two",
		"",
		"> quoted",
		"",
		"```go",
		"func main() {}",
		"```",
		"",
		"See [docs](https://example.com/docs).",
	}, "\n")

	output := ansi.Strip(renderTerminalMarkdown(input, tui.DefaultTheme, 80))
	for _, want := range []string{
		"Rollout notes",
		"Deployed canary to the east region with replicas=3.",
		"• first step",
		"• second step",
		"1. one",
		"2. two",
		"│ quoted",
		"func main() {}",
		"docs (https://example.com/docs)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "**") || strings.Contains(output, "```") {
		t.Errorf("markdown syntax leaked into output:\n%s", output)
	}
}

func TestRenderTerminalMarkdownWraps(t *testing.T) {
	input := strings.Repeat("word ", 40)
	output := ansi.Strip(renderTerminalMarkdown(input, tui.DefaultTheme, 30))
	for _, line := range strings.Split(output, "\n") {
		if width := ansi.StringWidth(line); width > 30 {
			t.Errorf("line %q is %d wide, want <= 30", line, width)
		}
	}
}

func TestRenderTerminalMarkdownTable(t *testing.T) {
	input := "| file | size |\n|---|---|\n| run.log | 12 |\n"
	output := ansi.Strip(renderTerminalMarkdown(input, tui.DefaultTheme, 80))
	for _, want := range []string{"file", "size", "run.log", "12", "─┼─"} {
		if !strings.Contains(output, want) {
			t.Errorf("table output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderTerminalMarkdownEmpty(t *testing.T) {
	if output := renderTerminalMarkdown("", tui.DefaultTheme, 80); output != "" {
		t.Errorf("empty input rendered %q", output)
	}
}

func TestRenderFileContent(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    string
	}{
		{"empty", "run.log", "", "(empty file)"},
		{"plain", "run.log", "step 1 ok\nstep 2 ok", "step 2 ok"},
		{"go", "main.go", "package main\n\nfunc main() {}\n", "func main() {}"},
		{"markdown", "README.md", "# Title\n\nbody text", "body text"},
		{"tabs", "data.tsv", "a\tb", "a    b"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			output := ansi.Strip(renderFileContent(test.path, test.content, tui.DefaultTheme, 80))
			if !strings.Contains(output, test.want) {
				t.Errorf("output missing %q:\n%s", test.want, output)
			}
		})
	}
}

func TestHighlightCodeUnknownLanguage(t *testing.T) {
	if got := highlightCode("x", "no-such-language"); got != "" {
		t.Errorf("highlightCode with unknown language = %q, want empty", got)
	}
	if got := highlightCode("x", ""); got != "" {
		t.Errorf("highlightCode without language = %q, want empty", got)
	}
}
