// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package markdownview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/fragpad/fragpad/lib/theme"
)

// plain renders markdown and strips ANSI styling, leaving the layout
// for assertions.
func plain(t *testing.T, markdown string, width int) string {
	t.Helper()
	return ansi.Strip(Render(markdown, theme.Dark(), width))
}

func TestRenderEmpty(t *testing.T) {
	if got := Render("", theme.Dark(), 80); got != "" {
		t.Errorf("empty input rendered %q", got)
	}
}

func TestParagraphReflow(t *testing.T) {
	// Hard-wrapped source: the two lines are one paragraph and must
	// rejoin before wrapping at the pane width.
	input := "alpha beta gamma\ndelta epsilon"
	got := plain(t, input, 80)
	if strings.Contains(got, "gamma\ndelta") {
		// The soft break became a newline instead of a space.
		t.Errorf("paragraph did not reflow:\n%s", got)
	}
	if !strings.Contains(got, "gamma delta") {
		t.Errorf("expected rejoined paragraph, got:\n%s", got)
	}
}

func TestParagraphWrapsAtWidth(t *testing.T) {
	input := strings.Repeat("word ", 30)
	for _, line := range strings.Split(plain(t, input, 24), "\n") {
		if len(line) > 24 {
			t.Errorf("line exceeds width 24: %q", line)
		}
	}
}

func TestHeadingStandsAlone(t *testing.T) {
	got := plain(t, "# Title\n\nbody text", 80)
	lines := strings.Split(got, "\n")
	if lines[0] != "Title" {
		t.Errorf("first line = %q, want heading text", lines[0])
	}
	if !strings.Contains(got, "body text") {
		t.Errorf("body missing:\n%s", got)
	}
}

func TestUnorderedList(t *testing.T) {
	got := plain(t, "- first\n- second\n", 80)
	if !strings.Contains(got, "- first") || !strings.Contains(got, "- second") {
		t.Errorf("list bullets missing:\n%s", got)
	}
}

func TestOrderedListNumbering(t *testing.T) {
	got := plain(t, "1. one\n2. two\n3. three\n", 80)
	for _, want := range []string{"1. one", "2. two", "3. three"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q:\n%s", want, got)
		}
	}
}

func TestNestedListIndentation(t *testing.T) {
	got := plain(t, "- outer\n  - inner\n", 80)
	if !strings.Contains(got, "- outer") {
		t.Errorf("outer bullet missing:\n%s", got)
	}
	if !strings.Contains(got, "  - inner") {
		t.Errorf("inner bullet not indented under outer:\n%s", got)
	}
}

func TestBlockquotePrefix(t *testing.T) {
	got := plain(t, "> quoted text", 80)
	if !strings.Contains(got, "│ quoted text") {
		t.Errorf("quote bar missing:\n%s", got)
	}
}

func TestFencedCodeBlockPreservesLines(t *testing.T) {
	input := "```\nline one\nline two\n```"
	got := plain(t, input, 80)
	if !strings.Contains(got, "line one\nline two") {
		t.Errorf("code block lines not preserved:\n%s", got)
	}
}

func TestFencedCodeBlockHighlighted(t *testing.T) {
	input := "```go\npackage main\n```"
	// Unstripped output should carry ANSI sequences from chroma.
	got := Render(input, theme.Dark(), 80)
	if !strings.Contains(got, "\x1b[") {
		t.Error("expected ANSI styling in highlighted code block")
	}
	if !strings.Contains(ansi.Strip(got), "package main") {
		t.Error("code text lost in highlighting")
	}
}

func TestTaskList(t *testing.T) {
	got := plain(t, "- [x] done\n- [ ] todo\n", 80)
	if !strings.Contains(got, "[x] done") {
		t.Errorf("checked box missing:\n%s", got)
	}
	if !strings.Contains(got, "[ ] todo") {
		t.Errorf("unchecked box missing:\n%s", got)
	}
}

func TestThematicBreak(t *testing.T) {
	got := plain(t, "above\n\n---\n\nbelow", 40)
	if !strings.Contains(got, strings.Repeat("─", 40)) {
		t.Errorf("rule missing:\n%s", got)
	}
}

func TestLinkShowsDestination(t *testing.T) {
	got := plain(t, "see [the docs](https://example.com/docs)", 80)
	if !strings.Contains(got, "the docs") {
		t.Errorf("link text missing:\n%s", got)
	}
	if !strings.Contains(got, "(https://example.com/docs)") {
		t.Errorf("link destination missing:\n%s", got)
	}
}

func TestTableLayout(t *testing.T) {
	input := "| name | count |\n| --- | ---: |\n| alpha | 1 |\n| beta | 22 |\n"
	got := plain(t, input, 80)
	if !strings.Contains(got, "name") || !strings.Contains(got, "count") {
		t.Errorf("header missing:\n%s", got)
	}
	// Right-aligned number column: 1 sits under the 2 of 22.
	if !strings.Contains(got, "    1") {
		t.Errorf("right alignment not applied:\n%s", got)
	}
}

func TestUnicodeContent(t *testing.T) {
	input := "日本語のテキスト and émojis 🎉"
	got := plain(t, input, 80)
	for _, want := range []string{"日本語のテキスト", "émojis", "🎉"} {
		if !strings.Contains(got, want) {
			t.Errorf("unicode content %q lost:\n%s", want, got)
		}
	}
}

func TestHTMLTagsStripped(t *testing.T) {
	got := plain(t, "before <b>emphasized</b> after", 80)
	if strings.Contains(got, "<b>") {
		t.Errorf("raw HTML tag leaked:\n%s", got)
	}
	if !strings.Contains(got, "emphasized") {
		t.Errorf("tag content lost:\n%s", got)
	}
}
