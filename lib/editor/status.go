// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// statusView renders the two bottom rows: the status bar and beneath
// it the help line (or the current notice, which takes precedence).
func (m *Model) statusView() string {
	bar := lipgloss.NewStyle().
		Background(m.palette.StatusBar).
		Foreground(m.palette.StatusText)

	stats := m.Document().Stats()
	row, column := m.buffer.CursorPosition()
	left := fmt.Sprintf(" %s · %dL %dW %dC · %d:%d ",
		m.mode, stats.Lines, stats.Words, stats.Chars, row+1, column+1)

	badge := lipgloss.NewStyle().
		Background(m.palette.StatusBar).
		Foreground(m.palette.BandColor(m.last.Budget.Band)).
		Render(fmt.Sprintf(" %d%% %s ", m.last.Budget.Percent(), m.last.Budget.Band))

	pending := ""
	if m.pub.Pending() {
		pending = " ⋯ "
	}

	right := badge + bar.Render(pending)

	// The link fills whatever room remains between the stats and the
	// budget badge.
	room := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	link := ""
	if room > 4 {
		link = ansi.Truncate(m.last.URL, room, "…")
	}
	linkStyle := lipgloss.NewStyle().
		Background(m.palette.StatusBar).
		Foreground(m.palette.Link)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(link) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	status := bar.Render(left) + linkStyle.Render(link) + bar.Render(strings.Repeat(" ", gap)) + right

	return status + "\n" + m.bottomLine()
}

// bottomLine shows, by priority: the frozen-link warning (persists
// while the budget stays exceeded), the transient notice, or the key
// help.
func (m *Model) bottomLine() string {
	if m.last.Suppressed {
		return lipgloss.NewStyle().
			Foreground(m.palette.WarnText).
			Render(" document exceeds the URL budget — link frozen at last fitting state")
	}
	if m.notice != "" {
		color := m.palette.NoticeText
		if m.noticeIsWarn {
			color = m.palette.WarnText
		}
		return lipgloss.NewStyle().Foreground(color).Render(" " + m.notice)
	}

	help := lipgloss.NewStyle().Foreground(m.palette.Help)
	parts := make([]string, 0, 8)
	for _, binding := range m.keys.Help() {
		parts = append(parts, binding.Help().Key+" "+binding.Help().Desc)
	}
	line := " " + strings.Join(parts, "  ")
	if m.width > 0 {
		line = ansi.Truncate(line, m.width, "…")
	}
	return help.Render(line)
}
