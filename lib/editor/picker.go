// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/fragpad/fragpad/lib/fuzzy"
	"github.com/fragpad/fragpad/lib/history"
	"github.com/fragpad/fragpad/lib/theme"
)

// pickerAction is the outcome of one picker key event.
type pickerAction int

const (
	pickerContinue pickerAction = iota
	pickerCancel
	pickerSelect
)

// picker is the history overlay: a fuzzy-filtered snapshot list. The
// filter matches against title and saved-at text; an empty filter
// shows everything, newest first.
type picker struct {
	entries  []history.Entry
	filter   []rune
	matches  []pickerMatch
	selected int
	slab     *util.Slab
}

type pickerMatch struct {
	entry history.Entry
	score int
}

func newPicker(entries []history.Entry) picker {
	p := picker{
		entries: entries,
		slab:    util.MakeSlab(100*1024, 2048),
	}
	p.refilter()
	return p
}

// label is the text the filter matches and the list displays.
func pickerLabel(entry history.Entry) string {
	return fmt.Sprintf("%s  %s  %s",
		entry.SavedAt.Local().Format("2006-01-02 15:04"),
		entry.Title,
		entry.Mode,
	)
}

func (p *picker) refilter() {
	p.matches = p.matches[:0]
	for _, entry := range p.entries {
		if len(p.filter) == 0 {
			p.matches = append(p.matches, pickerMatch{entry: entry})
			continue
		}
		result := fuzzy.Match(pickerLabel(entry), p.filter, p.slab)
		if result.Score > 0 {
			p.matches = append(p.matches, pickerMatch{entry: entry, score: result.Score})
		}
	}
	if len(p.filter) > 0 {
		// Stable by score: List() order (newest first) breaks ties.
		for i := 1; i < len(p.matches); i++ {
			for j := i; j > 0 && p.matches[j].score > p.matches[j-1].score; j-- {
				p.matches[j], p.matches[j-1] = p.matches[j-1], p.matches[j]
			}
		}
	}
	if p.selected >= len(p.matches) {
		p.selected = max(len(p.matches)-1, 0)
	}
}

// Selected returns the highlighted entry, if any.
func (p *picker) Selected() (history.Entry, bool) {
	if p.selected < 0 || p.selected >= len(p.matches) {
		return history.Entry{}, false
	}
	return p.matches[p.selected].entry, true
}

// HandleKey processes one key event and reports the resulting action.
func (p *picker) HandleKey(message tea.KeyMsg) pickerAction {
	switch message.Type {
	case tea.KeyEscape:
		return pickerCancel
	case tea.KeyEnter:
		if _, ok := p.Selected(); ok {
			return pickerSelect
		}
		return pickerContinue
	case tea.KeyUp:
		if p.selected > 0 {
			p.selected--
		}
	case tea.KeyDown:
		if p.selected < len(p.matches)-1 {
			p.selected++
		}
	case tea.KeyBackspace:
		if len(p.filter) > 0 {
			p.filter = p.filter[:len(p.filter)-1]
			p.refilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		runes := message.Runes
		if message.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		p.filter = append(p.filter, runes...)
		p.refilter()
	}
	return pickerContinue
}

// View renders the picker pane.
func (p *picker) View(width, height int, palette theme.Theme) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(palette.Heading)
	faint := lipgloss.NewStyle().Foreground(palette.Faint)
	normal := lipgloss.NewStyle().Foreground(palette.Text)
	selected := lipgloss.NewStyle().
		Foreground(palette.StatusText).
		Background(palette.SelectionBar)

	var view strings.Builder
	view.WriteString(titleStyle.Render("History"))
	view.WriteString("\n")
	view.WriteString(normal.Render("filter: "+string(p.filter)) +
		lipgloss.NewStyle().Foreground(palette.Cursor).Render("▌"))
	view.WriteString("\n\n")

	if len(p.matches) == 0 {
		if len(p.entries) == 0 {
			view.WriteString(faint.Render("no snapshots yet — ctrl+s saves one"))
		} else {
			view.WriteString(faint.Render("no snapshots match the filter"))
		}
		return view.String()
	}

	// Rows available after title, filter line, and spacing.
	rows := height - 4
	if rows < 1 {
		rows = 1
	}
	start := 0
	if p.selected >= rows {
		start = p.selected - rows + 1
	}
	for i := start; i < len(p.matches) && i < start+rows; i++ {
		line := ansi.Truncate(pickerLabel(p.matches[i].entry), width-2, "…")
		if i == p.selected {
			view.WriteString(selected.Render("> " + line))
		} else {
			view.WriteString(normal.Render("  " + line))
		}
		view.WriteString("\n")
	}
	view.WriteString("\n")
	view.WriteString(faint.Render("enter load · esc cancel · type to filter"))
	return view.String()
}
