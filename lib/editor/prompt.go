// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragpad/fragpad/lib/theme"
)

// promptAction is the outcome of one prompt key event.
type promptAction int

const (
	promptContinue promptAction = iota
	promptCancel
	promptSubmit
)

// prompt is the one-line transcribe input: the user types (or pastes)
// an audio file path and enter hands it to the transcriber.
type prompt struct {
	input []rune
}

// Value returns the entered path, trimmed.
func (p *prompt) Value() string {
	return strings.TrimSpace(string(p.input))
}

// HandleKey processes one key event.
func (p *prompt) HandleKey(message tea.KeyMsg) promptAction {
	switch message.Type {
	case tea.KeyEscape:
		return promptCancel
	case tea.KeyEnter:
		if p.Value() == "" {
			return promptContinue
		}
		return promptSubmit
	case tea.KeyBackspace:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		if message.Type == tea.KeySpace {
			p.input = append(p.input, ' ')
		} else {
			p.input = append(p.input, message.Runes...)
		}
	}
	return promptContinue
}

// View renders the prompt pane.
func (p *prompt) View(palette theme.Theme) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(palette.Heading)
	normal := lipgloss.NewStyle().Foreground(palette.Text)
	faint := lipgloss.NewStyle().Foreground(palette.Faint)

	var view strings.Builder
	view.WriteString(titleStyle.Render("Transcribe audio file"))
	view.WriteString("\n\n")
	view.WriteString(normal.Render("path: "+string(p.input)) +
		lipgloss.NewStyle().Foreground(palette.Cursor).Render("▌"))
	view.WriteString("\n\n")
	view.WriteString(faint.Render("enter transcribe and append · esc cancel"))
	return view.String()
}
