// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package theme defines the color palette for the terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility. Two built-in palettes (dark, light) cover the common
// cases; a JSONC theme file can override individual colors.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fragpad/fragpad/lib/budget"
)

// Theme is the full palette. Fields cover the editor chrome, the
// markdown preview, and the budget indicator bands.
type Theme struct {
	// Text colors.
	Text  lipgloss.Color
	Faint lipgloss.Color

	// Editor chrome.
	Heading      lipgloss.Color // markdown headings and pane titles
	Border       lipgloss.Color
	Help         lipgloss.Color
	Link         lipgloss.Color
	Cursor       lipgloss.Color // editor cursor cell background
	StatusBar    lipgloss.Color // status bar background
	StatusText   lipgloss.Color
	NoticeText   lipgloss.Color // transient status-bar notices
	WarnText     lipgloss.Color // frozen-link and failure notices
	Checked      lipgloss.Color // completed task list boxes
	SelectionBar lipgloss.Color // picker selection background

	// Budget indicator, indexed by band.
	BandLow      lipgloss.Color
	BandModerate lipgloss.Color
	BandHigh     lipgloss.Color
	BandExceeded lipgloss.Color
}

// BandColor returns the indicator color for a budget band. Unknown
// bands render as normal text.
func (t Theme) BandColor(band budget.Band) lipgloss.Color {
	switch band {
	case budget.BandLow:
		return t.BandLow
	case budget.BandModerate:
		return t.BandModerate
	case budget.BandHigh:
		return t.BandHigh
	case budget.BandExceeded:
		return t.BandExceeded
	default:
		return t.Text
	}
}

// Dark is the built-in palette for dark-background terminals (the
// common case for development environments and tmux sessions).
func Dark() Theme {
	return Theme{
		Text:  lipgloss.Color("252"),
		Faint: lipgloss.Color("245"),

		Heading:      lipgloss.Color("255"),
		Border:       lipgloss.Color("240"),
		Help:         lipgloss.Color("241"),
		Link:         lipgloss.Color("75"), // blue
		Cursor:       lipgloss.Color("252"),
		StatusBar:    lipgloss.Color("236"),
		StatusText:   lipgloss.Color("252"),
		NoticeText:   lipgloss.Color("114"), // green
		WarnText:     lipgloss.Color("208"), // orange
		Checked:      lipgloss.Color("114"),
		SelectionBar: lipgloss.Color("236"),

		BandLow:      lipgloss.Color("114"), // green
		BandModerate: lipgloss.Color("220"), // amber
		BandHigh:     lipgloss.Color("208"), // orange
		BandExceeded: lipgloss.Color("196"), // red
	}
}

// Light is the built-in palette for light-background terminals.
func Light() Theme {
	return Theme{
		Text:  lipgloss.Color("235"),
		Faint: lipgloss.Color("243"),

		Heading:      lipgloss.Color("232"),
		Border:       lipgloss.Color("249"),
		Help:         lipgloss.Color("246"),
		Link:         lipgloss.Color("26"), // darker blue for contrast
		Cursor:       lipgloss.Color("235"),
		StatusBar:    lipgloss.Color("253"),
		StatusText:   lipgloss.Color("235"),
		NoticeText:   lipgloss.Color("28"),
		WarnText:     lipgloss.Color("166"),
		Checked:      lipgloss.Color("28"),
		SelectionBar: lipgloss.Color("253"),

		BandLow:      lipgloss.Color("28"),  // green
		BandModerate: lipgloss.Color("136"), // amber
		BandHigh:     lipgloss.Color("166"), // orange
		BandExceeded: lipgloss.Color("160"), // red
	}
}

// Detect picks Dark or Light based on the terminal background.
// Detection failure (no TTY, unknown terminal) falls back to Dark.
func Detect() Theme {
	if termenv.HasDarkBackground() {
		return Dark()
	}
	return Light()
}
