// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/history"
)

func pickerEntries() []history.Entry {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return []history.Entry{
		{Hash: "aaa", SavedAt: base.Add(2 * time.Hour), Mode: document.ModeEdit, Title: "grocery list"},
		{Hash: "bbb", SavedAt: base.Add(time.Hour), Mode: document.ModeSplit, Title: "release notes"},
		{Hash: "ccc", SavedAt: base, Mode: document.ModePreview, Title: "meeting agenda"},
	}
}

func TestPickerEmptyFilterShowsAll(t *testing.T) {
	p := newPicker(pickerEntries())
	if len(p.matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(p.matches))
	}
	entry, ok := p.Selected()
	if !ok || entry.Hash != "aaa" {
		t.Fatalf("initial selection = %+v ok=%v, want newest entry aaa", entry, ok)
	}
}

func TestPickerFilterNarrows(t *testing.T) {
	p := newPicker(pickerEntries())
	for _, character := range "agenda" {
		p.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{character}})
	}
	if len(p.matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(p.matches))
	}
	entry, ok := p.Selected()
	if !ok || entry.Hash != "ccc" {
		t.Fatalf("selection = %+v ok=%v, want meeting agenda", entry, ok)
	}
}

func TestPickerBackspaceWidensFilter(t *testing.T) {
	p := newPicker(pickerEntries())
	p.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	if len(p.matches) != 0 {
		t.Fatalf("matches with impossible filter = %d, want 0", len(p.matches))
	}
	p.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	if len(p.matches) != 3 {
		t.Fatalf("matches after backspace = %d, want 3", len(p.matches))
	}
}

func TestPickerNavigationAndSelect(t *testing.T) {
	p := newPicker(pickerEntries())
	p.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	p.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	p.HandleKey(tea.KeyMsg{Type: tea.KeyDown}) // clamps at the end
	entry, _ := p.Selected()
	if entry.Hash != "ccc" {
		t.Fatalf("selection = %s, want ccc", entry.Hash)
	}
	if action := p.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}); action != pickerSelect {
		t.Fatalf("enter action = %v, want pickerSelect", action)
	}
	if action := p.HandleKey(tea.KeyMsg{Type: tea.KeyEscape}); action != pickerCancel {
		t.Fatalf("escape action = %v, want pickerCancel", action)
	}
}

func TestPickerEnterOnEmptyList(t *testing.T) {
	p := newPicker(nil)
	if action := p.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}); action != pickerContinue {
		t.Fatalf("enter on empty list = %v, want pickerContinue", action)
	}
}
