// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor's command keys. Plain characters always
// go to the text buffer, so every command lives on a control chord.
type KeyMap struct {
	CycleMode  key.Binding
	Snapshot   key.Binding
	CopyLink   key.Binding
	History    key.Binding
	Transcribe key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	CycleMode: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "mode"),
	),
	Snapshot: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	CopyLink: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("C-y", "copy link"),
	),
	History: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "history"),
	),
	Transcribe: key.NewBinding(
		key.WithKeys("ctrl+a"),
		key.WithHelp("C-a", "transcribe"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+q"),
		key.WithHelp("C-q", "quit"),
	),
}

// Help returns the help line entries in display order.
func (k KeyMap) Help() []key.Binding {
	return []key.Binding{k.CycleMode, k.Snapshot, k.CopyLink, k.History, k.Transcribe, k.Quit}
}
