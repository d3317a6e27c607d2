// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"strings"
	"unicode/utf8"
)

// Mode selects how a document is presented when opened: the editor
// pane, the rendered preview pane, or both side by side.
type Mode int

const (
	// ModeEdit shows only the editor. This is the default mode and
	// the mode assigned to documents whose mode cannot be determined.
	ModeEdit Mode = iota
	// ModeSplit shows the editor and the rendered preview together.
	ModeSplit
	// ModePreview shows only the rendered preview.
	ModePreview
)

// Wire names are protocol constants. They appear inside encoded
// fragment tokens, so changing them breaks every link already shared.
// The names predate the current pane layout ("live" was a live
// side-by-side preview, "view" a read-only view), which is why they
// do not match the Go constant names.
const (
	wireEdit    = "edit"
	wireSplit   = "live"
	wirePreview = "view"
)

// String returns the human-facing name of the mode, as shown in the
// status bar and accepted by the --mode flag.
func (m Mode) String() string {
	switch m {
	case ModeSplit:
		return "split"
	case ModePreview:
		return "preview"
	default:
		return "edit"
	}
}

// WireName returns the name used for this mode inside encoded tokens.
func (m Mode) WireName() string {
	switch m {
	case ModeSplit:
		return wireSplit
	case ModePreview:
		return wirePreview
	default:
		return wireEdit
	}
}

// ModeFromWire maps a wire name to its mode. Unrecognized names
// (including the empty string) report ok=false; callers fall back to
// ModeEdit rather than failing, since mode is never worth losing a
// document over.
func ModeFromWire(name string) (mode Mode, ok bool) {
	switch name {
	case wireEdit:
		return ModeEdit, true
	case wireSplit:
		return ModeSplit, true
	case wirePreview:
		return ModePreview, true
	}
	return ModeEdit, false
}

// ParseMode maps a human-facing mode name ("edit", "split",
// "preview") to its mode. Used for flag and config parsing.
func ParseMode(name string) (mode Mode, ok bool) {
	switch name {
	case "edit":
		return ModeEdit, true
	case "split":
		return ModeSplit, true
	case "preview":
		return ModePreview, true
	}
	return ModeEdit, false
}

// Next returns the mode after m in the edit, split, preview cycle.
// The editor binds this to a single key so the user can flip through
// all three layouts.
func (m Mode) Next() Mode {
	switch m {
	case ModeEdit:
		return ModeSplit
	case ModeSplit:
		return ModePreview
	default:
		return ModeEdit
	}
}

// Document is the unit of editing and sharing: markdown text plus the
// mode it should open in. Documents are compared by value; two
// documents with the same content and mode are the same document.
type Document struct {
	Content string
	Mode    Mode
}

// Empty returns the canonical empty document: no content, edit mode.
func Empty() Document {
	return Document{}
}

// IsEmpty reports whether d is the canonical empty document.
func (d Document) IsEmpty() bool {
	return d == Document{}
}

// Stats holds counts derived from document content for the status
// bar. Chars counts Unicode code points, not bytes, so multi-byte
// characters count once.
type Stats struct {
	Lines int
	Words int
	Chars int
}

// Stats computes line, word, and character counts for the document.
// An empty document has one (empty) line, zero words, zero
// characters. Words are maximal runs of non-whitespace, the same
// split strings.Fields uses.
func (d Document) Stats() Stats {
	return Stats{
		Lines: strings.Count(d.Content, "\n") + 1,
		Words: len(strings.Fields(d.Content)),
		Chars: utf8.RuneCountInString(d.Content),
	}
}
