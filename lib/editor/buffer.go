// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/fragpad/fragpad/lib/theme"
)

// Buffer is the rune-grid text editor backing the edit pane: a slice
// of lines, a cursor, and a scroll offset. No soft wrap — markdown
// authors see their source exactly as it is, and long lines scroll
// horizontally.
type Buffer struct {
	lines   [][]rune
	cursorY int // line index
	cursorX int // rune offset within the line
	scrollY int // first visible line
	scrollX int // first visible column
}

// NewBuffer creates a buffer holding content with the cursor at the
// start.
func NewBuffer(content string) Buffer {
	buffer := Buffer{}
	buffer.SetContent(content)
	return buffer
}

// SetContent replaces the buffer text and resets the cursor and
// scroll to the origin.
func (b *Buffer) SetContent(content string) {
	raw := strings.Split(content, "\n")
	b.lines = make([][]rune, len(raw))
	for i, line := range raw {
		b.lines[i] = []rune(line)
	}
	b.cursorY, b.cursorX = 0, 0
	b.scrollY, b.scrollX = 0, 0
}

// Content returns the buffer text.
func (b Buffer) Content() string {
	parts := make([]string, len(b.lines))
	for i, line := range b.lines {
		parts[i] = string(line)
	}
	return strings.Join(parts, "\n")
}

// HandleKey applies a key message to the buffer. It reports whether
// the content changed (cursor movement alone does not).
func (b *Buffer) HandleKey(message tea.KeyMsg) bool {
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		runes := message.Runes
		if message.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		for _, character := range runes {
			b.insertRune(character)
		}
		return len(runes) > 0

	case tea.KeyEnter:
		b.splitLine()
		return true

	case tea.KeyTab:
		// Markdown indentation: insert spaces, never a tab rune, so
		// the column math stays trivial.
		b.insertRune(' ')
		b.insertRune(' ')
		return true

	case tea.KeyBackspace:
		return b.deleteBackward()

	case tea.KeyDelete:
		return b.deleteForward()

	case tea.KeyLeft:
		if b.cursorX > 0 {
			b.cursorX--
		} else if b.cursorY > 0 {
			b.cursorY--
			b.cursorX = len(b.lines[b.cursorY])
		}

	case tea.KeyRight:
		if b.cursorX < len(b.lines[b.cursorY]) {
			b.cursorX++
		} else if b.cursorY < len(b.lines)-1 {
			b.cursorY++
			b.cursorX = 0
		}

	case tea.KeyUp:
		b.moveCursorVertically(-1)

	case tea.KeyDown:
		b.moveCursorVertically(1)

	case tea.KeyHome:
		b.cursorX = 0

	case tea.KeyEnd:
		b.cursorX = len(b.lines[b.cursorY])

	case tea.KeyPgUp:
		b.moveCursorVertically(-pageStride)

	case tea.KeyPgDown:
		b.moveCursorVertically(pageStride)
	}
	return false
}

// pageStride is how many lines a page key moves the cursor. The view
// follows the cursor, so this doubles as the scroll step.
const pageStride = 20

func (b *Buffer) moveCursorVertically(delta int) {
	b.cursorY += delta
	if b.cursorY < 0 {
		b.cursorY = 0
	}
	if b.cursorY > len(b.lines)-1 {
		b.cursorY = len(b.lines) - 1
	}
	if b.cursorX > len(b.lines[b.cursorY]) {
		b.cursorX = len(b.lines[b.cursorY])
	}
}

func (b *Buffer) insertRune(character rune) {
	line := b.lines[b.cursorY]
	updated := make([]rune, len(line)+1)
	copy(updated, line[:b.cursorX])
	updated[b.cursorX] = character
	copy(updated[b.cursorX+1:], line[b.cursorX:])
	b.lines[b.cursorY] = updated
	b.cursorX++
}

// splitLine breaks the current line at the cursor, moving the
// remainder to a new line below.
func (b *Buffer) splitLine() {
	line := b.lines[b.cursorY]
	before := make([]rune, b.cursorX)
	copy(before, line[:b.cursorX])
	after := make([]rune, len(line)-b.cursorX)
	copy(after, line[b.cursorX:])

	b.lines[b.cursorY] = before
	updated := make([][]rune, len(b.lines)+1)
	copy(updated, b.lines[:b.cursorY+1])
	updated[b.cursorY+1] = after
	copy(updated[b.cursorY+2:], b.lines[b.cursorY+1:])
	b.lines = updated
	b.cursorY++
	b.cursorX = 0
}

func (b *Buffer) deleteBackward() bool {
	if b.cursorX > 0 {
		line := b.lines[b.cursorY]
		b.lines[b.cursorY] = append(line[:b.cursorX-1], line[b.cursorX:]...)
		b.cursorX--
		return true
	}
	if b.cursorY > 0 {
		// Merge into the previous line.
		previous := b.lines[b.cursorY-1]
		b.cursorX = len(previous)
		b.lines[b.cursorY-1] = append(previous, b.lines[b.cursorY]...)
		b.lines = append(b.lines[:b.cursorY], b.lines[b.cursorY+1:]...)
		b.cursorY--
		return true
	}
	return false
}

func (b *Buffer) deleteForward() bool {
	line := b.lines[b.cursorY]
	if b.cursorX < len(line) {
		b.lines[b.cursorY] = append(line[:b.cursorX], line[b.cursorX+1:]...)
		return true
	}
	if b.cursorY < len(b.lines)-1 {
		// Merge the next line up.
		b.lines[b.cursorY] = append(line, b.lines[b.cursorY+1]...)
		b.lines = append(b.lines[:b.cursorY+1], b.lines[b.cursorY+2:]...)
		return true
	}
	return false
}

// CursorPosition returns the cursor's line and column (rune offsets),
// for the status bar.
func (b Buffer) CursorPosition() (line, column int) {
	return b.cursorY, b.cursorX
}

// View renders the visible window of the buffer at the given size.
// The scroll offsets follow the cursor; the cursor cell is drawn
// inverted when focused.
func (b *Buffer) View(width, height int, palette theme.Theme, focused bool) string {
	if width < 1 || height < 1 {
		return ""
	}
	b.followCursor(width, height)

	textStyle := lipgloss.NewStyle().Foreground(palette.Text)
	cursorStyle := lipgloss.NewStyle().
		Foreground(palette.SelectionBar).
		Background(palette.Cursor)

	var view strings.Builder
	for row := 0; row < height; row++ {
		if row > 0 {
			view.WriteString("\n")
		}
		lineIndex := b.scrollY + row
		if lineIndex >= len(b.lines) {
			continue
		}
		line := b.lines[lineIndex]

		// Visible slice after horizontal scroll.
		start := b.scrollX
		if start > len(line) {
			start = len(line)
		}
		end := start + width
		if end > len(line) {
			end = len(line)
		}
		visible := line[start:end]

		if focused && lineIndex == b.cursorY {
			cursorColumn := b.cursorX - b.scrollX
			before := string(visible[:min(cursorColumn, len(visible))])
			var at string
			var after string
			if cursorColumn < len(visible) {
				at = string(visible[cursorColumn])
				after = string(visible[cursorColumn+1:])
			} else {
				at = " "
			}
			view.WriteString(textStyle.Render(before))
			view.WriteString(cursorStyle.Render(at))
			view.WriteString(textStyle.Render(after))
			continue
		}
		view.WriteString(textStyle.Render(ansi.Truncate(string(visible), width, "")))
	}
	return view.String()
}

// followCursor adjusts the scroll offsets so the cursor stays inside
// the viewport.
func (b *Buffer) followCursor(width, height int) {
	if b.cursorY < b.scrollY {
		b.scrollY = b.cursorY
	}
	if b.cursorY >= b.scrollY+height {
		b.scrollY = b.cursorY - height + 1
	}
	if b.cursorX < b.scrollX {
		b.scrollX = b.cursorX
	}
	// Keep one column free so the cursor can sit past the line end.
	if b.cursorX >= b.scrollX+width {
		b.scrollX = b.cursorX - width + 1
	}
}
