// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package editor is the fragpad TUI: a markdown editing surface whose
// document state is continuously published to a share URL. Panes
// follow the document mode (edit, split, preview); the status bar
// shows document stats, the URL budget, and the live link.
package editor

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/history"
	"github.com/fragpad/fragpad/lib/markdownview"
	"github.com/fragpad/fragpad/lib/publisher"
	"github.com/fragpad/fragpad/lib/theme"
	"github.com/fragpad/fragpad/lib/transcribe"
)

// Focus identifies which surface receives keystrokes.
type Focus int

const (
	// FocusBuffer routes keys to the text editor (and commands).
	FocusBuffer Focus = iota
	// FocusPicker routes keys to the history overlay.
	FocusPicker
	// FocusPrompt routes keys to the transcribe path input.
	FocusPrompt
)

// noticeFadeDelay is how long transient status-bar notices stay
// visible.
const noticeFadeDelay = 3 * time.Second

// splitEditorRatio is the edit pane's share of the width in split
// mode.
const splitEditorRatio = 0.5

// publishedMsg delivers a publisher update through the message loop.
type publishedMsg struct {
	update publisher.Update
}

// noticeFadeMsg clears the transient notice.
type noticeFadeMsg struct{}

// transcribeDoneMsg reports an asynchronous transcription.
type transcribeDoneMsg struct {
	doc document.Document
	err error
}

// Notifier bridges the publisher's callback (which exists before the
// tea.Program does) into the message loop. Create it first, hand
// Notify to the publisher config, then call SetProgram once the
// program exists. Updates arriving before SetProgram are dropped;
// the model seeds itself from publisher.Last.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// NewNotifier creates an unconnected notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// SetProgram connects delivery. Safe from any goroutine.
func (n *Notifier) SetProgram(program *tea.Program) {
	n.program.Store(program)
}

// Notify is the publisher callback.
func (n *Notifier) Notify(update publisher.Update) {
	if program := n.program.Load(); program != nil {
		program.Send(publishedMsg{update: update})
	}
}

// Config wires a Model.
type Config struct {
	// Document is the initial state (decoded from the opened link,
	// or empty).
	Document document.Document

	// Publisher drives the edit→URL pipeline. Required.
	Publisher *publisher.Publisher

	// History is the snapshot store. Required.
	History *history.Store

	// HistoryKeep bounds the store after each save; zero disables
	// pruning.
	HistoryKeep int

	// Transcriber appends voice-memo text. Nil disables the
	// transcribe command.
	Transcriber transcribe.Provider

	Theme  theme.Theme
	Keys   KeyMap
	Logger *slog.Logger
}

// Model is the bubbletea model.
type Model struct {
	keys    KeyMap
	palette theme.Theme
	logger  *slog.Logger

	buffer  Buffer
	mode    document.Mode
	preview viewport.Model

	pub         *publisher.Publisher
	store       *history.Store
	historyKeep int
	transcriber transcribe.Provider

	focus  Focus
	picker picker
	prompt prompt

	last publisher.Update

	notice       string
	noticeIsWarn bool

	width  int
	height int
	ready  bool
}

// New creates the model. The initial document is not published here;
// the caller publishes it (PublishNow) before starting the program so
// the URL is live even if the first frame never renders.
func New(cfg Config) *Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Keys.Quit.Keys() == nil {
		cfg.Keys = DefaultKeyMap
	}
	return &Model{
		keys:        cfg.Keys,
		palette:     cfg.Theme,
		logger:      cfg.Logger,
		buffer:      NewBuffer(cfg.Document.Content),
		mode:        cfg.Document.Mode,
		pub:         cfg.Publisher,
		store:       cfg.History,
		historyKeep: cfg.HistoryKeep,
		transcriber: cfg.Transcriber,
		last:        cfg.Publisher.Last(),
	}
}

// Document assembles the current document from the buffer and mode.
func (m *Model) Document() document.Document {
	return document.Document{Content: m.buffer.Content(), Mode: m.mode}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.preview = viewport.New(m.previewWidth(), m.contentHeight())
		m.refreshPreview()
		m.ready = true
		return m, nil

	case publishedMsg:
		m.last = message.update
		return m, nil

	case logNoticeMsg:
		m.notice = message.Summary
		m.noticeIsWarn = message.Level >= slog.LevelWarn
		return m, fadeNotice()

	case noticeFadeMsg:
		m.notice = ""
		return m, nil

	case transcribeDoneMsg:
		return m.finishTranscribe(message)

	case tea.KeyMsg:
		switch m.focus {
		case FocusPicker:
			return m.updatePicker(message)
		case FocusPrompt:
			return m.updatePrompt(message)
		default:
			return m.updateBuffer(message)
		}
	}
	return m, nil
}

func (m *Model) updateBuffer(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		// Final flush: whatever is in the buffer right now is the
		// state the link must carry.
		m.pub.PublishNow(m.Document())
		return m, tea.Quit

	case key.Matches(message, m.keys.CycleMode):
		m.mode = m.mode.Next()
		m.refreshPreview()
		m.pub.DocumentChanged(m.Document())
		return m, nil

	case key.Matches(message, m.keys.Snapshot):
		return m.saveSnapshot()

	case key.Matches(message, m.keys.CopyLink):
		m.setNotice("link copied", false)
		return m, tea.Batch(copyToClipboard(m.last.URL), fadeNotice())

	case key.Matches(message, m.keys.History):
		m.picker = newPicker(m.store.List())
		m.focus = FocusPicker
		return m, nil

	case key.Matches(message, m.keys.Transcribe):
		if m.transcriber == nil {
			m.setNotice("no transcription provider configured", true)
			return m, fadeNotice()
		}
		m.prompt = prompt{}
		m.focus = FocusPrompt
		return m, nil
	}

	// Preview-only mode: navigation keys drive the viewport, there
	// is no cursor to move.
	if m.mode == document.ModePreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(message)
		return m, cmd
	}

	if m.buffer.HandleKey(message) {
		m.refreshPreview()
		m.pub.DocumentChanged(m.Document())
	}
	return m, nil
}

func (m *Model) updatePicker(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.picker.HandleKey(message) {
	case pickerCancel:
		m.focus = FocusBuffer
	case pickerSelect:
		entry, ok := m.picker.Selected()
		m.focus = FocusBuffer
		if !ok {
			break
		}
		// Publish the outgoing state first: the buffer being
		// replaced must stay reachable through the previous URL.
		m.pub.PublishNow(m.Document())
		doc, err := m.store.Load(entry.Hash)
		if err != nil {
			m.logger.Warn("loading snapshot failed", "hash", entry.Hash, "error", err)
			m.setNotice("snapshot load failed", true)
			return m, fadeNotice()
		}
		m.buffer.SetContent(doc.Content)
		m.mode = doc.Mode
		m.refreshPreview()
		m.pub.PublishNow(m.Document())
		m.setNotice("snapshot loaded", false)
		return m, fadeNotice()
	}
	return m, nil
}

func (m *Model) updatePrompt(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.prompt.HandleKey(message) {
	case promptCancel:
		m.focus = FocusBuffer
	case promptSubmit:
		path := m.prompt.Value()
		m.focus = FocusBuffer
		m.setNotice("transcribing "+path+"…", false)
		return m, transcribeFile(m.transcriber, m.Document(), path)
	}
	return m, nil
}

// transcribeFile runs the transcription off the UI goroutine.
func transcribeFile(provider transcribe.Provider, doc document.Document, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return transcribeDoneMsg{err: fmt.Errorf("opening %s: %w", path, err)}
		}
		defer file.Close()

		updated, err := transcribe.Append(context.Background(), provider, doc,
			transcribe.Input{Audio: file, Filename: file.Name()})
		return transcribeDoneMsg{doc: updated, err: err}
	}
}

func (m *Model) finishTranscribe(message transcribeDoneMsg) (tea.Model, tea.Cmd) {
	if message.err != nil {
		m.logger.Warn("transcription failed", "error", message.err)
		m.setNotice("transcription failed", true)
		return m, fadeNotice()
	}
	// The user may have kept typing while the request ran; the
	// transcript was built against the submit-time document, so only
	// the appended suffix is merged onto the current buffer.
	current := m.Document()
	m.buffer.SetContent(current.Content + strings.TrimPrefix(message.doc.Content, current.Content))
	m.refreshPreview()
	m.pub.DocumentChanged(m.Document())
	m.setNotice("transcript appended", false)
	return m, fadeNotice()
}

func (m *Model) saveSnapshot() (tea.Model, tea.Cmd) {
	doc := m.Document()
	m.pub.PublishNow(doc)
	entry, err := m.store.Save(doc)
	if err != nil {
		m.logger.Warn("snapshot save failed", "error", err)
		m.setNotice("snapshot failed", true)
		return m, fadeNotice()
	}
	if m.historyKeep > 0 {
		if err := m.store.Prune(m.historyKeep); err != nil {
			m.logger.Warn("history prune failed", "error", err)
		}
	}
	m.setNotice("saved "+entry.Title, false)
	return m, fadeNotice()
}

func (m *Model) setNotice(text string, warn bool) {
	m.notice = text
	m.noticeIsWarn = warn
}

func fadeNotice() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

// copyToClipboard writes text to the system clipboard via OSC 52,
// writing straight to /dev/tty so it bypasses bubbletea's managed
// output (the sequence has no screen effect). BEL terminates the OSC
// because the single byte survives layered terminals where the
// two-byte ST can be mangled. Under tmux the sequence is sent both
// through DCS passthrough and directly, covering both of tmux's
// clipboard forwarding modes; a duplicate set is harmless.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			return nil
		}
		defer tty.Close()

		encoded := base64.StdEncoding.EncodeToString([]byte(text))
		osc52 := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)

		inTmux := os.Getenv("TMUX") != "" ||
			strings.HasPrefix(os.Getenv("TERM"), "tmux") ||
			strings.HasPrefix(os.Getenv("TERM"), "screen")
		if inTmux {
			fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", osc52)
		}
		tty.WriteString(osc52)
		return nil
	}
}

// --- layout ---

func (m *Model) contentHeight() int {
	// Status line plus help/notice line.
	height := m.height - 2
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) editorWidth() int {
	if m.mode == document.ModeSplit {
		return int(float64(m.width) * splitEditorRatio)
	}
	return m.width
}

func (m *Model) previewWidth() int {
	switch m.mode {
	case document.ModeSplit:
		// Editor, divider column, preview.
		return m.width - m.editorWidth() - 1
	case document.ModePreview:
		return m.width
	default:
		return m.width
	}
}

func (m *Model) refreshPreview() {
	if m.preview.Width != m.previewWidth() || m.preview.Height != m.contentHeight() {
		m.preview.Width = m.previewWidth()
		m.preview.Height = m.contentHeight()
	}
	if m.mode == document.ModeEdit {
		return
	}
	m.preview.SetContent(markdownview.Render(m.Document().Body(), m.palette, m.previewWidth()))
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}

	var content string
	switch m.focus {
	case FocusPicker:
		content = m.fillHeight(m.picker.View(m.width, m.contentHeight(), m.palette))
	case FocusPrompt:
		content = m.fillHeight(m.prompt.View(m.palette))
	default:
		content = m.paneView()
	}

	return content + "\n" + m.statusView()
}

func (m *Model) paneView() string {
	switch m.mode {
	case document.ModePreview:
		return m.fillHeight(m.preview.View())
	case document.ModeSplit:
		divider := lipgloss.NewStyle().
			Foreground(m.palette.Border).
			Render(strings.TrimRight(strings.Repeat("│\n", m.contentHeight()), "\n"))
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.buffer.View(m.editorWidth(), m.contentHeight(), m.palette, true),
			divider,
			m.preview.View(),
		)
	default:
		return m.fillHeight(m.buffer.View(m.width, m.contentHeight(), m.palette, true))
	}
}

// fillHeight pads content to the content height so the status bar
// stays pinned to the bottom row.
func (m *Model) fillHeight(content string) string {
	lines := strings.Count(content, "\n") + 1
	if missing := m.contentHeight() - lines; missing > 0 {
		content += strings.Repeat("\n", missing)
	}
	return content
}
