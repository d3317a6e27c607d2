// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logNoticeMsg delivers a slog record to the model for display as a
// status-bar notice. stderr is unusable while the alt screen is
// active, so this is how background warnings (codec failures, carrier
// trouble) reach the user.
type logNoticeMsg struct {
	Summary string
	Level   slog.Level
}

// LogHandler is a slog.Handler that routes records at or above its
// level into the bubbletea program. Records arriving before
// SetProgram are dropped. Handlers derived via WithAttrs/WithGroup
// share the program pointer, so one SetProgram covers them all.
type LogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
}

// NewLogHandler creates a handler delivering records at or above
// level.
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram enables delivery. Safe to call from any goroutine.
func (h *LogHandler) SetProgram(program *tea.Program) {
	h.program.Store(program)
}

// Enabled reports interest in records at level.
func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats the record as a one-line summary and sends it to the
// program.
func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	program := h.program.Load()
	if program == nil {
		return nil
	}

	summary := record.Message
	appendAttr := func(attr slog.Attr) bool {
		summary += fmt.Sprintf(" %s=%s", attr.Key, attr.Value)
		return true
	}
	for _, attr := range h.attrs {
		appendAttr(attr)
	}
	record.Attrs(appendAttr)

	program.Send(logNoticeMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs returns a derived handler carrying extra attributes. The
// program pointer is shared.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)
	return &LogHandler{level: h.level, program: h.program, attrs: combined}
}

// WithGroup returns the handler unchanged: status-bar notices are
// one-liners and group prefixes add noise, not information.
func (h *LogHandler) WithGroup(string) slog.Handler {
	return h
}
