// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package debounce coalesces bursts of triggers into a single
// trailing-edge call. The editor triggers on every keystroke; the
// publisher only wants the document as it stands once typing pauses.
//
// Semantics are latest-wins: each Trigger replaces the pending
// function and restarts the quiet-period timer, so when the window
// finally elapses only the most recent function runs. Intermediate
// states are never observed by the callback.
package debounce

import (
	"sync"
	"time"

	"github.com/fragpad/fragpad/lib/clock"
)

// Debouncer coalesces Trigger calls. Safe for concurrent use. The
// pending function runs on the clock's timer goroutine (or the
// caller's goroutine for Flush), so it must be safe to call from
// there.
type Debouncer struct {
	clk    clock.Clock
	window time.Duration

	mu      sync.Mutex
	timer   *clock.Timer
	pending func()

	// generation guards against a stale timer firing after a newer
	// Trigger replaced it. Each Trigger (and each Flush/Stop)
	// advances the generation; a firing timer compares the
	// generation it was created under against the current one.
	generation uint64
}

// New creates a debouncer with the given quiet window. A
// non-positive window disables coalescing: Trigger runs its function
// synchronously.
func New(clk clock.Clock, window time.Duration) *Debouncer {
	return &Debouncer{clk: clk, window: window}
}

// Trigger schedules fn to run once the quiet window elapses with no
// further triggers. A trigger during the window replaces the pending
// function and restarts the window.
func (d *Debouncer) Trigger(fn func()) {
	if d.window <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	d.generation++
	created := d.generation
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clk.AfterFunc(d.window, func() { d.fire(created) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(created uint64) {
	d.mu.Lock()
	if created != d.generation {
		// A newer trigger replaced this timer. That trigger has its
		// own timer; this one is stale.
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Flush runs the pending function immediately, if there is one, and
// cancels the timer. Used on explicit save and on shutdown so a
// half-elapsed window never swallows the final state.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending trigger without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
}

// Pending reports whether a trigger is waiting for its window to
// elapse. The status bar uses this to show that a publish is queued.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
