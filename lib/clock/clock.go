// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time surface used throughout the codebase. Real()
// backs it with the time package; Fake() gives tests deterministic
// control.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc schedules f to run after d. The returned Timer can
	// cancel the pending call with Stop or push the deadline out with
	// Reset, which is exactly the primitive a debounce window needs.
	// If d <= 0, f runs immediately (in a new goroutine for the real
	// clock, synchronously for the fake).
	AfterFunc(d time.Duration, f func()) *Timer

	// Sleep pauses the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Timer is a scheduled AfterFunc call.
type Timer struct {
	stop  func() bool
	reset func(time.Duration) bool
}

// Stop cancels the pending call. It reports false if the timer
// already fired or was already stopped.
func (t *Timer) Stop() bool { return t.stop() }

// Reset reschedules the timer to fire after d from now, reviving it
// if it had fired or been stopped. It reports whether the timer was
// still pending before the call.
func (t *Timer) Reset(d time.Duration) bool { return t.reset(d) }
