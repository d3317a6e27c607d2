// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at the given time. Time moves only
// when Advance is called; every After, AfterFunc, and Sleep registers
// a pending timer that fires when the clock passes its deadline.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.registered = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline
// order. Calling Advance or Sleep from inside such a callback
// deadlocks; callbacks that need to re-arm a timer (a debounce
// trailing edge scheduling follow-up work) may call AfterFunc, and
// the new timer fires within the same Advance if its deadline is
// already due.
type FakeClock struct {
	mu         sync.Mutex
	current    time.Time
	pending    []*pendingTimer
	registered *sync.Cond
}

type pendingTimer struct {
	deadline time.Time

	// Exactly one of channel and callback is set: channel for After
	// and Sleep, callback for AfterFunc.
	channel  chan time.Time
	callback func()

	// stopped marks a timer cancelled via Timer.Stop; fired marks a
	// timer that has already run. Both states are revivable through
	// Timer.Reset, matching time.Timer semantics for AfterFunc.
	stopped bool
	fired   bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock passes the
// deadline. A non-positive duration delivers immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.pending = append(c.pending, &pendingTimer{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	c.registered.Broadcast()
	return channel
}

// AfterFunc schedules f to run when the clock passes the deadline. A
// non-positive duration runs f synchronously before returning.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := &pendingTimer{callback: f}
	if d <= 0 {
		timer.fired = true
		f()
	} else {
		c.mu.Lock()
		timer.deadline = c.current.Add(d)
		c.pending = append(c.pending, timer)
		c.registered.Broadcast()
		c.mu.Unlock()
	}
	return &Timer{
		stop:  c.stopTimer(timer),
		reset: c.resetTimer(timer),
	}
}

func (c *FakeClock) stopTimer(timer *pendingTimer) func() bool {
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if timer.stopped || timer.fired {
			return false
		}
		timer.stopped = true
		return true
	}
}

// resetTimer builds the Reset implementation for a timer: revive it
// with a fresh deadline, re-registering if it already fired or was
// stopped and collected.
func (c *FakeClock) resetTimer(timer *pendingTimer) func(time.Duration) bool {
	return func(d time.Duration) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		wasPending := !timer.stopped && !timer.fired
		timer.stopped = false
		timer.fired = false
		timer.deadline = c.current.Add(d)
		// A stopped timer stays in the pending list until the next
		// Advance collects it, so guard against a duplicate entry.
		if !slices.Contains(c.pending, timer) {
			c.pending = append(c.pending, timer)
			c.registered.Broadcast()
		}
		return wasPending
	}
}

// Sleep blocks the calling goroutine until the clock advances past
// the deadline. A non-positive duration returns immediately.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-c.After(d)
}

// Advance moves the clock forward by d and fires every pending timer
// whose deadline falls within the new time, in deadline order.
// Channel deliveries are non-blocking; callbacks run synchronously in
// the calling goroutine. Callbacks may register new timers, which
// also fire during this Advance if already due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		due := c.takeDue(target)
		if len(due) == 0 {
			return
		}
		slices.SortFunc(due, func(a, b *pendingTimer) int {
			return a.deadline.Compare(b.deadline)
		})
		for _, timer := range due {
			if timer.callback != nil {
				timer.callback()
				continue
			}
			select {
			case timer.channel <- target:
			default:
			}
		}
	}
}

// takeDue removes and returns the timers due at target, marking them
// fired. Stopped timers are dropped from the pending list.
func (c *FakeClock) takeDue(target time.Time) []*pendingTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due, remaining []*pendingTimer
	for _, timer := range c.pending {
		switch {
		case timer.stopped:
			// Dropped.
		case !timer.deadline.After(target):
			timer.fired = true
			due = append(due, timer)
		default:
			remaining = append(remaining, timer)
		}
	}
	c.pending = remaining
	return due
}

// WaitForTimers blocks until at least n timers are pending. It closes
// the race between a goroutine registering a timer and the test
// advancing the clock past its deadline.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.registered.Wait()
	}
}

// PendingCount returns the number of pending (not stopped, not yet
// fired) timers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, timer := range c.pending {
		if !timer.stopped {
			count++
		}
	}
	return count
}
