// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so the
// debounce window, snapshot timestamps, and rate limits can be driven
// deterministically in tests.
//
// Anything that would call time.Now, time.After, time.AfterFunc, or
// time.Sleep takes a Clock instead. Production code injects Real();
// tests inject Fake(initial) and move time explicitly:
//
//	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	debouncer := debounce.New(clk, 500*time.Millisecond)
//	// ... trigger work that schedules a timer ...
//	clk.WaitForTimers(1)               // timer is registered
//	clk.Advance(500 * time.Millisecond) // fires it deterministically
//
// WaitForTimers removes the race between a goroutine registering a
// timer and the test advancing past its deadline; tests never sleep
// real time to synchronize.
//
// The interface is deliberately the subset this codebase uses. There
// is no ticker because nothing here runs on a periodic cadence.
package clock
