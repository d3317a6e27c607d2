// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package publisher drives the edit→URL pipeline: document changes
// are debounced, encoded, assessed against the URL budget, and
// written to the fragment carrier. One publisher owns one carrier.
//
// Failures never propagate to the editing surface. An oversized
// document freezes the published URL (the last fitting link stays
// valid); a failed carrier write is logged and retried implicitly by
// the next publish. Editing is never blocked or interrupted.
package publisher

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fragpad/fragpad/lib/budget"
	"github.com/fragpad/fragpad/lib/clock"
	"github.com/fragpad/fragpad/lib/debounce"
	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/fragment"
	"github.com/fragpad/fragpad/lib/shareurl"
)

// DefaultWindow is the debounce quiet period between the last
// keystroke and the publish. Long enough to coalesce a typing burst,
// short enough that the URL is fresh by the time a hand reaches for
// the address bar.
const DefaultWindow = 500 * time.Millisecond

// Update describes the published state after a pipeline run. Token
// and URL are what is actually published: when Suppressed is true
// they are the frozen previous values, while Budget always assesses
// the latest document so the status bar can show how far over the
// ceiling the user is.
type Update struct {
	Token      fragment.Token
	URL        string
	Budget     budget.Snapshot
	Suppressed bool
}

// Config wires a Publisher. Zero fields get working defaults: a fresh
// codec, an in-memory carrier, the real clock, DefaultWindow, no-op
// notify, discarded logs.
type Config struct {
	Codec  *fragment.Codec
	Link   shareurl.Link
	Writer shareurl.FragmentWriter
	Clock  clock.Clock
	Window time.Duration

	// Notify is called after every pipeline run, in publish order.
	// It runs on the publisher's internal goroutine and must not
	// call back into the Publisher.
	Notify func(Update)

	Logger *slog.Logger
}

// Publisher owns the debounced publish pipeline. Safe for concurrent
// use.
type Publisher struct {
	codec     *fragment.Codec
	link      shareurl.Link
	writer    shareurl.FragmentWriter
	debouncer *debounce.Debouncer
	notify    func(Update)
	logger    *slog.Logger

	// seq orders publishes across the debounced and immediate paths.
	// A debounce timer that fires after a newer PublishNow must not
	// roll the carrier back to older state.
	seq atomic.Uint64

	mu      sync.Mutex
	lastSeq uint64
	last    Update
}

// New creates a publisher. The carrier starts at the clean base URL.
func New(cfg Config) *Publisher {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Codec == nil {
		cfg.Codec = fragment.New(cfg.Logger)
	}
	if cfg.Writer == nil {
		cfg.Writer = &shareurl.Memory{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Notify == nil {
		cfg.Notify = func(Update) {}
	}
	return &Publisher{
		codec:     cfg.Codec,
		link:      cfg.Link,
		writer:    cfg.Writer,
		debouncer: debounce.New(cfg.Clock, cfg.Window),
		notify:    cfg.Notify,
		logger:    cfg.Logger,
		last: Update{
			Token:  fragment.Empty,
			URL:    cfg.Link.URL(fragment.Empty),
			Budget: budget.Assess(fragment.Empty, cfg.Link.PrefixLength()),
		},
	}
}

// DocumentChanged queues a publish of doc once the debounce window
// elapses. Bursts coalesce: only the latest document publishes.
func (p *Publisher) DocumentChanged(doc document.Document) {
	seq := p.seq.Add(1)
	p.debouncer.Trigger(func() { p.publish(doc, seq) })
}

// PublishNow runs the pipeline for doc immediately, discarding any
// pending debounced publish (it would carry older state). Used on
// initial load, explicit save, and shutdown.
func (p *Publisher) PublishNow(doc document.Document) Update {
	seq := p.seq.Add(1)
	p.debouncer.Stop()
	return p.publish(doc, seq)
}

// Stop cancels any pending publish without running it.
func (p *Publisher) Stop() {
	p.debouncer.Stop()
}

// Pending reports whether a debounced publish is waiting.
func (p *Publisher) Pending() bool {
	return p.debouncer.Pending()
}

// Last returns the most recent update (initially the clean base URL).
func (p *Publisher) Last() Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Publisher) publish(doc document.Document, seq uint64) Update {
	token := p.codec.Encode(doc)
	snapshot := budget.Assess(token, p.link.PrefixLength())

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq < p.lastSeq {
		// A newer publish already ran; this one is stale.
		return p.last
	}
	p.lastSeq = seq

	update := Update{
		Token:  token,
		URL:    p.link.URL(token),
		Budget: snapshot,
	}
	if snapshot.Exceeded() {
		// Freeze: the previous URL keeps circulating untruncated. A
		// truncated token would decode to a silently damaged
		// document, which is worse than a stale link.
		update.Token = p.last.Token
		update.URL = p.last.URL
		update.Suppressed = true
		p.logger.Warn("url budget exceeded; published link frozen",
			"used_chars", snapshot.UsedChars,
			"ceiling", snapshot.Ceiling,
		)
	} else if err := p.writer.WriteFragment(token); err != nil {
		// Carrier trouble is logged, never surfaced. The next
		// publish writes the then-current state; nothing is lost
		// but freshness.
		p.logger.Warn("fragment write failed", "error", err)
	}

	p.last = update
	p.notify(update)
	return update
}
