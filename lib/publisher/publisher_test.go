// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package publisher

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/fragpad/fragpad/lib/budget"
	"github.com/fragpad/fragpad/lib/clock"
	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/fragment"
	"github.com/fragpad/fragpad/lib/shareurl"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const testBase = "https://fragpad.dev/"

// updateRecorder collects notify callbacks in order.
type updateRecorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *updateRecorder) notify(update Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *updateRecorder) all() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

func newTestPublisher(t *testing.T) (*Publisher, *clock.FakeClock, *shareurl.Memory, *updateRecorder) {
	t.Helper()
	clk := clock.Fake(testEpoch)
	carrier := &shareurl.Memory{}
	recorder := &updateRecorder{}
	pub := New(Config{
		Link:   shareurl.Link{Base: testBase},
		Writer: carrier,
		Clock:  clk,
		Window: DefaultWindow,
		Notify: recorder.notify,
	})
	return pub, clk, carrier, recorder
}

// oversizedDocument returns a document whose token cannot fit the URL
// budget: hex of random bytes is incompressible enough that the
// encoded form stays far above the ceiling.
func oversizedDocument(t *testing.T) document.Document {
	t.Helper()
	raw := make([]byte, 16*1024)
	rand.Read(raw)
	return document.Document{Content: hex.EncodeToString(raw)}
}

func TestPublishAfterQuietWindow(t *testing.T) {
	pub, clk, carrier, recorder := newTestPublisher(t)

	doc := document.Document{Content: "# Notes", Mode: document.ModeSplit}
	pub.DocumentChanged(doc)

	if token, _ := carrier.ReadFragment(); token != fragment.Empty {
		t.Fatal("published before the quiet window elapsed")
	}
	clk.Advance(DefaultWindow)

	token, err := carrier.ReadFragment()
	if err != nil {
		t.Fatalf("ReadFragment: %v", err)
	}
	if token == fragment.Empty {
		t.Fatal("nothing published after the window")
	}
	if decoded := fragment.New(nil).Decode(token); decoded != doc {
		t.Errorf("published token decodes to %+v, want %+v", decoded, doc)
	}

	updates := recorder.all()
	if len(updates) != 1 {
		t.Fatalf("notify count = %d, want 1", len(updates))
	}
	if updates[0].Suppressed {
		t.Error("update should not be suppressed")
	}
	if !strings.HasPrefix(updates[0].URL, testBase+"#") {
		t.Errorf("update URL = %q, want base plus fragment", updates[0].URL)
	}
}

func TestBurstPublishesOnlyLatest(t *testing.T) {
	pub, clk, carrier, recorder := newTestPublisher(t)

	for _, content := range []string{"a", "ab", "abc"} {
		pub.DocumentChanged(document.Document{Content: content})
		clk.Advance(DefaultWindow / 2)
	}
	clk.Advance(DefaultWindow)

	token, _ := carrier.ReadFragment()
	decoded := fragment.New(nil).Decode(token)
	if decoded.Content != "abc" {
		t.Errorf("published content = %q, want latest (%q)", decoded.Content, "abc")
	}
	if updates := recorder.all(); len(updates) != 1 {
		t.Errorf("notify count = %d, want 1 (burst coalesced)", len(updates))
	}
}

func TestPublishNowBypassesWindow(t *testing.T) {
	pub, _, carrier, _ := newTestPublisher(t)

	doc := document.Document{Content: "immediate"}
	update := pub.PublishNow(doc)

	token, _ := carrier.ReadFragment()
	if token != update.Token {
		t.Errorf("carrier token %q != update token %q", token, update.Token)
	}
	if decoded := fragment.New(nil).Decode(token); decoded != doc {
		t.Errorf("published %+v, want %+v", decoded, doc)
	}
}

func TestPublishNowDiscardsPendingOlderState(t *testing.T) {
	pub, clk, carrier, _ := newTestPublisher(t)

	pub.DocumentChanged(document.Document{Content: "older"})
	pub.PublishNow(document.Document{Content: "newer"})
	clk.Advance(2 * DefaultWindow)

	token, _ := carrier.ReadFragment()
	if decoded := fragment.New(nil).Decode(token); decoded.Content != "newer" {
		t.Errorf("carrier holds %q, want %q", decoded.Content, "newer")
	}
}

func TestOversizedDocumentFreezesLink(t *testing.T) {
	pub, _, carrier, recorder := newTestPublisher(t)

	fitting := document.Document{Content: "fits fine"}
	first := pub.PublishNow(fitting)
	if first.Suppressed {
		t.Fatalf("small document suppressed: %+v", first.Budget)
	}

	second := pub.PublishNow(oversizedDocument(t))
	if !second.Suppressed {
		t.Fatalf("oversized document not suppressed: %+v", second.Budget)
	}
	if !second.Budget.Exceeded() {
		t.Error("suppressed update should carry the exceeded assessment")
	}
	if second.URL != first.URL || second.Token != first.Token {
		t.Error("suppressed update should keep the frozen URL and token")
	}

	// The carrier must still hold the last fitting link, untruncated.
	token, _ := carrier.ReadFragment()
	if token != first.Token {
		t.Errorf("carrier token changed under suppression")
	}
	if decoded := fragment.New(nil).Decode(token); decoded != fitting {
		t.Errorf("carrier decodes to %+v, want the earlier document", decoded)
	}

	updates := recorder.all()
	if len(updates) != 2 || !updates[1].Suppressed {
		t.Errorf("expected second notify suppressed, got %+v", updates)
	}
}

func TestRecoveryAfterSuppression(t *testing.T) {
	pub, _, carrier, _ := newTestPublisher(t)

	pub.PublishNow(document.Document{Content: "first"})
	pub.PublishNow(oversizedDocument(t))
	recovered := pub.PublishNow(document.Document{Content: "trimmed back down"})

	if recovered.Suppressed {
		t.Fatal("fitting document still suppressed after shrink")
	}
	token, _ := carrier.ReadFragment()
	if decoded := fragment.New(nil).Decode(token); decoded.Content != "trimmed back down" {
		t.Errorf("carrier holds %q after recovery", decoded.Content)
	}
}

func TestEmptyDocumentPublishesCleanURL(t *testing.T) {
	pub, _, _, recorder := newTestPublisher(t)

	pub.PublishNow(document.Document{Content: "something"})
	update := pub.PublishNow(document.Empty())

	if update.Token != fragment.Empty {
		t.Errorf("empty document token = %q, want empty", update.Token)
	}
	if update.URL != testBase {
		t.Errorf("empty document URL = %q, want bare base", update.URL)
	}
	if update.Budget.Band != budget.BandLow {
		t.Errorf("empty document band = %v, want low", update.Budget.Band)
	}
	if len(recorder.all()) != 2 {
		t.Errorf("notify count = %d, want 2", len(recorder.all()))
	}
}

func TestLastStartsAtCleanBase(t *testing.T) {
	pub, _, _, _ := newTestPublisher(t)
	last := pub.Last()
	if last.URL != testBase || last.Token != fragment.Empty {
		t.Errorf("initial Last() = %+v, want clean base", last)
	}
}

// failingWriter always rejects writes.
type failingWriter struct{ writes int }

func (w *failingWriter) WriteFragment(fragment.Token) error {
	w.writes++
	return errors.New("disk full")
}

func TestWriteFailureDoesNotInterrupt(t *testing.T) {
	writer := &failingWriter{}
	recorder := &updateRecorder{}
	pub := New(Config{
		Link:   shareurl.Link{Base: testBase},
		Writer: writer,
		Clock:  clock.Fake(testEpoch),
		Notify: recorder.notify,
	})

	update := pub.PublishNow(document.Document{Content: "doomed write"})
	if update.Suppressed {
		t.Error("write failure is not budget suppression")
	}
	if writer.writes != 1 {
		t.Errorf("writes = %d, want 1", writer.writes)
	}
	if len(recorder.all()) != 1 {
		t.Error("notify should still run after a failed write")
	}

	// The next publish tries the carrier again.
	pub.PublishNow(document.Document{Content: "retry"})
	if writer.writes != 2 {
		t.Errorf("writes = %d, want 2", writer.writes)
	}
}

func TestPendingReflectsQueuedPublish(t *testing.T) {
	pub, clk, _, _ := newTestPublisher(t)
	if pub.Pending() {
		t.Error("fresh publisher should have nothing pending")
	}
	pub.DocumentChanged(document.Document{Content: "x"})
	if !pub.Pending() {
		t.Error("queued publish should report pending")
	}
	clk.Advance(DefaultWindow)
	if pub.Pending() {
		t.Error("after the window nothing should be pending")
	}
}

func TestStopCancelsPending(t *testing.T) {
	pub, clk, carrier, _ := newTestPublisher(t)
	pub.DocumentChanged(document.Document{Content: "never lands"})
	pub.Stop()
	clk.Advance(2 * DefaultWindow)
	if token, _ := carrier.ReadFragment(); token != fragment.Empty {
		t.Error("stopped publish still reached the carrier")
	}
}
