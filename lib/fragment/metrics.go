// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import "sync/atomic"

// Metrics holds the codec's operation counters, updated atomically by
// Encode and Decode. Decode failures deliberately do not interrupt
// the user, so these counters (and the log records that accompany
// them) are the only place such failures are visible.
type Metrics struct {
	encodes        atomic.Uint64
	encodeFailures atomic.Uint64
	decodes        atomic.Uint64
	malformed      atomic.Uint64
	legacy         atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	// Encodes counts Encode calls, including empty-document shortcuts.
	Encodes uint64
	// EncodeFailures counts Encode calls that returned Empty because
	// an internal stage failed.
	EncodeFailures uint64
	// Decodes counts Decode calls, including empty tokens.
	Decodes uint64
	// Malformed counts decodes that recovered to the canonical empty
	// document after a base64, gzip, size-guard, or UTF-8 failure.
	Malformed uint64
	// Legacy counts decodes that took the legacy plain-text path.
	Legacy uint64
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Encodes:        m.encodes.Load(),
		EncodeFailures: m.encodeFailures.Load(),
		Decodes:        m.decodes.Load(),
		Malformed:      m.malformed.Load(),
		Legacy:         m.legacy.Load(),
	}
}
