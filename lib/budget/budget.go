// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package budget assesses how much of the practical URL length limit
// an encoded fragment consumes. The assessment is advisory: nothing
// here refuses or truncates a document. Callers use the band to warn
// the user and, above the ceiling, to stop updating the shared URL so
// the last fitting link stays valid.
package budget

import (
	"fmt"

	"github.com/fragpad/fragpad/lib/fragment"
)

// Ceiling is the character budget for a full share URL. It is the
// conservative floor across browsers, chat clients, and proxies that
// links are pasted into; URLs under it survive everywhere that
// matters. Deliberately a constant, not configuration: a per-install
// ceiling would just move the breakage to whoever the link is sent to.
const Ceiling = 16000

// Band is the coarse pressure reading derived from the used/ceiling
// ratio. Thresholds are half-open intervals on the ratio:
// [0, 0.5) low, [0.5, 0.75) moderate, [0.75, 1.0) high, 1.0 and
// above exceeded.
type Band int

const (
	BandLow Band = iota
	BandModerate
	BandHigh
	BandExceeded
)

// String returns the band name used in logs and the status bar.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandModerate:
		return "moderate"
	case BandHigh:
		return "high"
	case BandExceeded:
		return "exceeded"
	default:
		return fmt.Sprintf("unknown(%d)", int(b))
	}
}

// Snapshot is one budget assessment: how many characters the full URL
// would use, against what ceiling, and the resulting band.
type Snapshot struct {
	UsedChars int
	Ceiling   int
	Ratio     float64
	Band      Band
}

// Percent returns the consumed fraction as a whole percentage,
// truncated. Can exceed 100.
func (s Snapshot) Percent() int {
	return int(s.Ratio * 100)
}

// Exceeded reports whether the URL no longer fits the ceiling.
// Callers must respond by freezing the published URL, never by
// truncating the token.
func (s Snapshot) Exceeded() bool {
	return s.Band == BandExceeded
}

// Assess computes the budget snapshot for a token published under a
// URL prefix of the given length. The full URL is the prefix, the "#"
// separator, and the token, so
//
//	usedChars = prefixLength + 1 + len(token)
//
// Tokens and URL prefixes are ASCII, so characters and bytes agree.
func Assess(token fragment.Token, prefixLength int) Snapshot {
	used := prefixLength + 1 + len(token)
	ratio := float64(used) / float64(Ceiling)
	return Snapshot{
		UsedChars: used,
		Ceiling:   Ceiling,
		Ratio:     ratio,
		Band:      bandFor(ratio),
	}
}

func bandFor(ratio float64) Band {
	switch {
	case ratio >= 1.0:
		return BandExceeded
	case ratio >= 0.75:
		return BandHigh
	case ratio >= 0.5:
		return BandModerate
	default:
		return BandLow
	}
}
