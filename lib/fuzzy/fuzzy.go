// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy wraps fzf's matching algorithm for the history
// picker. Matching is case-insensitive and position-aware: the picker
// highlights the matched runes inside each snapshot title.
package fuzzy

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Result is one fuzzy match outcome. Score is zero when the pattern
// does not match; higher scores are better matches. Positions are
// rune indices into the matched text, for highlight rendering.
type Result struct {
	Score     int
	Positions []int
}

// Match scores pattern against text. An empty pattern matches nothing
// (score zero); callers treat an empty filter as "show everything"
// before calling Match. The slab may be nil; passing a reused
// *util.Slab across a batch of Match calls avoids per-call
// allocations, which matters when filtering on every keystroke.
func Match(text string, pattern []rune, slab *util.Slab) Result {
	if len(pattern) == 0 {
		return Result{}
	}

	// Lowercase both sides: fzf's caseSensitive=false only enables
	// smart-case against an already-lowercased pattern.
	loweredPattern := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(strings.ToLower(text)))

	match, positions := algo.FuzzyMatchV2(false, true, true, &chars, loweredPattern, true, slab)
	if match.Score <= 0 {
		return Result{}
	}

	result := Result{Score: match.Score}
	if positions != nil {
		result.Positions = *positions
	}
	return result
}
