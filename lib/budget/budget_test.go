// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package budget

import (
	"strings"
	"testing"

	"github.com/fragpad/fragpad/lib/fragment"
)

// tokenOfLength builds a token whose length lands usedChars exactly
// on the target when assessed with the given prefix length.
func tokenOfLength(length int) fragment.Token {
	return fragment.Token(strings.Repeat("A", length))
}

func TestAssessUsedChars(t *testing.T) {
	// prefix + "#" + token.
	snapshot := Assess(tokenOfLength(100), 30)
	if snapshot.UsedChars != 131 {
		t.Errorf("UsedChars = %d, want 131", snapshot.UsedChars)
	}
	if snapshot.Ceiling != Ceiling {
		t.Errorf("Ceiling = %d, want %d", snapshot.Ceiling, Ceiling)
	}
}

func TestAssessBands(t *testing.T) {
	// usedChars = prefixLength + 1 + len(token); prefix 0 keeps the
	// arithmetic readable: a token of length N uses N+1 characters.
	tests := []struct {
		name      string
		usedChars int
		want      Band
	}{
		{"zero", 1, BandLow}, // empty token still counts the separator
		{"well under", 4000, BandLow},
		{"just below half", 7999, BandLow},
		{"exactly half", 8000, BandModerate},
		{"typical moderate", 8501, BandModerate},
		{"just below three quarters", 11999, BandModerate},
		{"exactly three quarters", 12000, BandHigh},
		{"just below ceiling", 15999, BandHigh},
		{"exactly at ceiling", 16000, BandExceeded},
		{"over ceiling", 16501, BandExceeded},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			snapshot := Assess(tokenOfLength(test.usedChars-1), 0)
			if snapshot.UsedChars != test.usedChars {
				t.Fatalf("UsedChars = %d, want %d", snapshot.UsedChars, test.usedChars)
			}
			if snapshot.Band != test.want {
				t.Errorf("band at %d chars = %v, want %v", test.usedChars, snapshot.Band, test.want)
			}
		})
	}
}

func TestAssessPrefixCountsAgainstBudget(t *testing.T) {
	// The same token can be fine under a short prefix and exceeded
	// under a long one.
	token := tokenOfLength(15990)
	if snapshot := Assess(token, 5); snapshot.Exceeded() {
		t.Errorf("short prefix should fit: %+v", snapshot)
	}
	if snapshot := Assess(token, 50); !snapshot.Exceeded() {
		t.Errorf("long prefix should exceed: %+v", snapshot)
	}
}

func TestSnapshotPercent(t *testing.T) {
	tests := []struct {
		usedChars int
		want      int
	}{
		{1600, 10},
		{8000, 50},
		{8501, 53},
		{16000, 100},
		{16501, 103},
		{32000, 200},
	}
	for _, test := range tests {
		snapshot := Assess(tokenOfLength(test.usedChars-1), 0)
		if got := snapshot.Percent(); got != test.want {
			t.Errorf("Percent at %d chars = %d, want %d", test.usedChars, got, test.want)
		}
	}
}

func TestExceededOnlyAtCeiling(t *testing.T) {
	for _, band := range []Band{BandLow, BandModerate, BandHigh} {
		if (Snapshot{Band: band}).Exceeded() {
			t.Errorf("band %v should not report exceeded", band)
		}
	}
	if !(Snapshot{Band: BandExceeded}).Exceeded() {
		t.Error("BandExceeded should report exceeded")
	}
}

func TestBandString(t *testing.T) {
	tests := []struct {
		band Band
		want string
	}{
		{BandLow, "low"},
		{BandModerate, "moderate"},
		{BandHigh, "high"},
		{BandExceeded, "exceeded"},
		{Band(9), "unknown(9)"},
	}
	for _, test := range tests {
		if got := test.band.String(); got != test.want {
			t.Errorf("Band(%d).String() = %q, want %q", int(test.band), got, test.want)
		}
	}
}
