// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragpad/fragpad/lib/budget"
)

func TestBandColorCoversAllBands(t *testing.T) {
	palette := Dark()
	bands := []budget.Band{
		budget.BandLow, budget.BandModerate, budget.BandHigh, budget.BandExceeded,
	}
	seen := make(map[lipgloss.Color]bool)
	for _, band := range bands {
		color := palette.BandColor(band)
		if color == "" {
			t.Errorf("band %s has no color", band)
		}
		seen[color] = true
	}
	if len(seen) != len(bands) {
		t.Errorf("expected %d distinct band colors, got %d", len(bands), len(seen))
	}
}

func TestBandColorUnknownBand(t *testing.T) {
	palette := Dark()
	if got := palette.BandColor(budget.Band(99)); got != palette.Text {
		t.Errorf("unknown band: got %q, want normal text %q", got, palette.Text)
	}
}

func TestParseOverlaysOnlySetFields(t *testing.T) {
	base := Dark()
	input := []byte(`{
		// brighter exceeded band
		"band_exceeded": "201",
		"text": "231", // trailing comma below
	}`)

	got, err := parse(input, base, "test.jsonc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.BandExceeded != lipgloss.Color("201") {
		t.Errorf("band_exceeded not overlaid: got %q", got.BandExceeded)
	}
	if got.Text != lipgloss.Color("231") {
		t.Errorf("text not overlaid: got %q", got.Text)
	}
	if got.Faint != base.Faint {
		t.Errorf("unset field changed: got %q, want %q", got.Faint, base.Faint)
	}
}

func TestParseMalformedFile(t *testing.T) {
	base := Dark()
	if _, err := parse([]byte("{not json"), base, "bad.jsonc"); err == nil {
		t.Fatal("expected error for malformed theme file")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/theme.jsonc", Dark()); err == nil {
		t.Fatal("expected error for missing theme file")
	}
}
