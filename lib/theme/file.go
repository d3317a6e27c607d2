// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package theme

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/jsonc"
)

// fileTheme is the JSONC theme file shape. Every field is optional:
// unset fields inherit from the base palette the file is applied to.
// Values are ANSI 256-color codes as strings ("114") so they map
// directly onto lipgloss.Color.
type fileTheme struct {
	Text  *string `json:"text"`
	Faint *string `json:"faint"`

	Heading      *string `json:"heading"`
	Border       *string `json:"border"`
	Help         *string `json:"help"`
	Link         *string `json:"link"`
	Cursor       *string `json:"cursor"`
	StatusBar    *string `json:"status_bar"`
	StatusText   *string `json:"status_text"`
	NoticeText   *string `json:"notice_text"`
	WarnText     *string `json:"warn_text"`
	Checked      *string `json:"checked"`
	SelectionBar *string `json:"selection_bar"`

	BandLow      *string `json:"band_low"`
	BandModerate *string `json:"band_moderate"`
	BandHigh     *string `json:"band_high"`
	BandExceeded *string `json:"band_exceeded"`
}

// LoadFile reads a JSONC theme file and overlays it on base. The file
// format accepts // line comments, /* block comments */, and trailing
// commas. Unset fields keep the base value; a file that sets nothing
// returns base unchanged.
func LoadFile(path string, base Theme) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading theme file: %w", err)
	}
	return parse(data, base, path)
}

func parse(data []byte, base Theme, path string) (Theme, error) {
	stripped := jsonc.ToJSON(data)

	var file fileTheme
	if err := json.Unmarshal(stripped, &file); err != nil {
		return base, fmt.Errorf("parsing theme file %s: %w", path, err)
	}

	overlay := func(target *lipgloss.Color, value *string) {
		if value != nil {
			*target = lipgloss.Color(*value)
		}
	}

	result := base
	overlay(&result.Text, file.Text)
	overlay(&result.Faint, file.Faint)
	overlay(&result.Heading, file.Heading)
	overlay(&result.Border, file.Border)
	overlay(&result.Help, file.Help)
	overlay(&result.Link, file.Link)
	overlay(&result.Cursor, file.Cursor)
	overlay(&result.StatusBar, file.StatusBar)
	overlay(&result.StatusText, file.StatusText)
	overlay(&result.NoticeText, file.NoticeText)
	overlay(&result.WarnText, file.WarnText)
	overlay(&result.Checked, file.Checked)
	overlay(&result.SelectionBar, file.SelectionBar)
	overlay(&result.BandLow, file.BandLow)
	overlay(&result.BandModerate, file.BandModerate)
	overlay(&result.BandHigh, file.BandHigh)
	overlay(&result.BandExceeded, file.BandExceeded)

	return result, nil
}
