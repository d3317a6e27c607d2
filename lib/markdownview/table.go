// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package markdownview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// columnSeparator sits between table columns.
const columnSeparator = "  "

// minColumnWidth is the floor when an over-wide table is shrunk to
// fit the pane.
const minColumnWidth = 3

func (r *renderer) table(node *extast.Table) {
	var header []string
	var rows [][]string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			header = r.tableRow(child)
		case extast.KindTableRow:
			rows = append(rows, r.tableRow(child))
		}
	}

	columns := len(header)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return
	}

	widths := columnWidths(header, rows, columns)
	shrinkToFit(widths, r.contentWidth())

	r.blankLine()
	if len(header) > 0 {
		bold := r.style().Bold(true).Foreground(r.palette.Text)
		r.write(r.firstLinePrefix() + formatRow(header, widths, node.Alignments, bold))
		r.endLine()

		separators := make([]string, len(widths))
		for i, width := range widths {
			separators[i] = strings.Repeat("─", width)
		}
		border := r.style().Foreground(r.palette.Border)
		r.write(r.prefixText + border.Render(strings.Join(separators, columnSeparator)))
		r.endLine()
	}
	for _, row := range rows {
		r.write(r.prefixText + formatRow(row, widths, node.Alignments, r.style()))
		r.endLine()
	}
	r.blankLine()
}

func (r *renderer) tableRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, r.collectInline(cell))
		}
	}
	return cells
}

// columnWidths computes the widest visible content per column.
func columnWidths(header []string, rows [][]string, columns int) []int {
	widths := make([]int, columns)
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < columns {
				if width := lipgloss.Width(cell); width > widths[i] {
					widths[i] = width
				}
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}
	return widths
}

// shrinkToFit proportionally narrows columns when the table exceeds
// the available width. Cells are truncated at render time.
func shrinkToFit(widths []int, available int) {
	total := len(columnSeparator) * (len(widths) - 1)
	for _, width := range widths {
		total += width
	}
	if total <= available {
		return
	}

	usable := available - len(columnSeparator)*(len(widths)-1)
	if usable < len(widths)*minColumnWidth {
		usable = len(widths) * minColumnWidth
	}
	for i := range widths {
		widths[i] = (widths[i] * usable) / total
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}
}

func formatRow(cells []string, widths []int, alignments []extast.Alignment, base lipgloss.Style) string {
	parts := make([]string, 0, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		visible := lipgloss.Width(cell)
		if visible > width {
			cell = ansi.Truncate(cell, width, "…")
			visible = lipgloss.Width(cell)
		}

		padding := width - visible
		if padding < 0 {
			padding = 0
		}
		var alignment extast.Alignment
		if i < len(alignments) {
			alignment = alignments[i]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell += strings.Repeat(" ", padding)
		}
		parts = append(parts, cell)
	}
	return base.Render(strings.Join(parts, columnSeparator))
}
