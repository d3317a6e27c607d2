// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatterDelimiter opens and closes a YAML front matter block.
// The block must start at the very first byte of the document.
const frontMatterDelimiter = "---"

// maxTitleRunes bounds derived titles so snapshot listings and the
// status bar stay single-line.
const maxTitleRunes = 64

// splitFrontMatter separates a leading YAML front matter block from
// the document body. It returns the raw YAML (without delimiters) and
// the remaining body. Documents without front matter return ("", d.Content).
//
// The closing delimiter must be a line containing exactly "---"; a
// document that opens a block and never closes it has no front matter
// (the "---" line is ordinary content, likely a thematic break the
// user is still typing above).
func (d Document) splitFrontMatter() (raw, body string) {
	content := d.Content
	if !strings.HasPrefix(content, frontMatterDelimiter+"\n") {
		return "", content
	}
	rest := content[len(frontMatterDelimiter)+1:]
	for offset := 0; offset <= len(rest); {
		lineEnd := strings.IndexByte(rest[offset:], '\n')
		var line string
		if lineEnd < 0 {
			line = rest[offset:]
			lineEnd = len(rest) - offset
		} else {
			line = rest[offset : offset+lineEnd]
		}
		if strings.TrimRight(line, " \t") == frontMatterDelimiter {
			return rest[:offset], rest[min(offset+lineEnd+1, len(rest)):]
		}
		offset += lineEnd + 1
	}
	return "", content
}

// Meta parses the document's YAML front matter into a map. Documents
// without front matter, and documents whose front matter is not valid
// YAML or not a mapping, return nil. Malformed metadata never fails:
// the user may be mid-edit, and the document must stay usable.
func (d Document) Meta() map[string]any {
	raw, _ := d.splitFrontMatter()
	if raw == "" {
		return nil
	}
	var meta map[string]any
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return nil
	}
	return meta
}

// Body returns the document content with any front matter block
// removed. This is what the preview renders.
func (d Document) Body() string {
	_, body := d.splitFrontMatter()
	return body
}

// Title derives a display title for the document. Precedence:
//
//  1. a non-blank "title" string in the front matter
//  2. the first non-blank line of the body, with leading markdown
//     heading markers stripped
//  3. "untitled"
//
// Titles are truncated to 64 characters.
func (d Document) Title() string {
	if meta := d.Meta(); meta != nil {
		if title, ok := meta["title"].(string); ok {
			if trimmed := strings.TrimSpace(title); trimmed != "" {
				return truncateTitle(trimmed)
			}
		}
	}
	for _, line := range strings.Split(d.Body(), "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "#")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed != "" {
			return truncateTitle(trimmed)
		}
	}
	return "untitled"
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes])
}
