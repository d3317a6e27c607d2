// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package markdownview renders markdown as styled terminal text for
// the preview and split panes. Soft line breaks inside paragraphs
// become spaces so hard-wrapped source reflows at any pane width;
// code blocks, lists, quotes, and tables keep their structure.
package markdownview

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fragpad/fragpad/lib/theme"
)

// wrapBreakpoints are the characters ansi.Wrap may break lines at, in
// addition to spaces.
const wrapBreakpoints = " ,.;-+|"

// minContentWidth is the floor for the wrap width after nesting
// prefixes are subtracted, preventing degenerate one-word columns
// inside deeply nested quotes.
const minContentWidth = 10

// parser is built once and shared. The goldmark parser carries no
// per-parse state; Parse creates its own reader-scoped state.
var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

func sharedParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parser
}

// Render parses markdown and produces styled terminal output wrapped
// to width. The color profile is forced to ANSI256: this output only
// ever goes to the bubbletea pane, and auto-detection would strip all
// color when there is no TTY (tests, piped output).
func Render(markdown string, palette theme.Theme, width int) string {
	if markdown == "" {
		return ""
	}
	source := []byte(markdown)
	tree := sharedParser().Parser().Parse(text.NewReader(source))

	// SetColorProfile is needed on top of WithProfile: the lipgloss
	// renderer re-detects from the environment unless the profile is
	// set explicitly.
	styles := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	styles.SetColorProfile(termenv.ANSI256)

	view := &renderer{
		source:  source,
		palette: palette,
		width:   width,
		styles:  styles,
	}
	ast.Walk(tree, view.walk)
	return strings.TrimRight(view.out.String(), "\n")
}

// renderer walks the goldmark AST with accumulate-then-wrap
// semantics: inline content within a block collects in a buffer and
// is word-wrapped as a unit when the block closes. goldmark's own
// streaming renderer interface cannot express that without an
// intermediate representation.
type renderer struct {
	source  []byte
	palette theme.Theme
	width   int
	styles  *lipgloss.Renderer

	out    strings.Builder
	inline strings.Builder

	// Block nesting prefixes (quote bars, list indents).
	prefixes    []prefix
	prefixText  string
	prefixWidth int

	// bullet replaces the prefix for the first emitted line of a
	// list item, then clears.
	bullet string

	// Inline style nesting. Counters rather than booleans so nested
	// emphasis unwinds correctly.
	bold          int
	italic        int
	strikethrough int

	lists []list

	// Trailing newlines currently at the end of out, for blank-line
	// management between blocks.
	trailing int
}

type prefix struct {
	text  string
	width int
}

type list struct {
	ordered bool
	next    int
	tight   bool
}

func (r *renderer) style() lipgloss.Style {
	return r.styles.NewStyle()
}

// contentWidth is the wrap width left after nesting prefixes.
func (r *renderer) contentWidth() int {
	width := r.width - r.prefixWidth
	if width < minContentWidth {
		width = minContentWidth
	}
	return width
}

func (r *renderer) pushPrefix(text string, width int) {
	r.prefixes = append(r.prefixes, prefix{text: text, width: width})
	r.prefixText += text
	r.prefixWidth += width
}

func (r *renderer) popPrefix() {
	if len(r.prefixes) == 0 {
		return
	}
	top := r.prefixes[len(r.prefixes)-1]
	r.prefixes = r.prefixes[:len(r.prefixes)-1]
	r.prefixText = r.prefixText[:len(r.prefixText)-len(top.text)]
	r.prefixWidth -= top.width
}

func (r *renderer) inTightList() bool {
	return len(r.lists) > 0 && r.lists[len(r.lists)-1].tight
}

// write appends text to the output, tracking trailing newlines.
func (r *renderer) write(s string) {
	if s == "" {
		return
	}
	r.out.WriteString(s)

	count := 0
	allNewlines := true
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '\n' {
			allNewlines = false
			break
		}
		count++
	}
	if allNewlines {
		r.trailing += count
	} else {
		r.trailing = count
	}
}

func (r *renderer) endLine() {
	if r.trailing < 1 {
		r.write("\n")
	}
}

func (r *renderer) blankLine() {
	for r.trailing < 2 {
		r.write("\n")
	}
}

// firstLinePrefix returns (and consumes) the bullet if one is
// pending, else the regular prefix.
func (r *renderer) firstLinePrefix() string {
	if r.bullet != "" {
		bullet := r.bullet
		r.bullet = ""
		return bullet
	}
	return r.prefixText
}

// prefixed prepends the line prefix to every line of content; the
// first line takes the pending bullet when one is set.
func (r *renderer) prefixed(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for i, line := range lines {
		if i == 0 {
			result.WriteString(r.firstLinePrefix())
		} else {
			result.WriteString("\n")
			result.WriteString(r.prefixText)
		}
		result.WriteString(line)
	}
	return result.String()
}

// flushInline wraps the accumulated inline content and prefixes it.
// Empties the inline buffer.
func (r *renderer) flushInline() string {
	content := r.inline.String()
	r.inline.Reset()
	if content == "" {
		return ""
	}
	return r.prefixed(ansi.Wrap(content, r.contentWidth(), wrapBreakpoints))
}

// styled renders text under the current inline style state.
func (r *renderer) styled(content string) string {
	style := r.style().Foreground(r.palette.Text)
	if r.bold > 0 {
		style = style.Bold(true)
	}
	if r.italic > 0 {
		style = style.Italic(true)
	}
	if r.strikethrough > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// collectInline renders a node's children into a string without
// disturbing the caller's inline buffer or style state.
func (r *renderer) collectInline(node ast.Node) string {
	savedInline := r.inline.String()
	savedBold, savedItalic, savedStrike := r.bold, r.italic, r.strikethrough

	r.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, r.walk)
	}
	result := r.inline.String()

	r.inline.Reset()
	r.inline.WriteString(savedInline)
	r.bold, r.italic, r.strikethrough = savedBold, savedItalic, savedStrike
	return result
}

func (r *renderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:
		// Nothing to do at either boundary.

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			r.inline.Reset()
		} else if flushed := r.flushInline(); flushed != "" {
			r.write(flushed)
			r.endLine()
			if !r.inTightList() {
				r.blankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			r.inline.Reset()
		} else {
			r.closeHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			r.codeBlock(blockText(block, r.source), string(block.Language(r.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			r.codeBlock(blockText(node, r.source), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			r.pushPrefix("│ ", 2)
		} else {
			r.popPrefix()
			r.blankLine()
		}

	case ast.KindList:
		if entering {
			r.openList(node.(*ast.List))
		} else {
			r.closeList()
		}

	case ast.KindListItem:
		if entering {
			r.openListItem()
		} else {
			r.closeListItem()
		}

	case ast.KindThematicBreak:
		if entering {
			r.rule()
		}

	case ast.KindHTMLBlock:
		if entering {
			r.htmlBlock(node.(*ast.HTMLBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			r.textNode(node.(*ast.Text))
		}

	case ast.KindString:
		if entering {
			r.inline.WriteString(r.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		r.emphasis(node.(*ast.Emphasis), entering)

	case ast.KindCodeSpan:
		if entering {
			r.codeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			r.link(node.(*ast.Link))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(r.source))
			r.inline.WriteString(r.style().Foreground(r.palette.Link).Render(url))
		}

	case ast.KindImage:
		if entering {
			r.image(node.(*ast.Image))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		if entering {
			r.rawHTML(node.(*ast.RawHTML))
		}

	case extast.KindStrikethrough:
		if entering {
			r.strikethrough++
		} else {
			r.strikethrough--
		}

	case extast.KindTable:
		if entering {
			r.table(node.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			checkbox := node.(*extast.TaskCheckBox)
			if checkbox.IsChecked {
				mark := r.style().Foreground(r.palette.Checked).Render("[x]")
				r.inline.WriteString(mark + " ")
			} else {
				r.inline.WriteString(r.styled("[ ] "))
			}
		}
	}

	return ast.WalkContinue, nil
}

func (r *renderer) closeHeading(heading *ast.Heading) {
	// Headings carry their own style; strip the per-text styling the
	// inline pass applied.
	content := ansi.Strip(r.inline.String())
	r.inline.Reset()
	if content == "" {
		return
	}

	style := r.style().Bold(true)
	if heading.Level <= 2 {
		style = style.Foreground(r.palette.Heading)
	} else {
		style = style.Foreground(r.palette.Text)
	}

	wrapped := ansi.Wrap(style.Render(content), r.contentWidth(), wrapBreakpoints)
	r.blankLine()
	r.write(r.prefixed(wrapped))
	r.endLine()
	r.blankLine()
}

// blockText joins the source lines of a code or HTML block.
func blockText(node ast.Node, source []byte) string {
	var content strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		content.Write(seg.Value(source))
	}
	return content.String()
}

// codeBlock emits a code block, syntax-highlighted when a language is
// named and chroma knows it.
func (r *renderer) codeBlock(code, language string) {
	highlighted := r.highlight(code, language)
	r.blankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		r.write(r.firstLinePrefix() + line)
		r.endLine()
	}
	r.blankLine()
}

// highlight runs chroma over the code. Unknown languages and chroma
// failures fall back to faint plain text rather than dropping the
// block.
func (r *renderer) highlight(code, language string) string {
	if language == "" {
		return r.style().Foreground(r.palette.Faint).Render(code)
	}
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err != nil {
		return r.style().Foreground(r.palette.Faint).Render(code)
	}
	return highlighted.String()
}

func (r *renderer) openList(node *ast.List) {
	start := 0
	if node.IsOrdered() {
		start = node.Start
	}
	r.lists = append(r.lists, list{
		ordered: node.IsOrdered(),
		next:    start,
		tight:   node.IsTight,
	})
}

func (r *renderer) closeList() {
	if len(r.lists) > 0 {
		r.lists = r.lists[:len(r.lists)-1]
	}
	if !r.inTightList() {
		r.blankLine()
	}
}

func (r *renderer) openListItem() {
	if len(r.lists) == 0 {
		return
	}
	current := &r.lists[len(r.lists)-1]

	var marker string
	if current.ordered {
		marker = fmt.Sprintf("%d. ", current.next)
		current.next++
	} else {
		marker = "- "
	}

	// Markers are ASCII, so byte length is visual width. The bullet
	// carries the surrounding prefix since it replaces the whole
	// prefix for the item's first line.
	r.bullet = r.prefixText + marker
	r.pushPrefix(strings.Repeat(" ", len(marker)), len(marker))
}

func (r *renderer) closeListItem() {
	r.popPrefix()
	if r.inTightList() {
		r.endLine()
	} else {
		r.blankLine()
	}
}

func (r *renderer) rule() {
	line := strings.Repeat("─", r.contentWidth())
	r.blankLine()
	r.write(r.prefixed(r.style().Foreground(r.palette.Border).Render(line)))
	r.endLine()
	r.blankLine()
}

func (r *renderer) htmlBlock(node *ast.HTMLBlock) {
	stripped := strings.TrimSpace(stripTags(blockText(node, r.source)))
	if stripped == "" {
		return
	}
	r.write(r.prefixed(r.style().Foreground(r.palette.Faint).Render(stripped)))
	r.endLine()
	r.blankLine()
}

func (r *renderer) textNode(node *ast.Text) {
	r.inline.WriteString(r.styled(string(node.Segment.Value(r.source))))
	if node.SoftLineBreak() {
		// Soft breaks become spaces so hard-wrapped source reflows
		// at the pane width.
		r.inline.WriteString(" ")
	}
	if node.HardLineBreak() {
		r.inline.WriteString("\n")
	}
}

func (r *renderer) emphasis(node *ast.Emphasis, entering bool) {
	delta := 1
	if !entering {
		delta = -1
	}
	if node.Level >= 2 {
		r.bold += delta
	} else {
		r.italic += delta
	}
}

func (r *renderer) codeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			code.Write(child.Segment.Value(r.source))
		case *ast.String:
			code.Write(child.Value)
		}
	}
	r.inline.WriteString(r.style().Foreground(r.palette.Faint).Render(code.String()))
}

func (r *renderer) link(node *ast.Link) {
	// collectInline already styles the label; writing it raw avoids
	// double-styling.
	r.inline.WriteString(r.collectInline(node))
	if url := string(node.Destination); url != "" {
		r.inline.WriteString(" " + r.style().Foreground(r.palette.Link).Render("("+url+")"))
	}
}

func (r *renderer) image(node *ast.Image) {
	faint := r.style().Foreground(r.palette.Faint)
	r.inline.WriteString(faint.Render("[" + r.collectInline(node) + "]"))
	if url := string(node.Destination); url != "" {
		r.inline.WriteString(" " + faint.Render("("+url+")"))
	}
}

func (r *renderer) rawHTML(node *ast.RawHTML) {
	var html strings.Builder
	for i := 0; i < node.Segments.Len(); i++ {
		seg := node.Segments.At(i)
		html.Write(seg.Value(r.source))
	}
	if stripped := stripTags(html.String()); stripped != "" {
		r.inline.WriteString(r.style().Foreground(r.palette.Faint).Render(stripped))
	}
}

// stripTags drops <...> tags, keeping only text content.
func stripTags(html string) string {
	var result strings.Builder
	inTag := false
	for _, character := range html {
		switch {
		case character == '<':
			inTag = true
		case character == '>':
			inTag = false
		case !inTag:
			result.WriteRune(character)
		}
	}
	return result.String()
}
