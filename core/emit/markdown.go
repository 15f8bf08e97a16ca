// Markdown emitter. Continuation for multi-block list items is
// indentation-based, admonitions render as bold-labeled blockquotes, and
// tables are width-padded pipe grids.
package emit

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
	"github.com/mattn/go-runewidth"
)

// MarkdownEmitter renders a Block Tree as Markdown.
type MarkdownEmitter struct{}

// NewMarkdown creates a MarkdownEmitter.
func NewMarkdown() *MarkdownEmitter {
	return &MarkdownEmitter{}
}

// Extension returns the output file extension.
func (e *MarkdownEmitter) Extension() string { return ".md" }

// Emit renders doc. All state lives in the per-call emission value.
func (e *MarkdownEmitter) Emit(doc *blocktree.Document, opts core.Options) (string, []core.Warning, error) {
	s := &mdState{opts: opts}
	var parts []string
	for _, b := range doc.Blocks {
		if text := s.block(b, 0); text != "" {
			parts = append(parts, text)
		}
	}
	out := strings.Join(parts, "\n\n")
	if out != "" {
		out += "\n"
	}
	return out, s.warnings, nil
}

type mdState struct {
	opts     core.Options
	warnings []core.Warning
}

func (s *mdState) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, core.Warning{Stage: "emit", Message: fmt.Sprintf(format, args...)})
}

func (s *mdState) block(b blocktree.Block, depth int) string {
	switch v := b.(type) {
	case *blocktree.Heading:
		return strings.Repeat("#", v.Level) + " " + s.run(v.Run)
	case *blocktree.Paragraph:
		return guardMarkdownMarker(s.run(v.Run))
	case *blocktree.List:
		return s.list(v, depth)
	case *blocktree.Admonition:
		return s.admonition(v, depth)
	case *blocktree.Table:
		return s.table(v)
	case *blocktree.CodeBlock:
		return codeFence(v)
	case *blocktree.Image:
		if v.Path == "" {
			s.warnf("image with empty path emitted")
		}
		return fmt.Sprintf("![%s](%s)", v.AltText, v.Path)
	case *blocktree.Include:
		return fmt.Sprintf("<!-- include: %s -->", v.TargetID)
	case *blocktree.RawPassthrough:
		return s.rawPassthrough(v)
	default:
		s.warnf("unhandled block %T dropped from output", b)
		return ""
	}
}

// rawPassthrough tries to salvage HTML passthrough content by converting
// it to Markdown; anything unconvertible stays verbatim. Either way the
// content survives and the event is recorded.
func (s *mdState) rawPassthrough(r *blocktree.RawPassthrough) string {
	if strings.HasPrefix(strings.TrimSpace(r.Text), "<") {
		if converted, err := htmltomarkdown.ConvertString(r.Text); err == nil && strings.TrimSpace(converted) != "" {
			s.warnf("raw passthrough converted to markdown as fallback")
			return strings.TrimSpace(converted)
		}
	}
	s.warnf("raw passthrough emitted verbatim")
	return r.Text
}

// list renders with 4-space indentation per nesting level. Markdown has no
// alphabetic or roman numbering; those styles fall back to arabic with a
// recorded warning.
func (s *mdState) list(l *blocktree.List, depth int) string {
	if max := s.opts.EffectiveMaxListDepth(); depth+1 > max {
		s.warnf("list nesting %d exceeds dialect maximum %d", depth+1, max)
	}
	if l.Ordering == blocktree.Ordered && l.Style != blocktree.Arabic {
		s.warnf("markdown has no %s numbering, falling back to arabic", styleName(l.Style))
	}

	indent := strings.Repeat("    ", depth)
	var lines []string
	for i, item := range l.Items {
		marker := "-"
		switch l.Ordering {
		case blocktree.Ordered:
			marker = fmt.Sprintf("%d.", i+1)
		case blocktree.Definition:
			marker = "-"
		}
		lines = append(lines, s.listItem(item, indent, marker, depth)...)
	}
	return strings.Join(lines, "\n")
}

// listItem puts the first paragraph on the marker line and indents every
// following block to the item's content column, which is what continues
// the same item in Markdown.
func (s *mdState) listItem(item blocktree.ListItem, indent, marker string, depth int) []string {
	contIndent := indent + strings.Repeat(" ", len(marker)+1)

	var lines []string
	rest := item.Blocks
	if len(rest) > 0 {
		if p, ok := rest[0].(*blocktree.Paragraph); ok {
			lines = append(lines, indent+marker+" "+s.run(p.Run))
			rest = rest[1:]
		}
	}
	if len(lines) == 0 {
		lines = append(lines, indent+marker+" ")
	}
	for _, b := range rest {
		if nested, ok := b.(*blocktree.List); ok {
			lines = append(lines, s.list(nested, depth+1))
			continue
		}
		lines = append(lines, "")
		for _, ln := range strings.Split(s.block(b, depth), "\n") {
			if ln == "" {
				lines = append(lines, "")
			} else {
				lines = append(lines, contIndent+ln)
			}
		}
	}
	return lines
}

func (s *mdState) admonition(a *blocktree.Admonition, depth int) string {
	var body []string
	for _, b := range a.Blocks {
		if text := s.block(b, depth); text != "" {
			body = append(body, text)
		}
	}
	content := strings.Join(body, "\n\n")

	var b strings.Builder
	b.WriteString("> **" + admonitionLabel(a.Kind) + ":**\n")
	for i, line := range strings.Split(content, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		if line == "" {
			b.WriteString(">")
		} else {
			b.WriteString("> " + line)
		}
	}
	return b.String()
}

// table renders a pipe grid with display-width padding so columns line up
// for humans as well as parsers.
func (s *mdState) table(t *blocktree.Table) string {
	rows, warning := tableCells(t, func(r blocktree.InlineRun) string {
		cell := s.run(r)
		cell = strings.ReplaceAll(cell, "|", `\|`)
		return strings.ReplaceAll(cell, "\n", " ")
	})
	if warning != nil {
		s.warnings = append(s.warnings, *warning)
	}

	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	widths := make([]int, cols)
	for _, cells := range rows {
		for i, cell := range cells {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, cells := range rows {
		b.WriteString("|")
		for j, cell := range cells {
			pad := widths[j] - runewidth.StringWidth(cell)
			b.WriteString(" " + cell + strings.Repeat(" ", pad) + " |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			for _, w := range widths {
				b.WriteString(strings.Repeat("-", w+2) + "|")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func codeFence(c *blocktree.CodeBlock) string {
	fence := "```"
	if strings.Contains(c.Text, "```") {
		fence = "````"
	}
	return fence + c.Language + "\n" + c.Text + "\n" + fence
}

func (s *mdState) run(r blocktree.InlineRun) string {
	var b strings.Builder
	for _, span := range r {
		switch v := span.(type) {
		case *blocktree.Text:
			b.WriteString(escapeMarkdown(v.Value))
		case *blocktree.Emphasis:
			b.WriteString("_" + s.run(v.Run) + "_")
		case *blocktree.Strong:
			b.WriteString("**" + s.run(v.Run) + "**")
		case *blocktree.Code:
			b.WriteString("`" + v.Value + "`")
		case *blocktree.CrossRef:
			label := s.run(v.Label)
			if label == "" {
				label = v.TargetID
			}
			b.WriteString("[" + label + "](" + v.TargetID + ")")
		case *blocktree.Superscript:
			b.WriteString("<sup>" + s.run(v.Run) + "</sup>")
		case *blocktree.Subscript:
			b.WriteString("<sub>" + s.run(v.Run) + "</sub>")
		case *blocktree.LineBreak:
			b.WriteString("  \n")
		}
	}
	return b.String()
}

// escapeMarkdown escapes exactly the characters that are syntactically
// significant in literal Markdown text, nothing more. Converted math
// segments ($...$ or stem:[...]) pass through untouched; escaping their
// command backslashes would corrupt the formula.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

var mathSegmentRe = regexp.MustCompile(`\$[^$\n]+\$|stem:\[[^\]]*\]`)

func escapeMarkdown(s string) string {
	if !mathSegmentRe.MatchString(s) {
		return markdownEscaper.Replace(s)
	}
	var b strings.Builder
	last := 0
	for _, loc := range mathSegmentRe.FindAllStringIndex(s, -1) {
		b.WriteString(markdownEscaper.Replace(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(markdownEscaper.Replace(s[last:]))
	return b.String()
}

var mdOrderedMarkerRe = regexp.MustCompile(`^\d+[.)]\s`)

// guardMarkdownMarker escapes paragraph text whose first characters would
// otherwise re-parse as a heading or list marker.
func guardMarkdownMarker(text string) string {
	if strings.HasPrefix(text, "#") || strings.HasPrefix(text, "- ") || strings.HasPrefix(text, "+ ") {
		return `\` + text
	}
	if m := mdOrderedMarkerRe.FindString(text); m != "" {
		return m[:len(m)-2] + `\` + text[len(m)-2:]
	}
	return text
}

func styleName(s blocktree.ListStyle) string {
	switch s {
	case blocktree.LowerAlpha:
		return "lower-alpha"
	case blocktree.UpperAlpha:
		return "upper-alpha"
	case blocktree.LowerRoman:
		return "lower-roman"
	case blocktree.UpperRoman:
		return "upper-roman"
	default:
		return "arabic"
	}
}
