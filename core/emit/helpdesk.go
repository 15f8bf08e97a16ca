// Helpdesk HTML emitter. The target is the sanitized HTML subset that
// help-desk article editors accept: plain headings, lists with
// list-style-type, callout divs for admonitions, and optional
// <details>-based collapsible callouts.
package emit

import (
	"fmt"
	"html"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
)

// HelpdeskEmitter renders a Block Tree as help-desk HTML.
type HelpdeskEmitter struct{}

// NewHelpdesk creates a HelpdeskEmitter.
func NewHelpdesk() *HelpdeskEmitter {
	return &HelpdeskEmitter{}
}

// Extension returns the output file extension.
func (e *HelpdeskEmitter) Extension() string { return ".html" }

// Emit renders doc. All state lives in the per-call emission value.
func (e *HelpdeskEmitter) Emit(doc *blocktree.Document, opts core.Options) (string, []core.Warning, error) {
	s := &hdState{opts: opts}
	var parts []string
	for _, b := range doc.Blocks {
		if text := s.block(b, 0); text != "" {
			parts = append(parts, text)
		}
	}
	out := strings.Join(parts, "\n")
	if out != "" {
		out += "\n"
	}
	return out, s.warnings, nil
}

type hdState struct {
	opts     core.Options
	warnings []core.Warning
}

func (s *hdState) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, core.Warning{Stage: "emit", Message: fmt.Sprintf(format, args...)})
}

func (s *hdState) block(b blocktree.Block, depth int) string {
	switch v := b.(type) {
	case *blocktree.Heading:
		return fmt.Sprintf("<h%d>%s</h%d>", v.Level, s.run(v.Run), v.Level)
	case *blocktree.Paragraph:
		return "<p>" + s.run(v.Run) + "</p>"
	case *blocktree.List:
		return s.list(v, depth)
	case *blocktree.Admonition:
		return s.admonition(v, depth)
	case *blocktree.Table:
		return s.table(v)
	case *blocktree.CodeBlock:
		return s.codeBlock(v)
	case *blocktree.Image:
		if v.Path == "" {
			s.warnf("image with empty path emitted")
		}
		return fmt.Sprintf(`<img src=%q alt=%q>`, v.Path, v.AltText)
	case *blocktree.Include:
		return fmt.Sprintf(`<div data-include=%q></div>`, v.TargetID)
	case *blocktree.RawPassthrough:
		s.warnf("raw passthrough emitted verbatim")
		return v.Text
	default:
		s.warnf("unhandled block %T dropped from output", b)
		return ""
	}
}

var hdListStyleType = map[blocktree.ListStyle]string{
	blocktree.LowerAlpha: "lower-alpha",
	blocktree.UpperAlpha: "upper-alpha",
	blocktree.LowerRoman: "lower-roman",
	blocktree.UpperRoman: "upper-roman",
}

func (s *hdState) list(l *blocktree.List, depth int) string {
	if max := s.opts.EffectiveMaxListDepth(); depth+1 > max {
		s.warnf("list nesting %d exceeds dialect maximum %d", depth+1, max)
	}

	tag := "ul"
	attr := ""
	switch l.Ordering {
	case blocktree.Ordered:
		tag = "ol"
		if style, ok := hdListStyleType[l.Style]; ok {
			attr = fmt.Sprintf(` style="list-style-type: %s"`, style)
		}
	case blocktree.Definition:
		// The helpdesk subset has no <dl>; the bold-term item shape from
		// lowering reads fine as a plain list.
		s.warnf("definition list emitted as unordered list")
	}

	var b strings.Builder
	b.WriteString("<" + tag + attr + ">\n")
	for _, item := range l.Items {
		b.WriteString("<li>")
		for i, bl := range item.Blocks {
			if p, ok := bl.(*blocktree.Paragraph); ok && i == 0 {
				// First paragraph stays inline in the item.
				b.WriteString(s.run(p.Run))
				continue
			}
			b.WriteString("\n" + s.block(bl, depth+1))
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func (s *hdState) admonition(a *blocktree.Admonition, depth int) string {
	label := admonitionLabel(a.Kind)
	class := "callout callout-" + strings.ToLower(label)

	var body []string
	for _, bl := range a.Blocks {
		if text := s.block(bl, depth); text != "" {
			body = append(body, text)
		}
	}
	content := strings.Join(body, "\n")

	if s.opts.Collapsible {
		return fmt.Sprintf("<details class=%q>\n<summary>%s</summary>\n%s\n</details>",
			class, label, content)
	}
	return fmt.Sprintf("<div class=%q>\n<p><strong>%s:</strong></p>\n%s\n</div>", class, label, content)
}

func (s *hdState) table(t *blocktree.Table) string {
	rows, warning := tableCells(t, s.run)
	if warning != nil {
		s.warnings = append(s.warnings, *warning)
	}

	var b strings.Builder
	b.WriteString("<table>\n")
	for i, cells := range rows {
		cellTag := "td"
		if i == 0 && len(rows) > 1 {
			cellTag = "th"
		}
		b.WriteString("<tr>")
		for _, cell := range cells {
			b.WriteString("<" + cellTag + ">" + cell + "</" + cellTag + ">")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")
	return b.String()
}

func (s *hdState) codeBlock(c *blocktree.CodeBlock) string {
	class := ""
	if c.Language != "" {
		class = fmt.Sprintf(` class="language-%s"`, c.Language)
	}
	return "<pre><code" + class + ">" + html.EscapeString(c.Text) + "</code></pre>"
}

func (s *hdState) run(r blocktree.InlineRun) string {
	var b strings.Builder
	for _, span := range r {
		switch v := span.(type) {
		case *blocktree.Text:
			b.WriteString(html.EscapeString(v.Value))
		case *blocktree.Emphasis:
			b.WriteString("<em>" + s.run(v.Run) + "</em>")
		case *blocktree.Strong:
			b.WriteString("<strong>" + s.run(v.Run) + "</strong>")
		case *blocktree.Code:
			b.WriteString("<code>" + html.EscapeString(v.Value) + "</code>")
		case *blocktree.CrossRef:
			label := s.run(v.Label)
			if label == "" {
				label = html.EscapeString(v.TargetID)
			}
			b.WriteString(fmt.Sprintf(`<a href=%q>%s</a>`, v.TargetID, label))
		case *blocktree.Superscript:
			b.WriteString("<sup>" + s.run(v.Run) + "</sup>")
		case *blocktree.Subscript:
			b.WriteString("<sub>" + s.run(v.Run) + "</sub>")
		case *blocktree.LineBreak:
			b.WriteString("<br>\n")
		}
	}
	return b.String()
}
