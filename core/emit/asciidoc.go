// AsciiDoc emitter. Continuation for multi-block list items uses the `+`
// marker, nested lists attach by marker depth, admonitions use the block
// form when the body has more than one block.
package emit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
)

// AsciiDocEmitter renders a Block Tree as AsciiDoc.
type AsciiDocEmitter struct{}

// NewAsciiDoc creates an AsciiDocEmitter.
func NewAsciiDoc() *AsciiDocEmitter {
	return &AsciiDocEmitter{}
}

// Extension returns the output file extension.
func (e *AsciiDocEmitter) Extension() string { return ".adoc" }

// Emit renders doc. All state lives in the per-call emission value.
func (e *AsciiDocEmitter) Emit(doc *blocktree.Document, opts core.Options) (string, []core.Warning, error) {
	s := &adocState{opts: opts}
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

type adocState struct {
	opts     core.Options
	warnings []core.Warning
}

func (s *adocState) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, core.Warning{Stage: "emit", Message: fmt.Sprintf(format, args...)})
}

// block renders one block. depth is the number of enclosing lists; it is
// derived from the recursion, matching the tree's own depth rule.
func (s *adocState) block(b blocktree.Block, depth int) string {
	switch v := b.(type) {
	case *blocktree.Heading:
		return strings.Repeat("=", v.Level) + " " + s.run(v.Run)
	case *blocktree.Paragraph:
		return guardLeadingMarker(s.run(v.Run))
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
		return fmt.Sprintf("image::%s[%s]", v.Path, v.AltText)
	case *blocktree.Include:
		return fmt.Sprintf("include::%s.adoc[]", v.TargetID)
	case *blocktree.RawPassthrough:
		s.warnf("raw passthrough emitted verbatim")
		return v.Text
	default:
		s.warnf("unhandled block %T dropped from output", b)
		return ""
	}
}

var adocStyleAttr = map[blocktree.ListStyle]string{
	blocktree.LowerAlpha: "[loweralpha]",
	blocktree.UpperAlpha: "[upperalpha]",
	blocktree.LowerRoman: "[lowerroman]",
	blocktree.UpperRoman: "[upperroman]",
}

func (s *adocState) list(l *blocktree.List, depth int) string {
	if l.Ordering == blocktree.Definition {
		return s.definitionList(l, depth)
	}

	level := depth + 1
	if max := s.opts.EffectiveMaxListDepth(); level > max {
		s.warnf("list nesting %d exceeds dialect maximum %d, style degraded", level, max)
		level = max
	}
	marker := strings.Repeat("*", level)
	if l.Ordering == blocktree.Ordered {
		marker = strings.Repeat(".", level)
	}

	var lines []string
	if attr, ok := adocStyleAttr[l.Style]; ok && l.Ordering == blocktree.Ordered {
		lines = append(lines, attr)
	}
	for _, item := range l.Items {
		lines = append(lines, s.listItem(item, marker, depth)...)
	}
	return strings.Join(lines, "\n")
}

// listItem renders the item's first paragraph on the marker line and every
// following block either as an attached nested list or behind a `+`
// continuation. The decision comes from the Block Tree shape alone.
func (s *adocState) listItem(item blocktree.ListItem, marker string, depth int) []string {
	var lines []string
	rest := item.Blocks
	if len(rest) > 0 {
		if p, ok := rest[0].(*blocktree.Paragraph); ok {
			lines = append(lines, marker+" "+s.run(p.Run))
			rest = rest[1:]
		}
	}
	if len(lines) == 0 {
		lines = append(lines, marker+" {empty}")
	}
	for _, b := range rest {
		if nested, ok := b.(*blocktree.List); ok {
			lines = append(lines, s.list(nested, depth+1))
			continue
		}
		lines = append(lines, "+", s.block(b, depth))
	}
	return lines
}

func (s *adocState) definitionList(l *blocktree.List, depth int) string {
	var lines []string
	for _, item := range l.Items {
		term := "{empty}"
		rest := item.Blocks
		if len(rest) > 0 {
			if p, ok := rest[0].(*blocktree.Paragraph); ok {
				term = s.run(unwrapStrongTerm(p.Run))
				rest = rest[1:]
			}
		}
		if len(rest) > 0 {
			if p, ok := rest[0].(*blocktree.Paragraph); ok {
				lines = append(lines, term+":: "+s.run(p.Run))
				rest = rest[1:]
			} else {
				lines = append(lines, term+"::")
			}
		} else {
			lines = append(lines, term+"::")
		}
		for _, b := range rest {
			if nested, ok := b.(*blocktree.List); ok {
				lines = append(lines, s.list(nested, depth+1))
				continue
			}
			lines = append(lines, "+", s.block(b, depth))
		}
	}
	return strings.Join(lines, "\n")
}

// unwrapStrongTerm removes the synthetic bold wrapper lowering adds to
// definition terms; the labeled-list syntax already renders terms bold.
func unwrapStrongTerm(run blocktree.InlineRun) blocktree.InlineRun {
	if len(run) == 1 {
		if st, ok := run[0].(*blocktree.Strong); ok {
			return st.Run
		}
	}
	return run
}

var adocAdmonitionTag = map[blocktree.AdmonitionKind]string{
	blocktree.Note:      "NOTE",
	blocktree.Tip:       "TIP",
	blocktree.Warning:   "WARNING",
	blocktree.Caution:   "CAUTION",
	blocktree.Important: "IMPORTANT",
}

func (s *adocState) admonition(a *blocktree.Admonition, depth int) string {
	tag := adocAdmonitionTag[a.Kind]
	if len(a.Blocks) == 1 {
		if p, ok := a.Blocks[0].(*blocktree.Paragraph); ok {
			return tag + ": " + s.run(p.Run)
		}
	}
	var parts []string
	for _, b := range a.Blocks {
		if text := s.block(b, depth); text != "" {
			parts = append(parts, text)
		}
	}
	return "[" + tag + "]\n====\n" + strings.Join(parts, "\n\n") + "\n===="
}

func (s *adocState) table(t *blocktree.Table) string {
	rows, warning := tableCells(t, func(r blocktree.InlineRun) string {
		return strings.ReplaceAll(s.run(r), "|", `\|`)
	})
	if warning != nil {
		s.warnings = append(s.warnings, *warning)
	}

	var b strings.Builder
	if s.opts.TableStyle == core.TableStyleNone {
		b.WriteString("[frame=none,grid=none]\n")
	}
	b.WriteString("|===\n")
	for i, cells := range rows {
		for _, cell := range cells {
			b.WriteString("|" + cell + " ")
		}
		b.WriteString("\n")
		if i == 0 && len(rows) > 1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("|===")
	return b.String()
}

func (s *adocState) codeBlock(c *blocktree.CodeBlock) string {
	head := "----"
	if c.Language != "" {
		head = "[source," + c.Language + "]\n----"
	}
	return head + "\n" + c.Text + "\n----"
}

// run renders an inline run. Markers sit flush against their content;
// lowering already pushed edge whitespace outside every span.
func (s *adocState) run(r blocktree.InlineRun) string {
	var b strings.Builder
	for _, span := range r {
		switch v := span.(type) {
		case *blocktree.Text:
			b.WriteString(escapeAsciiDoc(v.Value))
		case *blocktree.Emphasis:
			b.WriteString("_" + s.run(v.Run) + "_")
		case *blocktree.Strong:
			b.WriteString("*" + s.run(v.Run) + "*")
		case *blocktree.Code:
			b.WriteString("`" + v.Value + "`")
		case *blocktree.CrossRef:
			b.WriteString(s.crossRef(v))
		case *blocktree.Superscript:
			b.WriteString("^" + s.run(v.Run) + "^")
		case *blocktree.Subscript:
			b.WriteString("~" + s.run(v.Run) + "~")
		case *blocktree.LineBreak:
			b.WriteString(" +\n")
		}
	}
	return b.String()
}

// crossRef renders topic-internal references as <<id,label>> and external
// targets as link macros.
func (s *adocState) crossRef(x *blocktree.CrossRef) string {
	label := s.run(x.Label)
	target := x.TargetID
	if id, ok := internalTarget(target); ok {
		if label == "" {
			return "<<" + id + ">>"
		}
		return "<<" + id + "," + label + ">>"
	}
	return "link:" + target + "[" + label + "]"
}

// internalTarget recognizes fragment and topic-file references, reducing
// them to a stable anchor id.
func internalTarget(target string) (string, bool) {
	if strings.HasPrefix(target, "#") {
		return strings.TrimPrefix(target, "#"), true
	}
	for _, ext := range []string{".htm", ".html"} {
		if idx := strings.Index(strings.ToLower(target), ext); idx >= 0 && !strings.Contains(target, "://") {
			id := target[:idx]
			if frag := target[idx+len(ext):]; strings.HasPrefix(frag, "#") {
				id = strings.TrimPrefix(frag, "#")
			}
			return strings.ReplaceAll(id, "/", "-"), true
		}
	}
	return "", false
}

// Constrained formatting pairs in literal text: a star or underscore
// opening against a non-space character and closed by its twin, at a
// position where AsciiDoc would start formatting.
var (
	adocStrongLitRe = regexp.MustCompile(`(^|[^\pL\pN])(\*\S[^*\n]*\*)`)
	adocEmphLitRe   = regexp.MustCompile(`(^|[^\pL\pN_])(_\S[^_\n]*_)`)
)

// escapeAsciiDoc keeps literal formatting pairs in plain text from
// re-parsing as strong or emphasis marks. Converted math segments pass
// through untouched; their bodies use these characters as commands.
func escapeAsciiDoc(s string) string {
	if !strings.ContainsAny(s, "*_") {
		return s
	}
	locs := mathSegmentRe.FindAllStringIndex(s, -1)
	if locs == nil {
		return escapeAdocPairs(s)
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(escapeAdocPairs(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(escapeAdocPairs(s[last:]))
	return b.String()
}

func escapeAdocPairs(s string) string {
	s = adocStrongLitRe.ReplaceAllString(s, `$1\$2`)
	return adocEmphLitRe.ReplaceAllString(s, `$1\$2`)
}

// guardLeadingMarker keeps literal paragraph text that happens to start
// with a list or continuation marker from re-parsing as structure.
func guardLeadingMarker(text string) string {
	for _, m := range []string{". ", "* ", "+ ", "- "} {
		if strings.HasPrefix(text, m) {
			return "{empty}" + text
		}
	}
	if text == "+" {
		return "{empty}+"
	}
	return text
}
