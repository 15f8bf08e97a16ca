package blocktree

import "strings"

// InlineRun is an ordered sequence of inline spans. Adjacent text and
// element spans are uniform siblings; a trailing punctuation span sits
// directly after the span that triggered it, with nothing dropped between.
type InlineRun []InlineSpan

// InlineSpan is the tagged-variant interface for inline nodes.
type InlineSpan interface {
	span()
}

// Text is a literal text span.
type Text struct {
	Value string
}

// Emphasis wraps a run in italic emphasis.
type Emphasis struct {
	Run InlineRun
}

// Strong wraps a run in bold emphasis.
type Strong struct {
	Run InlineRun
}

// Code is literal inline code.
type Code struct {
	Value string
}

// CrossRef is a resolved-later reference to another topic or anchor.
type CrossRef struct {
	TargetID string
	Label    InlineRun
}

// LineBreak is a hard break within a run.
type LineBreak struct{}

// Superscript wraps a run raised above the baseline.
type Superscript struct {
	Run InlineRun
}

// Subscript wraps a run lowered below the baseline.
type Subscript struct {
	Run InlineRun
}

func (*Text) span()        {}
func (*Emphasis) span()    {}
func (*Strong) span()      {}
func (*Code) span()        {}
func (*CrossRef) span()    {}
func (*LineBreak) span()   {}
func (*Superscript) span() {}
func (*Subscript) span()   {}

// PlainText flattens a run to its literal text content, ignoring markup.
func (r InlineRun) PlainText() string {
	var b strings.Builder
	for _, s := range r {
		switch v := s.(type) {
		case *Text:
			b.WriteString(v.Value)
		case *Code:
			b.WriteString(v.Value)
		case *Emphasis:
			b.WriteString(v.Run.PlainText())
		case *Strong:
			b.WriteString(v.Run.PlainText())
		case *CrossRef:
			b.WriteString(v.Label.PlainText())
		case *Superscript:
			b.WriteString(v.Run.PlainText())
		case *Subscript:
			b.WriteString(v.Run.PlainText())
		case *LineBreak:
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PlainText returns the leaf text content of the whole document. It backs
// the content-preservation check: the character count here must match the
// normalized input's, within whitespace-collapsing tolerance.
func (d *Document) PlainText() string {
	var b strings.Builder
	Walk(d, func(bl Block) bool {
		switch v := bl.(type) {
		case *Heading:
			b.WriteString(v.Run.PlainText())
		case *Paragraph:
			b.WriteString(v.Run.PlainText())
		case *Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					b.WriteString(cell.PlainText())
				}
			}
		case *CodeBlock:
			b.WriteString(v.Text)
		case *RawPassthrough:
			b.WriteString(v.Text)
		}
		return true
	})
	return b.String()
}
