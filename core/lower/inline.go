package lower

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
	"github.com/gaurav-prasanna/flareconv/core/mathtext"
	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`[\s\x{00a0}]+`)

// lowerInline builds one inline run from ordered sibling nodes. Text nodes
// and inline element nodes are treated uniformly: a text node immediately
// following an inline element is kept adjacent to it, so trailing
// punctuation never detaches from the span that precedes it.
func (e *Engine) lowerInline(nodes []*html.Node, warnings *[]core.Warning) blocktree.InlineRun {
	var run blocktree.InlineRun
	for _, n := range nodes {
		run = append(run, e.inlineSpans(n, warnings)...)
	}
	return tidyRun(run)
}

// inlineSpans lowers a single node to zero or more spans.
func (e *Engine) inlineSpans(n *html.Node, warnings *[]core.Warning) []blocktree.InlineSpan {
	switch n.Type {
	case html.TextNode:
		return e.textSpans(n.Data, warnings)
	case html.ElementNode:
		// handled below
	default:
		return nil
	}

	switch name := strings.ToLower(n.Data); name {
	case "i", "em":
		return wrapRun(n, func(r blocktree.InlineRun) blocktree.InlineSpan { return &blocktree.Emphasis{Run: r} }, e, warnings)
	case "b", "strong":
		return wrapRun(n, func(r blocktree.InlineRun) blocktree.InlineSpan { return &blocktree.Strong{Run: r} }, e, warnings)
	case "sup":
		return wrapRun(n, func(r blocktree.InlineRun) blocktree.InlineSpan { return &blocktree.Superscript{Run: r} }, e, warnings)
	case "sub":
		return wrapRun(n, func(r blocktree.InlineRun) blocktree.InlineSpan { return &blocktree.Subscript{Run: r} }, e, warnings)
	case "code", "tt", "kbd", "samp":
		return []blocktree.InlineSpan{&blocktree.Code{Value: textContent(n)}}
	case "br":
		return []blocktree.InlineSpan{&blocktree.LineBreak{}}
	case "a":
		return e.lowerAnchor(n, warnings)
	case "madcap:xref":
		label := e.lowerInline(childNodes(n), warnings)
		target := dom.GetAttributeOr(n, "href", "")
		if target == "" {
			target = dom.GetAttributeOr(n, "src", "")
		}
		return []blocktree.InlineSpan{&blocktree.CrossRef{TargetID: target, Label: label}}
	case "span", "u", "cite", "abbr", "small":
		// Style-only wrappers dissolve; their children stay ordered
		// siblings of the surrounding run.
		return e.lowerInline(childNodes(n), warnings)
	case "img":
		*warnings = append(*warnings, core.Warning{
			Stage:   "lower",
			Message: "inline image flattened to its alt text",
		})
		return e.textSpans(dom.GetAttributeOr(n, "alt", ""), warnings)
	case "math", "mrow", "msup", "msub", "mfrac", "msqrt", "mi", "mn", "mo", "mtext":
		var b strings.Builder
		if err := html.Render(&b, n); err != nil {
			return e.textSpans(textContent(n), warnings)
		}
		converted, mathWarnings := mathtext.Convert(b.String(), e.math)
		*warnings = append(*warnings, mathWarnings...)
		return []blocktree.InlineSpan{&blocktree.Text{Value: converted}}
	default:
		// Unknown inline wrapper: keep the content, drop the wrapper.
		*warnings = append(*warnings, core.Warning{
			Stage:   "lower",
			Message: "unknown inline element <" + name + "> unwrapped",
		})
		return e.lowerInline(childNodes(n), warnings)
	}
}

// textSpans lowers literal text, probing for math notation first so the
// cheap predicate gates the conversion cost.
func (e *Engine) textSpans(s string, warnings *[]core.Warning) []blocktree.InlineSpan {
	if s == "" {
		return nil
	}
	if mathtext.ContainsMathNotation(s) {
		converted, mathWarnings := mathtext.Convert(s, e.math)
		*warnings = append(*warnings, mathWarnings...)
		return []blocktree.InlineSpan{&blocktree.Text{Value: converted}}
	}
	collapsed := whitespaceRe.ReplaceAllString(s, " ")
	if collapsed == "" {
		return nil
	}
	return []blocktree.InlineSpan{&blocktree.Text{Value: collapsed}}
}

// lowerAnchor lowers <a>. A bare named anchor contributes nothing to the
// run; anything with an href becomes a cross-reference.
func (e *Engine) lowerAnchor(n *html.Node, warnings *[]core.Warning) []blocktree.InlineSpan {
	href := dom.GetAttributeOr(n, "href", "")
	label := e.lowerInline(childNodes(n), warnings)
	if href == "" {
		return label
	}
	return []blocktree.InlineSpan{&blocktree.CrossRef{TargetID: href, Label: label}}
}

// wrapRun lowers a styled wrapper, pushing edge whitespace outside the
// span so markers always sit flush against their content.
func wrapRun(n *html.Node, wrap func(blocktree.InlineRun) blocktree.InlineSpan, e *Engine, warnings *[]core.Warning) []blocktree.InlineSpan {
	inner := e.lowerInline(childNodes(n), warnings)
	if len(inner) == 0 {
		return nil
	}
	var out []blocktree.InlineSpan
	trimmed, leading, trailing := splitEdgeSpace(inner)
	if leading {
		out = append(out, &blocktree.Text{Value: " "})
	}
	if len(trimmed) > 0 {
		out = append(out, wrap(trimmed))
	}
	if trailing {
		out = append(out, &blocktree.Text{Value: " "})
	}
	return out
}

// splitEdgeSpace trims a leading/trailing space off the run's outermost
// text spans, reporting which edges had one.
func splitEdgeSpace(run blocktree.InlineRun) (blocktree.InlineRun, bool, bool) {
	leading, trailing := false, false
	if len(run) == 0 {
		return run, false, false
	}
	if t, ok := run[0].(*blocktree.Text); ok {
		if trimmedVal := strings.TrimLeft(t.Value, " "); trimmedVal != t.Value {
			leading = true
			if trimmedVal == "" {
				run = run[1:]
			} else {
				run[0] = &blocktree.Text{Value: trimmedVal}
			}
		}
	}
	if len(run) > 0 {
		if t, ok := run[len(run)-1].(*blocktree.Text); ok {
			if trimmedVal := strings.TrimRight(t.Value, " "); trimmedVal != t.Value {
				trailing = true
				if trimmedVal == "" {
					run = run[:len(run)-1]
				} else {
					run[len(run)-1] = &blocktree.Text{Value: trimmedVal}
				}
			}
		}
	}
	return run, leading, trailing
}

// tidyRun merges adjacent text spans, collapses the doubled spaces merging
// can create, and trims the run's outer edges.
func tidyRun(run blocktree.InlineRun) blocktree.InlineRun {
	var out blocktree.InlineRun
	for _, s := range run {
		t, isText := s.(*blocktree.Text)
		if !isText {
			out = append(out, s)
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*blocktree.Text); ok {
				merged := prev.Value + t.Value
				merged = strings.ReplaceAll(merged, "  ", " ")
				out[len(out)-1] = &blocktree.Text{Value: merged}
				continue
			}
		}
		out = append(out, &blocktree.Text{Value: t.Value})
	}

	// Trim the outer edges of the whole run.
	if len(out) > 0 {
		if t, ok := out[0].(*blocktree.Text); ok {
			t.Value = strings.TrimLeft(t.Value, " ")
			if t.Value == "" {
				out = out[1:]
			}
		}
	}
	if len(out) > 0 {
		if t, ok := out[len(out)-1].(*blocktree.Text); ok {
			t.Value = strings.TrimRight(t.Value, " ")
			if t.Value == "" {
				out = out[:len(out)-1]
			}
		}
	}
	return out
}
