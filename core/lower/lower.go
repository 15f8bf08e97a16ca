// Package lower implements the Lowerer interface: the single authoritative
// walk of the normalized DOM that produces the Block Tree. There is one
// traversal and one depth rule; emitters consume the result and can never
// re-enter lowering. All traversal state lives in an explicit context value
// threaded through the recursion, never in fields on the engine.
package lower

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
	"github.com/gaurav-prasanna/flareconv/core/mathtext"
	"golang.org/x/net/html"
)

// Engine lowers normalized DOM trees. Its configuration is immutable for
// the engine's lifetime; it carries no per-document state.
type Engine struct {
	math       core.MathConvention
	inferAlpha bool
}

// New creates an Engine targeting the given math convention. inferAlpha
// enables alphabetic list style inference from literal marker text.
func New(math core.MathConvention, inferAlpha bool) *Engine {
	if math == "" {
		math = core.MathLaTeX
	}
	return &Engine{math: math, inferAlpha: inferAlpha}
}

// context is the immutable per-call traversal state. Each recursion level
// derives a new value; nothing is written back up the tree.
type context struct {
	depth       int    // number of enclosing List nodes
	enclosing   string // block kind owning the current children
	prevHeading bool   // immediately preceding sibling lowered to a Heading
}

// Lower walks the normalized tree once and returns the Block Tree.
// The returned document is complete and never mutated afterwards.
func (e *Engine) Lower(root *html.Node) (*blocktree.Document, []core.Warning, error) {
	if root == nil {
		return nil, nil, fmt.Errorf("%w: nil input tree", core.ErrLowering)
	}
	var warnings []core.Warning
	blocks, err := e.lowerChildren(root, context{enclosing: "document"}, &warnings)
	if err != nil {
		return nil, warnings, err
	}
	return &blocktree.Document{Blocks: blocks}, warnings, nil
}

// lowerChildren partitions n's children into blocks. Runs of inline
// content between block elements are folded into paragraphs, so text and
// inline elements are uniform ordered siblings of one run.
func (e *Engine) lowerChildren(n *html.Node, ctx context, warnings *[]core.Warning) ([]blocktree.Block, error) {
	var blocks []blocktree.Block
	var pending []*html.Node // inline nodes awaiting a paragraph flush

	flush := func() {
		run := e.lowerInline(pending, warnings)
		pending = nil
		if len(run) > 0 {
			blocks = append(blocks, &blocktree.Paragraph{Run: run})
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isBlockLevel(c) {
			pending = append(pending, c)
			continue
		}
		flush()
		ctx.prevHeading = endsWithHeading(blocks)
		lowered, err := e.lowerBlock(c, ctx, warnings)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, lowered...)
	}
	flush()
	return blocks, nil
}

// lowerBlock lowers one block-level element. It returns a slice because a
// few containers (plain divs, blockquotes) dissolve into their children.
func (e *Engine) lowerBlock(n *html.Node, ctx context, warnings *[]core.Warning) ([]blocktree.Block, error) {
	name := strings.ToLower(n.Data)
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(name[1] - '0')
		run := e.lowerInline(childNodes(n), warnings)
		return []blocktree.Block{&blocktree.Heading{Level: level, Run: run}}, nil

	case "p":
		if ctx.prevHeading && isAnchorOnly(n) {
			// Flare drops a bookmark anchor right after headings; the
			// heading itself is the anchor in every dialect.
			*warnings = append(*warnings, core.Warning{
				Stage:   "lower",
				Message: "redundant anchor paragraph after heading dropped",
			})
			return nil, nil
		}
		run := e.lowerInline(childNodes(n), warnings)
		if len(run) == 0 {
			return nil, nil
		}
		return []blocktree.Block{&blocktree.Paragraph{Run: run}}, nil

	case "ol", "ul", "dl":
		list, err := e.lowerList(n, ctx, warnings)
		if err != nil {
			return nil, err
		}
		return []blocktree.Block{list}, nil

	case "table":
		t, err := e.lowerTable(n, warnings)
		if err != nil {
			return nil, err
		}
		return []blocktree.Block{t}, nil

	case "pre":
		return []blocktree.Block{lowerCodeBlock(n)}, nil

	case "img":
		return []blocktree.Block{&blocktree.Image{
			Path:    dom.GetAttributeOr(n, "src", ""),
			AltText: dom.GetAttributeOr(n, "alt", ""),
		}}, nil

	case "div":
		class := strings.ToLower(dom.GetAttributeOr(n, "class", ""))
		if target := dom.GetAttributeOr(n, "data-flare-include", ""); target != "" {
			return []blocktree.Block{&blocktree.Include{TargetID: target}}, nil
		}
		if strings.Contains(class, "admonition") {
			return e.lowerAdmonition(n, class, ctx, warnings)
		}
		// Structural wrapper: dissolve into children.
		inner := context{depth: ctx.depth, enclosing: "div"}
		return e.lowerChildren(n, inner, warnings)

	case "blockquote", "section", "article", "aside", "figure":
		inner := context{depth: ctx.depth, enclosing: name}
		return e.lowerChildren(n, inner, warnings)

	case "hr", "br":
		return nil, nil

	default:
		return []blocktree.Block{e.passthrough(n, warnings)}, nil
	}
}

// lowerAdmonition lowers a normalized admonition container into one
// complete Admonition subtree.
func (e *Engine) lowerAdmonition(n *html.Node, class string, ctx context, warnings *[]core.Warning) ([]blocktree.Block, error) {
	kind := blocktree.Note
	switch {
	case strings.Contains(class, "tip"):
		kind = blocktree.Tip
	case strings.Contains(class, "warning"):
		kind = blocktree.Warning
	case strings.Contains(class, "caution"):
		kind = blocktree.Caution
	case strings.Contains(class, "important"):
		kind = blocktree.Important
	}
	inner := context{depth: ctx.depth, enclosing: "admonition"}
	body, err := e.lowerChildren(n, inner, warnings)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		// A label-only marker paragraph normalizes into a container with
		// nothing left inside. The rest of the document is fine; drop the
		// husk and keep going.
		*warnings = append(*warnings, core.Warning{
			Stage:   "lower",
			Message: "admonition container with no body dropped",
		})
		return nil, nil
	}
	return []blocktree.Block{&blocktree.Admonition{Kind: kind, Blocks: body}}, nil
}

// passthrough renders an unrecognized element verbatim into exactly one
// RawPassthrough node. Unrecognized input is never split and never dropped.
func (e *Engine) passthrough(n *html.Node, warnings *[]core.Warning) blocktree.Block {
	// Math notation is rewritten in text content and whole MathML subtrees
	// only. Attribute values stay exactly as authored; a src like
	// "shot-1e5.png" is a filename, not a formula.
	e.convertRawMath(n, warnings)
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		b.Reset()
		b.WriteString(textContent(n))
	}
	*warnings = append(*warnings, core.Warning{
		Stage:   "lower",
		Message: fmt.Sprintf("unrecognized element <%s> passed through verbatim", strings.ToLower(n.Data)),
	})
	return &blocktree.RawPassthrough{Text: b.String()}
}

// convertRawMath rewrites math notation under n in place. Text nodes are
// converted individually; a <math> subtree is reduced as a unit and
// replaced by its textual encoding.
func (e *Engine) convertRawMath(n *html.Node, warnings *[]core.Warning) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.TextNode && mathtext.ContainsMathNotation(c.Data):
			converted, mathWarnings := mathtext.Convert(c.Data, e.math)
			*warnings = append(*warnings, mathWarnings...)
			c.Data = converted
		case c.Type == html.ElementNode && strings.EqualFold(c.Data, "math"):
			var mb strings.Builder
			if err := html.Render(&mb, c); err == nil {
				converted, mathWarnings := mathtext.Convert(mb.String(), e.math)
				*warnings = append(*warnings, mathWarnings...)
				n.InsertBefore(&html.Node{Type: html.TextNode, Data: converted}, c)
				n.RemoveChild(c)
			}
		case c.Type == html.ElementNode:
			e.convertRawMath(c, warnings)
		}
		c = next
	}
}

// lowerCodeBlock extracts a <pre> block, reading the language hint from
// the common language-/lang- class patterns on the inner <code>.
func lowerCodeBlock(n *html.Node) *blocktree.CodeBlock {
	code := n
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && strings.ToLower(c.Data) == "code" {
			code = c
			break
		}
	}
	text := textContent(code)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return &blocktree.CodeBlock{Language: languageHint(code), Text: text}
}

func languageHint(code *html.Node) string {
	for _, cl := range strings.Fields(dom.GetAttributeOr(code, "class", "")) {
		cl = strings.ToLower(cl)
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(cl, prefix) {
				return strings.TrimPrefix(cl, prefix)
			}
		}
	}
	return ""
}

// lowerTable lowers a table subtree. A table without a single row cannot
// be represented and is the one structure worth failing the document for.
func (e *Engine) lowerTable(n *html.Node, warnings *[]core.Warning) (*blocktree.Table, error) {
	var rows []blocktree.TableRow
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch strings.ToLower(c.Data) {
			case "thead", "tbody", "tfoot":
				walk(c)
			case "tr":
				var cells []blocktree.InlineRun
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type != html.ElementNode {
						continue
					}
					switch strings.ToLower(td.Data) {
					case "td", "th":
						cells = append(cells, e.lowerInline(childNodes(td), warnings))
					}
				}
				rows = append(rows, blocktree.TableRow{Cells: cells})
			}
		}
	}
	walk(n)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table with no rows", core.ErrLowering)
	}
	return &blocktree.Table{Rows: rows}, nil
}

func isAnchorOnly(p *html.Node) bool {
	seen := false
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == html.ElementNode && strings.ToLower(c.Data) == "a" &&
			dom.GetAttributeOr(c, "href", "") == "" && strings.TrimSpace(textContent(c)) == "":
			seen = true
		default:
			return false
		}
	}
	return seen
}

// isBlockLevel reports whether a node starts a new block during child
// partitioning. Everything else joins the current inline run.
func isBlockLevel(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch strings.ToLower(n.Data) {
	case "h1", "h2", "h3", "h4", "h5", "h6", "p", "ol", "ul", "dl",
		"table", "pre", "div", "blockquote", "img", "hr",
		"section", "article", "aside", "figure",
		"iframe", "object", "embed", "video", "audio", "svg", "form":
		return true
	}
	return false
}

func endsWithHeading(blocks []blocktree.Block) bool {
	if len(blocks) == 0 {
		return false
	}
	_, ok := blocks[len(blocks)-1].(*blocktree.Heading)
	return ok
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}
