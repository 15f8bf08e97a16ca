package lower

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
	"golang.org/x/net/html"
)

// lowerList lowers <ol>, <ul>, and <dl> elements. Each item's children
// are partitioned into a leading inline run (the item's first paragraph)
// and trailing block-level children, appended in document order inside the
// same ListItem. Continuation markup is an emitter decision; lowering only
// records the shape.
func (e *Engine) lowerList(n *html.Node, ctx context, warnings *[]core.Warning) (*blocktree.List, error) {
	name := strings.ToLower(n.Data)
	if name == "dl" {
		return e.lowerDefinitionList(n, ctx, warnings)
	}

	ordering := blocktree.Unordered
	if name == "ol" {
		ordering = blocktree.Ordered
	}
	list := &blocktree.List{
		Ordering: ordering,
		Style:    listStyleOf(n, ordering),
	}

	inner := context{depth: ctx.depth + 1, enclosing: "listitem"}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || strings.ToLower(c.Data) != "li" {
			continue
		}
		blocks, err := e.lowerChildren(c, inner, warnings)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, blocktree.ListItem{Blocks: blocks})
	}
	if e.inferAlpha && list.Ordering == blocktree.Ordered && list.Style == blocktree.Arabic {
		inferAlphaStyle(list)
	}
	return list, nil
}

var alphaMarkerRe = regexp.MustCompile(`^\(?([a-zA-Z])[.)]\s+`)

// inferAlphaStyle detects lists whose items carry literal alphabetic
// markers in their text ("a. ", "(b) "), a Flare export artifact when the
// numbering was styled rather than structural. When every item agrees, the
// markers are stripped and the style recorded on the list instead.
func inferAlphaStyle(list *blocktree.List) {
	if len(list.Items) == 0 {
		return
	}
	lower := false
	for i, item := range list.Items {
		text, ok := leadingText(item)
		if !ok {
			return
		}
		m := alphaMarkerRe.FindStringSubmatch(text)
		if m == nil {
			return
		}
		isLower := m[1][0] >= 'a' && m[1][0] <= 'z'
		if i == 0 {
			lower = isLower
		} else if lower != isLower {
			return
		}
	}
	for _, item := range list.Items {
		p := item.Blocks[0].(*blocktree.Paragraph)
		t := p.Run[0].(*blocktree.Text)
		t.Value = alphaMarkerRe.ReplaceAllString(t.Value, "")
	}
	if lower {
		list.Style = blocktree.LowerAlpha
	} else {
		list.Style = blocktree.UpperAlpha
	}
}

// leadingText returns the first text span of the item's first paragraph.
func leadingText(item blocktree.ListItem) (string, bool) {
	if len(item.Blocks) == 0 {
		return "", false
	}
	p, ok := item.Blocks[0].(*blocktree.Paragraph)
	if !ok || len(p.Run) == 0 {
		return "", false
	}
	t, ok := p.Run[0].(*blocktree.Text)
	if !ok {
		return "", false
	}
	return t.Value, true
}

// lowerDefinitionList folds dt/dd runs into items: each dt opens an item
// whose first paragraph is the strong term, each following dd contributes
// its blocks to that item.
func (e *Engine) lowerDefinitionList(n *html.Node, ctx context, warnings *[]core.Warning) (*blocktree.List, error) {
	list := &blocktree.List{Ordering: blocktree.Definition}
	inner := context{depth: ctx.depth + 1, enclosing: "listitem"}

	var current *blocktree.ListItem
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch strings.ToLower(c.Data) {
		case "dt":
			if current != nil {
				list.Items = append(list.Items, *current)
			}
			term := e.lowerInline(childNodes(c), warnings)
			current = &blocktree.ListItem{Blocks: []blocktree.Block{
				&blocktree.Paragraph{Run: blocktree.InlineRun{&blocktree.Strong{Run: term}}},
			}}
		case "dd":
			blocks, err := e.lowerChildren(c, inner, warnings)
			if err != nil {
				return nil, err
			}
			if current == nil {
				// dd before any dt: keep the content, not the pairing.
				current = &blocktree.ListItem{}
				*warnings = append(*warnings, core.Warning{
					Stage:   "lower",
					Message: "definition body without a preceding term",
				})
			}
			current.Blocks = append(current.Blocks, blocks...)
		}
	}
	if current != nil {
		list.Items = append(list.Items, *current)
	}
	return list, nil
}

// listStyleOf reads the numbering style from structural hints. An explicit
// list-style-type always wins over the legacy type attribute and class
// hints; absent every hint, ordered lists default to arabic.
func listStyleOf(n *html.Node, ordering blocktree.Ordering) blocktree.ListStyle {
	if ordering != blocktree.Ordered {
		return blocktree.Arabic
	}

	style := strings.ToLower(dom.GetAttributeOr(n, "style", ""))
	if i := strings.Index(style, "list-style-type"); i >= 0 {
		rest := style[i:]
		if _, val, ok := strings.Cut(rest, ":"); ok {
			val, _, _ = strings.Cut(val, ";")
			if s, ok := cssListStyle(strings.TrimSpace(val)); ok {
				return s
			}
		}
	}

	switch dom.GetAttributeOr(n, "type", "") {
	case "a":
		return blocktree.LowerAlpha
	case "A":
		return blocktree.UpperAlpha
	case "i":
		return blocktree.LowerRoman
	case "I":
		return blocktree.UpperRoman
	}

	class := strings.ToLower(dom.GetAttributeOr(n, "class", ""))
	switch {
	case strings.Contains(class, "loweralpha"):
		return blocktree.LowerAlpha
	case strings.Contains(class, "upperalpha"):
		return blocktree.UpperAlpha
	case strings.Contains(class, "lowerroman"):
		return blocktree.LowerRoman
	case strings.Contains(class, "upperroman"):
		return blocktree.UpperRoman
	}
	return blocktree.Arabic
}

func cssListStyle(val string) (blocktree.ListStyle, bool) {
	switch val {
	case "lower-alpha", "lower-latin":
		return blocktree.LowerAlpha, true
	case "upper-alpha", "upper-latin":
		return blocktree.UpperAlpha, true
	case "lower-roman":
		return blocktree.LowerRoman, true
	case "upper-roman":
		return blocktree.UpperRoman, true
	case "decimal":
		return blocktree.Arabic, true
	}
	return blocktree.Arabic, false
}
