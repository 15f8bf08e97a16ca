// Package normalize implements the Normalizer interface.
// It repairs Flare-export structural anomalies in the raw HTML before the
// lowering engine sees it:
//  1. Sibling lists that should be one nested list are merged.
//  2. Orphan paragraphs emitted as list-level siblings are reattached to
//     the item they belong to.
//  3. The several admonition markup variants are folded into a single
//     admonition container.
//  4. Snippet/transclusion references become placeholder nodes carrying a
//     stable target id.
//
// Normalization is best-effort: anything it cannot resolve passes through
// unmodified with a recorded warning, never an abort.
package normalize

import (
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/flareconv/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// noiseSelectors are elements removed before normalization. They carry no
// topic content in a Flare export.
var noiseSelectors = []string{
	"script", "style", "noscript", "link", "meta",
	"nav", "footer", "header",
}

// admonitionClasses maps Flare paragraph/span class fragments to the
// canonical admonition kind recorded on the container.
var admonitionClasses = map[string]string{
	"noteindiv": "note", "note": "note",
	"tipindiv": "tip", "tip": "tip",
	"warningindiv": "warning", "warning": "warning",
	"cautionindiv": "caution", "caution": "caution",
	"importantindiv": "important", "important": "important",
}

// admonitionLabels recognizes the inline-label variant ("Note: ...").
var admonitionLabels = map[string]string{
	"note": "note", "tip": "tip", "warning": "warning",
	"caution": "caution", "important": "important",
}

// FlareNormalizer repairs Flare export anomalies in raw HTML.
type FlareNormalizer struct{}

// New creates a FlareNormalizer.
func New() *FlareNormalizer {
	return &FlareNormalizer{}
}

// Normalize parses rawHTML, repairs the known export anomalies, and
// returns the <body> node of the repaired tree. sourcePath is used to
// derive stable target ids for snippet references relative to the topic.
func (n *FlareNormalizer) Normalize(rawHTML string, sourcePath string) (*html.Node, []core.Warning, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var warnings []core.Warning

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	body := doc.Find("body")
	if body.Length() == 0 || len(body.Nodes) == 0 {
		return nil, nil, fmt.Errorf("no body element in %s", sourcePath)
	}
	root := body.Nodes[0]

	resolveSnippets(root, sourcePath, &warnings)
	unwrapConditions(root)
	mergeSiblingLists(root, &warnings)
	reattachOrphanParagraphs(root, &warnings)
	normalizeAdmonitions(doc, &warnings)
	normalizeDropDowns(root)

	return root, warnings, nil
}

// ExtractLeadingHeading returns the text of the first heading in the
// document. The TOC orchestrator uses it to resolve "linked title"
// placeholders without running the full pipeline.
func ExtractLeadingHeading(rawHTML string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}
	h := doc.Find("h1, h2, h3, h4, h5, h6").First()
	if h.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(h.Text())
	return text, text != ""
}

// resolveSnippets rewrites MadCap snippet elements into placeholder divs
// carrying a data-flare-include target id. Content substitution is the
// caller's job; this stage only marks the reference.
func resolveSnippets(root *html.Node, sourcePath string, warnings *[]core.Warning) {
	walkElements(root, func(el *html.Node) {
		name := strings.ToLower(el.Data)
		src := ""
		switch {
		case name == "madcap:snippetblock" || name == "madcap:snippettext":
			src = attrVal(el, "src")
		case attrVal(el, "data-mc-snippet") != "":
			src = attrVal(el, "data-mc-snippet")
		default:
			return
		}

		if src == "" {
			*warnings = append(*warnings, core.Warning{
				Stage:    "normalize",
				Message:  "snippet reference without src left as-is",
				NodePath: nodePath(el),
			})
			return
		}

		el.Data = "div"
		el.DataAtom = atom.Div
		el.Attr = []html.Attribute{{Key: "data-flare-include", Val: snippetTargetID(src, sourcePath)}}
		removeChildren(el)
	})
}

// snippetTargetID derives a stable identifier from the snippet src,
// resolved against the referencing topic's directory.
func snippetTargetID(src, sourcePath string) string {
	src = strings.ReplaceAll(src, "\\", "/")
	if !path.IsAbs(src) && sourcePath != "" {
		src = path.Join(path.Dir(sourcePath), src)
	}
	src = strings.TrimSuffix(src, path.Ext(src))
	return path.Clean(src)
}

// unwrapConditions removes MadCap conditional-text and variable wrappers,
// keeping their children in place. Condition evaluation happened at export
// time; the wrappers are pure noise here.
func unwrapElements(root *html.Node, match func(name string) bool) {
	walkElements(root, func(el *html.Node) {
		if !match(strings.ToLower(el.Data)) {
			return
		}
		parent := el.Parent
		if parent == nil {
			return
		}
		for el.FirstChild != nil {
			c := el.FirstChild
			el.RemoveChild(c)
			parent.InsertBefore(c, el)
		}
		parent.RemoveChild(el)
	})
}

func unwrapConditions(root *html.Node) {
	// madcap:xref survives to lowering, which reads its href; only the
	// wrappers that carry no structure unwrap here.
	unwrapElements(root, func(name string) bool {
		return name == "madcap:conditionaltext" || name == "madcap:variable"
	})
}

// mergeSiblingLists repairs the paragraph-before-list export pattern: a
// list that immediately follows another list at the same level, where the
// second is really a nested continuation of the first list's last item.
// The hint is either a differing list tag or an explicit indent class.
func mergeSiblingLists(root *html.Node, warnings *[]core.Warning) {
	walkElements(root, func(el *html.Node) {
		if !isList(el) {
			return
		}
		prev := prevElement(el)
		if prev == nil || !isList(prev) {
			return
		}
		if !looksNested(prev, el) {
			return
		}
		lastItem := lastChildElement(prev, "li")
		if lastItem == nil {
			*warnings = append(*warnings, core.Warning{
				Stage:    "normalize",
				Message:  "sibling list has no attachment point, left as-is",
				NodePath: nodePath(el),
			})
			return
		}
		el.Parent.RemoveChild(el)
		lastItem.AppendChild(el)
	})
}

// looksNested reports whether second continues the last item of first.
func looksNested(first, second *html.Node) bool {
	if strings.ToLower(first.Data) != strings.ToLower(second.Data) {
		return true // <ol> followed by sibling <ul> (or vice versa)
	}
	class := strings.ToLower(attrVal(second, "class"))
	if strings.Contains(class, "sub") || strings.Contains(class, "nested") || strings.Contains(class, "continue") {
		return true
	}
	style := strings.ToLower(attrVal(second, "style"))
	return strings.Contains(style, "margin-left")
}

// reattachOrphanParagraphs moves paragraph content that visually belongs
// inside a preceding list item back into that item. Two shapes occur:
// a <p> emitted as a direct child of <ol>/<ul> between items, and a
// continuation-classed <p> emitted as a sibling right after the list.
func reattachOrphanParagraphs(root *html.Node, warnings *[]core.Warning) {
	walkElements(root, func(el *html.Node) {
		if !isList(el) {
			return
		}

		// Paragraphs between items.
		for c := el.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode && strings.ToLower(c.Data) == "p" {
				if li := prevElementMatch(c, "li"); li != nil {
					el.RemoveChild(c)
					li.AppendChild(c)
				} else {
					*warnings = append(*warnings, core.Warning{
						Stage:    "normalize",
						Message:  "orphan paragraph precedes every list item, left as-is",
						NodePath: nodePath(c),
					})
				}
			}
			c = next
		}

		// Continuation-classed paragraphs after the list.
		for sib := nextElement(el); sib != nil; {
			if strings.ToLower(sib.Data) != "p" || !isContinuationClass(attrVal(sib, "class")) {
				break
			}
			after := nextElement(sib)
			li := lastChildElement(el, "li")
			if li == nil {
				break
			}
			sib.Parent.RemoveChild(sib)
			li.AppendChild(sib)
			sib = after
		}
	})
}

func isContinuationClass(class string) bool {
	class = strings.ToLower(class)
	return strings.Contains(class, "listcontinue") || strings.Contains(class, "continue") ||
		strings.Contains(class, "indent")
}

// normalizeAdmonitions folds the admonition markup variants into one
// container shape: <div class="admonition KIND"> wrapping the body blocks
// with the inline label span stripped.
func normalizeAdmonitions(doc *goquery.Document, warnings *[]core.Warning) {
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if len(p.Nodes) == 0 {
			return
		}
		node := p.Nodes[0]
		kind := admonitionKindOf(node)
		if kind == "" {
			return
		}

		container := &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "class", Val: "admonition " + kind}},
		}
		parent := node.Parent
		parent.InsertBefore(container, node)

		// The marker paragraph plus trailing body-classed siblings form
		// the admonition body, in document order.
		members := []*html.Node{node}
		for sib := nextElement(node); sib != nil; {
			class := strings.ToLower(attrVal(sib, "class"))
			if strings.ToLower(sib.Data) != "p" || !strings.Contains(class, "notetext") && !strings.Contains(class, "indent") {
				break
			}
			next := nextElement(sib)
			members = append(members, sib)
			sib = next
		}
		for _, m := range members {
			parent.RemoveChild(m)
			container.AppendChild(m)
		}
		stripAdmonitionLabel(node)
	})
}

// admonitionKindOf recognizes a paragraph that opens an admonition: either
// a classed label span, or literal "Kind:" text at the start.
func admonitionKindOf(p *html.Node) string {
	first := firstChildElement(p)
	if first != nil && (strings.ToLower(first.Data) == "span" || strings.ToLower(first.Data) == "b") {
		for frag, kind := range admonitionClasses {
			if strings.Contains(strings.ToLower(attrVal(first, "class")), frag) {
				return kind
			}
		}
		label := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(textOf(first)), ":"))
		if kind, ok := admonitionLabels[label]; ok {
			return kind
		}
	}
	if c := p.FirstChild; c != nil && c.Type == html.TextNode {
		head, _, found := strings.Cut(strings.TrimSpace(c.Data), ":")
		if found {
			if kind, ok := admonitionLabels[strings.ToLower(strings.TrimSpace(head))]; ok {
				return kind
			}
		}
	}
	return ""
}

// stripAdmonitionLabel removes the "Note:" marker from the opening
// paragraph so the kind is carried only by the container class.
func stripAdmonitionLabel(p *html.Node) {
	first := firstChildElement(p)
	if first != nil && (strings.ToLower(first.Data) == "span" || strings.ToLower(first.Data) == "b") {
		label := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(textOf(first)), ":"))
		if _, ok := admonitionLabels[label]; ok {
			p.RemoveChild(first)
			if c := p.FirstChild; c != nil && c.Type == html.TextNode {
				c.Data = strings.TrimLeft(c.Data, ":  ")
			}
			return
		}
	}
	if c := p.FirstChild; c != nil && c.Type == html.TextNode {
		head, rest, found := strings.Cut(c.Data, ":")
		if found {
			if _, ok := admonitionLabels[strings.ToLower(strings.TrimSpace(head))]; ok {
				c.Data = strings.TrimLeft(rest, "  ")
			}
		}
	}
}

// normalizeDropDowns rewrites MadCap dropDown containers into a heading
// followed by the body content. Collapsible rendering, where a dialect
// supports it, is decided by the emitter from its options.
func normalizeDropDowns(root *html.Node) {
	walkElements(root, func(el *html.Node) {
		if strings.ToLower(el.Data) != "madcap:dropdown" {
			return
		}
		parent := el.Parent
		if parent == nil {
			return
		}
		for c := el.FirstChild; c != nil; {
			next := c.NextSibling
			el.RemoveChild(c)
			switch strings.ToLower(c.Data) {
			case "madcap:dropdownhead", "madcap:dropdownhotspot":
				h := &html.Node{Type: html.ElementNode, Data: "h5", DataAtom: atom.H5}
				h.Attr = []html.Attribute{{Key: "class", Val: "dropdown-head"}}
				for c.FirstChild != nil {
					gc := c.FirstChild
					c.RemoveChild(gc)
					h.AppendChild(gc)
				}
				parent.InsertBefore(h, el)
			case "madcap:dropdownbody":
				for c.FirstChild != nil {
					gc := c.FirstChild
					c.RemoveChild(gc)
					parent.InsertBefore(gc, el)
				}
			default:
				parent.InsertBefore(c, el)
			}
			c = next
		}
		parent.RemoveChild(el)
	})
}
