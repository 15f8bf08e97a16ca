package normalize

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
)

// walkElements visits every element under root in document order. The
// visit list is snapshotted first, so visitors may detach or move the
// current node without breaking the traversal.
func walkElements(root *html.Node, visit func(*html.Node)) {
	var elements []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				elements = append(elements, c)
			}
			collect(c)
		}
	}
	collect(root)
	for _, el := range elements {
		visit(el)
	}
}

func attrVal(n *html.Node, key string) string {
	return dom.GetAttributeOr(n, key, "")
}

func isList(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	name := strings.ToLower(n.Data)
	return name == "ol" || name == "ul" || name == "dl"
}

// prevElement returns the nearest preceding element sibling, skipping
// whitespace-only text nodes.
func prevElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
		if s.Type == html.TextNode && strings.TrimSpace(s.Data) != "" {
			return nil
		}
	}
	return nil
}

// nextElement returns the nearest following element sibling, skipping
// whitespace-only text nodes.
func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
		if s.Type == html.TextNode && strings.TrimSpace(s.Data) != "" {
			return nil
		}
	}
	return nil
}

// prevElementMatch returns the nearest preceding sibling element with the
// given tag name, or nil.
func prevElementMatch(n *html.Node, name string) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && strings.ToLower(s.Data) == name {
			return s
		}
	}
	return nil
}

func firstChildElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return nil
		}
	}
	return nil
}

func lastChildElement(n *html.Node, name string) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode && strings.ToLower(c.Data) == name {
			return c
		}
	}
	return nil
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// textOf flattens the text content beneath n.
func textOf(n *html.Node) string {
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

// nodePath builds a best-effort locator like "body>ol[2]>li[1]" for
// warning messages.
func nodePath(n *html.Node) string {
	var parts []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		idx := 1
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == cur.Data {
				idx++
			}
		}
		parts = append([]string{fmt.Sprintf("%s[%d]", strings.ToLower(cur.Data), idx)}, parts...)
		if strings.ToLower(cur.Data) == "body" {
			break
		}
	}
	return strings.Join(parts, ">")
}
