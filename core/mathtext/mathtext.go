// Package mathtext rewrites inline mathematical notation found in topic
// text: MathML fragments, LaTeX-delimited formulas, Unicode math symbols,
// scientific notation, and HTML sub/superscript. It is a pure text-to-text
// transform with no knowledge of the document tree; the lowering engine
// hands it fragments and wraps the results.
package mathtext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	mathmlTagRe = regexp.MustCompile(`(?i)<\s*(math|mi|mn|mo|mrow|msup|msub|mfrac|msqrt|mtext)\b`)
	latexRe     = regexp.MustCompile(`\$[^$\n]+\$|\\\([^)]*\\\)`)
	sciRe       = regexp.MustCompile(`\b(\d+(?:\.\d+)?)[eE]([+-]?\d+)\b`)
	supSubRe    = regexp.MustCompile(`(?i)<(sup|sub)>([^<]*)</(?:sup|sub)>`)
	delimitedRe = regexp.MustCompile(`\$[^$\n]+\$|stem:\[[^\]]*\]`)
)

// unicodeMath is the symbol set that marks a fragment as mathematical.
// Values are the LaTeX encodings; AsciiMath output strips the backslash
// for named symbols where the conventions agree.
var unicodeMath = map[rune]string{
	'≤': `\le`, '≥': `\ge`, '≠': `\ne`, '≈': `\approx`,
	'±': `\pm`, '×': `\times`, '÷': `\div`, '·': `\cdot`,
	'√': `\sqrt`, '∞': `\infty`, '∑': `\sum`, '∏': `\prod`, '∫': `\int`,
	'π': `\pi`, 'θ': `\theta`, 'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`,
	'δ': `\delta`, 'λ': `\lambda`, 'μ': `\mu`, 'σ': `\sigma`, 'Δ': `\Delta`,
	'Ω': `\Omega`, '°': `^\circ`,
}

// ContainsMathNotation reports whether s carries any notation that Convert
// would rewrite. It is a pure predicate with no side effects, cheap enough
// to check every inline run before paying for conversion.
func ContainsMathNotation(s string) bool {
	if mathmlTagRe.MatchString(s) || latexRe.MatchString(s) || sciRe.MatchString(s) || supSubRe.MatchString(s) {
		return true
	}
	for _, r := range s {
		if _, ok := unicodeMath[r]; ok {
			return true
		}
	}
	return false
}

// Convert rewrites all mathematical notation in s into the given output
// convention. Unresolvable residue is left in place and recorded as a
// warning, never discarded.
func Convert(s string, conv core.MathConvention) (string, []core.Warning) {
	var warnings []core.Warning

	// MathML fragments first: they may contain sup/sub elements that the
	// plainer rewrites below would otherwise mangle.
	if mathmlTagRe.MatchString(s) {
		s = convertMathML(s, conv, &warnings)
	}

	// LaTeX-delimited formulas: keep body, re-delimit per target.
	s = latexRe.ReplaceAllStringFunc(s, func(m string) string {
		body := strings.TrimSuffix(strings.TrimPrefix(m, `\(`), `\)`)
		body = strings.Trim(body, "$")
		return delimit(strings.TrimSpace(body), conv)
	})

	// HTML sub/superscript outside MathML.
	s = supSubRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := supSubRe.FindStringSubmatch(m)
		if strings.EqualFold(sub[1], "sup") {
			return script("^", sub[2], conv)
		}
		return script("_", sub[2], conv)
	})

	// Scientific notation becomes an explicit power of ten. Formulas the
	// passes above already delimited keep their bodies as written; wrapping
	// a wrapped formula again would corrupt it.
	s = outsideFormulas(s, func(seg string) string {
		return sciRe.ReplaceAllStringFunc(seg, func(m string) string {
			sub := sciRe.FindStringSubmatch(m)
			if conv == core.MathAsciiMath {
				return delimit(fmt.Sprintf("%s xx 10^(%s)", sub[1], sub[2]), conv)
			}
			return delimit(fmt.Sprintf(`%s \times 10^{%s}`, sub[1], sub[2]), conv)
		})
	})

	// Bare Unicode math symbols.
	if strings.ContainsFunc(s, func(r rune) bool { _, ok := unicodeMath[r]; return ok }) {
		var b strings.Builder
		for _, r := range s {
			if tok, ok := unicodeMath[r]; ok {
				b.WriteString(symbolToken(tok, conv))
			} else {
				b.WriteRune(r)
			}
		}
		s = b.String()
	}

	return s, warnings
}

// outsideFormulas applies f to the stretches of s that are not already
// inside a delimited formula.
func outsideFormulas(s string, f func(string) string) string {
	locs := delimitedRe.FindAllStringIndex(s, -1)
	if locs == nil {
		return f(s)
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(f(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(f(s[last:]))
	return b.String()
}

// delimit wraps a formula body in the target convention's delimiters.
func delimit(body string, conv core.MathConvention) string {
	if conv == core.MathAsciiMath {
		return "stem:[" + body + "]"
	}
	return "$" + body + "$"
}

// script encodes a raised or lowered fragment outside any formula context.
func script(mark, body string, conv core.MathConvention) string {
	body = strings.TrimSpace(body)
	if conv == core.MathAsciiMath || len(body) == 1 {
		return mark + body
	}
	return mark + "{" + body + "}"
}

func symbolToken(latex string, conv core.MathConvention) string {
	if conv != core.MathAsciiMath {
		return latex + " "
	}
	// AsciiMath uses the bare symbol names.
	name := strings.TrimPrefix(strings.TrimPrefix(latex, "^"), `\`)
	switch name {
	case "times":
		return " xx "
	case "cdot":
		return " * "
	case "le", "ge", "ne", "approx", "pm":
		return " " + name + " "
	default:
		return name + " "
	}
}

// convertMathML parses the fragment as HTML (unknown elements survive the
// parse) and reduces each <math> subtree with the fixed substitution rules.
// A parse failure leaves the input untouched with a warning.
func convertMathML(s string, conv core.MathConvention, warnings *[]core.Warning) string {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		*warnings = append(*warnings, core.Warning{
			Stage:   "math",
			Message: fmt.Sprintf("unparseable math fragment left as-is: %v", err),
		})
		return s
	}

	var b strings.Builder
	for _, n := range nodes {
		renderReduced(&b, n, conv, warnings)
	}
	return b.String()
}

// renderReduced writes n to b, replacing MathML subtrees with their
// textual encodings and passing everything else through verbatim.
func renderReduced(b *strings.Builder, n *html.Node, conv core.MathConvention, warnings *[]core.Warning) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if name == "math" || isMathMLElement(name) {
			body := reduceNode(n, conv, warnings)
			b.WriteString(delimit(strings.TrimSpace(body), conv))
			return
		}
		// Non-math elements round-trip verbatim: re-render the tag and
		// recurse into children.
		b.WriteString("<" + n.Data)
		for _, a := range n.Attr {
			fmt.Fprintf(b, " %s=%q", a.Key, a.Val)
		}
		b.WriteString(">")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderReduced(b, c, conv, warnings)
		}
		fmt.Fprintf(b, "</%s>", n.Data)
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderReduced(b, c, conv, warnings)
		}
	}
}

func isMathMLElement(name string) bool {
	switch name {
	case "mi", "mn", "mo", "mrow", "msup", "msub", "mfrac", "msqrt", "mtext":
		return true
	}
	return false
}

// reduceNode applies the element-to-text substitution rules. Variable and
// number tokens pass through, operators gain surrounding space, and
// structure elements get target-specific encodings. Unknown elements keep
// their text content and record a warning.
func reduceNode(n *html.Node, conv core.MathConvention, warnings *[]core.Warning) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	if n.Type != html.ElementNode {
		return reduceChildren(n, conv, warnings, "")
	}

	switch strings.ToLower(n.Data) {
	case "math", "mrow":
		return reduceChildren(n, conv, warnings, "")
	case "mi", "mn", "mtext":
		return reduceChildren(n, conv, warnings, "")
	case "mo":
		return " " + reduceChildren(n, conv, warnings, "") + " "
	case "msup":
		base, arg := firstTwo(n, conv, warnings)
		if conv == core.MathAsciiMath {
			return base + "^(" + arg + ")"
		}
		return base + "^{" + arg + "}"
	case "msub":
		base, arg := firstTwo(n, conv, warnings)
		if conv == core.MathAsciiMath {
			return base + "_(" + arg + ")"
		}
		return base + "_{" + arg + "}"
	case "mfrac":
		num, den := firstTwo(n, conv, warnings)
		if conv == core.MathAsciiMath {
			return "(" + num + ")/(" + den + ")"
		}
		return `\frac{` + num + "}{" + den + "}"
	case "msqrt":
		body := reduceChildren(n, conv, warnings, "")
		if conv == core.MathAsciiMath {
			return "sqrt(" + body + ")"
		}
		return `\sqrt{` + body + "}"
	default:
		*warnings = append(*warnings, core.Warning{
			Stage:   "math",
			Message: fmt.Sprintf("unknown math element <%s> reduced to its text", n.Data),
		})
		return reduceChildren(n, conv, warnings, "")
	}
}

func reduceChildren(n *html.Node, conv core.MathConvention, warnings *[]core.Warning, sep string) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r := reduceNode(c, conv, warnings); r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, sep)
}

// firstTwo reduces the first two element children, which MathML layout
// elements treat as (base, argument) or (numerator, denominator).
func firstTwo(n *html.Node, conv core.MathConvention, warnings *[]core.Warning) (string, string) {
	var out []string
	for c := n.FirstChild; c != nil && len(out) < 2; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, reduceNode(c, conv, warnings))
		}
	}
	for len(out) < 2 {
		out = append(out, "")
	}
	return out[0], out[1]
}
