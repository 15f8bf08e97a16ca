package emit

import (
	"strings"
	"testing"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
)

func emitMd(t *testing.T, doc *blocktree.Document, opts core.Options) (string, []core.Warning) {
	t.Helper()
	out, warnings, err := NewMarkdown().Emit(doc, opts)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return out, warnings
}

func TestMarkdownHeadingAndParagraph(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Heading{Level: 2, Run: blocktree.InlineRun{text("Setup")}},
		para(text("Plain text.")),
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := "## Setup\n\nPlain text.\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownContinuationIndent(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Ordered, Items: []blocktree.ListItem{
			item(para(text("First paragraph.")), para(text("Second paragraph."))),
		}},
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := "1. First paragraph.\n\n   Second paragraph.\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownNestedListIndent(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Unordered, Items: []blocktree.ListItem{
			item(
				para(text("Outer")),
				&blocktree.List{Ordering: blocktree.Unordered, Items: []blocktree.ListItem{
					item(para(text("Inner"))),
				}},
			),
		}},
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := "- Outer\n    - Inner\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownAlphaFallbackWarning(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Ordered, Style: blocktree.LowerAlpha, Items: []blocktree.ListItem{
			item(para(text("First"))),
			item(para(text("Second"))),
		}},
	}}
	out, warnings := emitMd(t, doc, core.Options{})
	want := "1. First\n2. Second\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w.Message, "lower-alpha") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an arabic-fallback warning, got %v", warnings)
	}
}

func TestMarkdownAdmonition(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Admonition{Kind: blocktree.Tip, Blocks: []blocktree.Block{
			para(text("Use shortcuts.")),
		}},
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := "> **Tip:**\n> Use shortcuts.\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownTablePadding(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Table{Rows: []blocktree.TableRow{
			{Cells: []blocktree.InlineRun{{text("Name")}, {text("Qty")}}},
			{Cells: []blocktree.InlineRun{{text("Widget")}, {text("2")}}},
		}},
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := "| Name   | Qty |\n" +
		"|--------|-----|\n" +
		"| Widget | 2   |\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownCodeFenceEscalation(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.CodeBlock{Language: "markdown", Text: "```\ninner\n```"},
	}}
	out, _ := emitMd(t, doc, core.Options{})
	if !strings.HasPrefix(out, "````markdown\n") || !strings.HasSuffix(out, "\n````\n") {
		t.Fatalf("fence not escalated:\n%s", out)
	}
}

func TestMarkdownEscaping(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		para(text("literal *stars* and _underscores_")),
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := `literal \*stars\* and \_underscores\_` + "\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownLeadingMarkerGuarded(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"# not a heading", `\# not a heading`},
		{"1. not a list", `1\. not a list`},
		{"12) also not", `12\) also not`},
		{"- not a bullet", `\- not a bullet`},
		{"1.5 volts is fine", "1.5 volts is fine"},
	}
	for _, tt := range tests {
		doc := &blocktree.Document{Blocks: []blocktree.Block{para(text(tt.in))}}
		out, _ := emitMd(t, doc, core.Options{})
		if out != tt.want+"\n" {
			t.Fatalf("emit %q = %q, want %q", tt.in, out, tt.want+"\n")
		}
	}
}

func TestMarkdownMathSegmentsNotEscaped(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		para(text(`value $x_1 \times y$ between *stars*`)),
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := `value $x_1 \times y$ between \*stars\*` + "\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMarkdownRawPassthroughFallback(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.RawPassthrough{Text: "<blockquote><p>quoted words</p></blockquote>"},
	}}
	out, warnings := emitMd(t, doc, core.Options{})
	if !strings.Contains(out, "quoted words") {
		t.Fatalf("passthrough content lost:\n%s", out)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a passthrough warning")
	}

	plain := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.RawPassthrough{Text: "not html at all"},
	}}
	out, _ = emitMd(t, plain, core.Options{})
	if out != "not html at all\n" {
		t.Fatalf("non-HTML passthrough must stay verbatim: %q", out)
	}
}

func TestMarkdownInlineSpans(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		para(
			&blocktree.Strong{Run: blocktree.InlineRun{text("bold")}},
			text(" "),
			&blocktree.Code{Value: "cmd --flag"},
			text(" "),
			&blocktree.CrossRef{TargetID: "topic.htm", Label: blocktree.InlineRun{text("see")}},
			text(" m"),
			&blocktree.Superscript{Run: blocktree.InlineRun{text("2")}},
		),
	}}
	out, _ := emitMd(t, doc, core.Options{})
	want := "**bold** `cmd --flag` [see](topic.htm) m<sup>2</sup>\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
