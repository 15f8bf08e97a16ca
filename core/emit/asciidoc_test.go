package emit

import (
	"strings"
	"testing"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
)

func text(s string) *blocktree.Text { return &blocktree.Text{Value: s} }

func para(spans ...blocktree.InlineSpan) *blocktree.Paragraph {
	return &blocktree.Paragraph{Run: blocktree.InlineRun(spans)}
}

func item(blocks ...blocktree.Block) blocktree.ListItem {
	return blocktree.ListItem{Blocks: blocks}
}

func emitAdoc(t *testing.T, doc *blocktree.Document, opts core.Options) (string, []core.Warning) {
	t.Helper()
	out, warnings, err := NewAsciiDoc().Emit(doc, opts)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return out, warnings
}

func TestAsciiDocListItem(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Ordered, Items: []blocktree.ListItem{
			item(para(text("Click "), &blocktree.Emphasis{Run: blocktree.InlineRun{text("Delete")}}, text("."))),
		}},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	if out != ". Click _Delete_.\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAsciiDocLiteralFormattingPairsEscaped(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"press *exactly* the _install_ key", `press \*exactly* the \_install_ key`},
		{"2 * 3 * 4", "2 * 3 * 4"},
		{"snake_case_name", "snake_case_name"},
		{`$a_b$ and *bold*`, `$a_b$ and \*bold*`},
	}
	for _, tt := range tests {
		doc := &blocktree.Document{Blocks: []blocktree.Block{para(text(tt.in))}}
		out, _ := emitAdoc(t, doc, core.Options{})
		if out != tt.want+"\n" {
			t.Fatalf("emit %q = %q, want %q", tt.in, out, tt.want+"\n")
		}
	}
}

func TestAsciiDocContinuation(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Ordered, Items: []blocktree.ListItem{
			item(para(text("First paragraph.")), para(text("Second paragraph."))),
		}},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	want := ". First paragraph.\n+\nSecond paragraph.\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestAsciiDocNestedListMarkers(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Ordered, Items: []blocktree.ListItem{
			item(
				para(text("Outer")),
				&blocktree.List{Ordering: blocktree.Unordered, Items: []blocktree.ListItem{
					item(para(text("Inner"))),
				}},
			),
		}},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	want := ". Outer\n** Inner\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestAsciiDocAlphaStyleAttribute(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Ordered, Style: blocktree.LowerAlpha, Items: []blocktree.ListItem{
			item(para(text("First"))),
		}},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	want := "[loweralpha]\n. First\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestAsciiDocDepthCap(t *testing.T) {
	tooDeep := &blocktree.List{Ordering: blocktree.Unordered, Items: []blocktree.ListItem{
		item(para(text("deep"))),
	}}
	mid := &blocktree.List{Ordering: blocktree.Unordered, Items: []blocktree.ListItem{
		item(para(text("mid")), tooDeep),
	}}
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Unordered, Items: []blocktree.ListItem{
			item(para(text("top")), mid),
		}},
	}}
	out, warnings := emitAdoc(t, doc, core.Options{MaxListDepth: 2})
	if !strings.Contains(out, "** deep") {
		t.Fatalf("third level should degrade to the capped marker:\n%s", out)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one depth warning", warnings)
	}
}

func TestAsciiDocDefinitionList(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.List{Ordering: blocktree.Definition, Items: []blocktree.ListItem{
			item(
				para(&blocktree.Strong{Run: blocktree.InlineRun{text("Widget")}}),
				para(text("A small part.")),
			),
		}},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	want := "Widget:: A small part.\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestAsciiDocAdmonitionForms(t *testing.T) {
	single := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Admonition{Kind: blocktree.Note, Blocks: []blocktree.Block{
			para(text("Keep backups.")),
		}},
	}}
	out, _ := emitAdoc(t, single, core.Options{})
	if out != "NOTE: Keep backups.\n" {
		t.Fatalf("single-paragraph form: got %q", out)
	}

	multi := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Admonition{Kind: blocktree.Warning, Blocks: []blocktree.Block{
			para(text("First.")),
			para(text("Second.")),
		}},
	}}
	out, _ = emitAdoc(t, multi, core.Options{})
	want := "[WARNING]\n====\nFirst.\n\nSecond.\n====\n"
	if out != want {
		t.Fatalf("block form: got %q, want %q", out, want)
	}
}

func TestAsciiDocTable(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Table{Rows: []blocktree.TableRow{
			{Cells: []blocktree.InlineRun{{text("Name")}, {text("Qty")}}},
			{Cells: []blocktree.InlineRun{{text("Widget")}, {text("2")}}},
		}},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	want := "|===\n|Name |Qty \n\n|Widget |2 \n|===\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	out, _ = emitAdoc(t, doc, core.Options{TableStyle: core.TableStyleNone})
	if !strings.HasPrefix(out, "[frame=none,grid=none]\n|===") {
		t.Fatalf("frameless style attribute missing:\n%s", out)
	}
}

func TestAsciiDocRaggedTablePadded(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Table{Rows: []blocktree.TableRow{
			{Cells: []blocktree.InlineRun{{text("a")}, {text("b")}}},
			{Cells: []blocktree.InlineRun{{text("c")}}},
		}},
	}}
	out, warnings := emitAdoc(t, doc, core.Options{})
	if strings.Count(out, "|") != strings.Count("|===\n|a |b \n\n|c | \n|===\n", "|") {
		t.Fatalf("short row not padded:\n%q", out)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "ragged") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestAsciiDocCodeBlock(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.CodeBlock{Language: "go", Text: "x := 1"},
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	want := "[source,go]\n----\nx := 1\n----\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestAsciiDocGuardLeadingMarker(t *testing.T) {
	tests := []struct{ in, want string }{
		{". Not a list item", "{empty}. Not a list item"},
		{"* Not a bullet", "{empty}* Not a bullet"},
		{"+", "{empty}+"},
		{"Ordinary text.", "Ordinary text."},
	}
	for _, tt := range tests {
		doc := &blocktree.Document{Blocks: []blocktree.Block{para(text(tt.in))}}
		out, _ := emitAdoc(t, doc, core.Options{})
		if out != tt.want+"\n" {
			t.Fatalf("guard(%q) = %q, want %q", tt.in, out, tt.want+"\n")
		}
	}
}

func TestAsciiDocCrossRefs(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		para(
			&blocktree.CrossRef{TargetID: "install.htm#setup", Label: blocktree.InlineRun{text("setup")}},
			text(" and "),
			&blocktree.CrossRef{TargetID: "https://example.com/docs", Label: blocktree.InlineRun{text("docs")}},
		),
	}}
	out, _ := emitAdoc(t, doc, core.Options{})
	if !strings.Contains(out, "<<setup,setup>>") {
		t.Fatalf("internal target not rendered as xref:\n%s", out)
	}
	if !strings.Contains(out, "link:https://example.com/docs[docs]") {
		t.Fatalf("external target not rendered as link macro:\n%s", out)
	}
}

func TestAsciiDocEmitIsPure(t *testing.T) {
	doc := &blocktree.Document{Blocks: []blocktree.Block{
		&blocktree.Heading{Level: 1, Run: blocktree.InlineRun{text("Title")}},
		&blocktree.List{Ordering: blocktree.Ordered, Items: []blocktree.ListItem{
			item(para(text("One")), para(text("More"))),
		}},
	}}
	first, _ := emitAdoc(t, doc, core.Options{})
	second, _ := emitAdoc(t, doc, core.Options{})
	if first != second {
		t.Fatalf("emit not byte-identical:\n%q\n%q", first, second)
	}
}
