package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/flareconv/core"
)

const sampleTopic = `<html>
<head><title>Deleting Records</title></head>
<body>
<h1>Deleting Records</h1>
<ol>
<li>Open the record list.</li>
<li>Click <i>Delete</i>.</li>
</ol>
<p><span class="noteInDiv">Note:</span> Deleted records cannot be recovered.</p>
</body>
</html>`

func TestConvertAsciiDoc(t *testing.T) {
	result, err := Convert(sampleTopic, "Content/deleting.htm", core.Options{Dialect: core.DialectAsciiDoc})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{
		"= Deleting Records",
		". Open the record list.",
		". Click _Delete_.",
		"NOTE: Deleted records cannot be recovered.",
	} {
		if !strings.Contains(result.Content, want) {
			t.Fatalf("output missing %q:\n%s", want, result.Content)
		}
	}
	if len(result.Issues) != 0 {
		t.Fatalf("clean document produced issues: %v", result.Issues)
	}
}

func TestConvertMarkdown(t *testing.T) {
	result, err := Convert(sampleTopic, "Content/deleting.htm", core.Options{Dialect: core.DialectMarkdown})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{
		"# Deleting Records",
		"1. Open the record list.",
		"2. Click _Delete_.",
		"> **Note:**",
	} {
		if !strings.Contains(result.Content, want) {
			t.Fatalf("output missing %q:\n%s", want, result.Content)
		}
	}
}

func TestConvertHelpdesk(t *testing.T) {
	result, err := Convert(sampleTopic, "Content/deleting.htm", core.Options{Dialect: core.DialectHelpdesk})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{
		"<h1>Deleting Records</h1>",
		"<li>Open the record list.</li>",
		"<em>Delete</em>",
		`<div class="callout callout-note">`,
	} {
		if !strings.Contains(result.Content, want) {
			t.Fatalf("output missing %q:\n%s", want, result.Content)
		}
	}
}

func TestConvertLabelOnlyAdmonitionKeepsDocument(t *testing.T) {
	src := `<html><body><h1>Guide</h1><p>Real content.</p><p><span class="noteInDiv">Note:</span></p></body></html>`
	result, err := Convert(src, "guide.htm", core.Options{Dialect: core.DialectAsciiDoc})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, want := range []string{"= Guide", "Real content."} {
		if !strings.Contains(result.Content, want) {
			t.Fatalf("output missing %q:\n%s", want, result.Content)
		}
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "no body") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a dropped-admonition warning, got %v", result.Warnings)
	}
}

func TestConvertFatalLowering(t *testing.T) {
	src := `<html><body><h1>Broken</h1><table></table></body></html>`
	_, err := Convert(src, "broken.htm", core.Options{Dialect: core.DialectAsciiDoc})
	if !errors.Is(err, core.ErrLowering) {
		t.Fatalf("err = %v, want ErrLowering", err)
	}
}

func TestConvertLenientSkipsValidation(t *testing.T) {
	// An image without alternative text always draws a validation warning.
	src := `<html><body><p>intro</p><img src="shot.png"></body></html>`

	normal, err := Convert(src, "t.htm", core.Options{Dialect: core.DialectAsciiDoc, Strictness: core.StrictnessNormal})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(normal.Issues) == 0 {
		t.Fatal("normal strictness should report the missing alt text")
	}

	lenient, err := Convert(src, "t.htm", core.Options{Dialect: core.DialectAsciiDoc, Strictness: core.StrictnessLenient})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(lenient.Issues) != 0 {
		t.Fatalf("lenient strictness must skip validation, got %v", lenient.Issues)
	}
}

func TestConvertUnknownDialect(t *testing.T) {
	_, err := Convert(sampleTopic, "t.htm", core.Options{Dialect: "docbook"})
	if err == nil {
		t.Fatal("expected an error for the unknown dialect")
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		dialect core.Dialect
		want    string
	}{
		{core.DialectAsciiDoc, ".adoc"},
		{core.DialectMarkdown, ".md"},
		{core.DialectHelpdesk, ".html"},
		{"docbook", ".txt"},
	}
	for _, tt := range tests {
		if got := Extension(core.Options{Dialect: tt.dialect}); got != tt.want {
			t.Fatalf("Extension(%q) = %q, want %q", tt.dialect, got, tt.want)
		}
	}
}
