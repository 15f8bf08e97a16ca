package toc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/flareconv/core"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadResolvesLinkedTitles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Content/intro.htm", `<html><body><h1>Introduction Topic</h1></body></html>`)
	tocPath := writeFile(t, root, "Project/TOCs/master.fltoc", `<?xml version="1.0" encoding="utf-8"?>
<CatapultToc>
  <TocEntry Title="[%=System.LinkedTitle%]" Link="/Content/intro.htm">
    <TocEntry Title="Fixed Child" Link="/Content/child.htm" />
  </TocEntry>
  <TocEntry Title="Unlinked Section" />
</CatapultToc>`)

	entries, err := Load(tocPath, root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Title != "Introduction Topic" {
		t.Fatalf("linked title = %q, want the topic's heading", entries[0].Title)
	}
	if entries[0].Link != "Content/intro.htm" {
		t.Fatalf("link = %q", entries[0].Link)
	}
	if len(entries[0].Children) != 1 || entries[0].Children[0].Title != "Fixed Child" {
		t.Fatalf("children = %#v", entries[0].Children)
	}
	if entries[1].Title != "Unlinked Section" || entries[1].Link != "" {
		t.Fatalf("unlinked entry = %#v", entries[1])
	}
}

func TestLoadLinkedTitleFallsBackToFilename(t *testing.T) {
	root := t.TempDir()
	tocPath := writeFile(t, root, "master.fltoc",
		`<CatapultToc><TocEntry Title="[%=System.LinkedTitle%]" Link="/Content/missing-topic.htm" /></CatapultToc>`)

	entries, err := Load(tocPath, root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if entries[0].Title != "missing-topic" {
		t.Fatalf("title = %q, want filename fallback", entries[0].Title)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.fltoc"), ""); err == nil {
		t.Fatal("expected an error for a missing TOC file")
	}
}

func TestBuildMaster(t *testing.T) {
	entries := []Entry{
		{Title: "Basics", Link: "Content/basics.htm", Children: []Entry{
			{Title: "Install", Link: "Content/install.htm"},
		}},
	}

	adoc := BuildMaster("User Guide", entries, core.Options{Dialect: core.DialectAsciiDoc})
	for _, want := range []string{
		"= User Guide\n",
		"== Basics\n",
		"include::Content/basics.adoc[]\n",
		"=== Install\n",
		"include::Content/install.adoc[]\n",
	} {
		if !strings.Contains(adoc, want) {
			t.Fatalf("asciidoc master missing %q:\n%s", want, adoc)
		}
	}

	md := BuildMaster("User Guide", entries, core.Options{Dialect: core.DialectMarkdown})
	for _, want := range []string{
		"# User Guide\n",
		"## Basics\n",
		"<!-- include: Content/basics -->",
		"### Install\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown master missing %q:\n%s", want, md)
		}
	}

	hd := BuildMaster("User Guide", entries, core.Options{Dialect: core.DialectHelpdesk})
	for _, want := range []string{
		"<h1>User Guide</h1>",
		"<h2>Basics</h2>",
		`<div data-include="Content/basics"></div>`,
		"<h3>Install</h3>",
	} {
		if !strings.Contains(hd, want) {
			t.Fatalf("helpdesk master missing %q:\n%s", want, hd)
		}
	}
}

func TestBuildMasterUnlinkedEntry(t *testing.T) {
	out := BuildMaster("Guide", []Entry{{Title: "Section Only"}}, core.Options{Dialect: core.DialectAsciiDoc})
	if !strings.Contains(out, "== Section Only\n") {
		t.Fatalf("heading missing:\n%s", out)
	}
	if strings.Contains(out, "include::") {
		t.Fatalf("unlinked entry must not produce an include:\n%s", out)
	}
}
