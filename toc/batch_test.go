package toc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/flareconv/core"
)

func TestDiscoverTopics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.htm", "<html><body><p>b</p></body></html>")
	writeFile(t, root, "sub/a.html", "<html><body><p>a</p></body></html>")
	writeFile(t, root, "notes.txt", "not a topic")
	writeFile(t, root, "style.css", "p {}")

	paths, err := DiscoverTopics(root)
	if err != nil {
		t.Fatalf("DiscoverTopics: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want the two topic files", paths)
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] > paths[i] {
			t.Fatalf("paths not sorted: %v", paths)
		}
	}
}

func TestConvertAll(t *testing.T) {
	paths := []string{"a.htm", "b.htm", "c.htm"}
	readErr := errors.New("unreadable")
	read := func(path string) (string, error) {
		if path == "b.htm" {
			return "", readErr
		}
		title := strings.TrimSuffix(path, ".htm")
		return fmt.Sprintf("<html><body><h1>%s</h1></body></html>", title), nil
	}

	opts := core.Options{Dialect: core.DialectAsciiDoc}
	results := ConvertAll(context.Background(), paths, opts, 2, read)

	if len(results) != len(paths) {
		t.Fatalf("results = %d, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.SourcePath != paths[i] {
			t.Fatalf("result %d for %q, want %q (order must match input)", i, r.SourcePath, paths[i])
		}
	}
	if !errors.Is(results[1].Err, readErr) {
		t.Fatalf("read failure not reported: %v", results[1].Err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("one bad file must not fail its neighbors: %v, %v", results[0].Err, results[2].Err)
	}
	if !strings.Contains(results[0].Result.Content, "= a") {
		t.Fatalf("converted content missing: %q", results[0].Result.Content)
	}
}

func TestConvertAllFatalDocumentIsIsolated(t *testing.T) {
	paths := []string{"good.htm", "bad.htm"}
	read := func(path string) (string, error) {
		if path == "bad.htm" {
			return "<html><body><table></table></body></html>", nil
		}
		return "<html><body><p>fine</p></body></html>", nil
	}

	results := ConvertAll(context.Background(), paths, core.Options{Dialect: core.DialectMarkdown}, 1, read)
	if results[0].Err != nil {
		t.Fatalf("good document failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, core.ErrLowering) {
		t.Fatalf("bad document err = %v, want ErrLowering", results[1].Err)
	}
}

func TestConvertAllDefaultsWorkerCount(t *testing.T) {
	read := func(string) (string, error) {
		return "<html><body><p>x</p></body></html>", nil
	}
	results := ConvertAll(context.Background(), []string{"a.htm"}, core.Options{Dialect: core.DialectAsciiDoc}, 0, read)
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("results = %#v", results)
	}
}
