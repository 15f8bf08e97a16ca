// Package toc provides batch orchestration around the conversion core:
// table-of-contents discovery, master document assembly, directory
// traversal, and image copying. It sits outside the core pipeline and only
// talks to it through the per-document Convert call.
package toc

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core/normalize"
)

// linkedTitlePlaceholder is the authoring-tool marker for "use the first
// heading of the linked topic as this entry's title".
const linkedTitlePlaceholder = "[%=System.LinkedTitle%]"

// Entry is one node of the hierarchical table of contents.
type Entry struct {
	Title    string
	Link     string // path to the topic, relative to the content root
	Children []Entry
}

// xmlEntry mirrors the .fltoc on-disk shape.
type xmlEntry struct {
	Title    string     `xml:"Title,attr"`
	Link     string     `xml:"Link,attr"`
	Children []xmlEntry `xml:"TocEntry"`
}

type catapultToc struct {
	Entries []xmlEntry `xml:"TocEntry"`
}

// Load reads a TOC file and resolves linked-title placeholders by reading
// the leading heading of each referenced topic under contentRoot.
func Load(tocPath string, contentRoot string) ([]Entry, error) {
	data, err := os.ReadFile(tocPath)
	if err != nil {
		return nil, fmt.Errorf("reading TOC: %w", err)
	}

	var parsed catapultToc
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing TOC %s: %w", tocPath, err)
	}

	entries := make([]Entry, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		entries = append(entries, resolveEntry(e, contentRoot))
	}
	return entries, nil
}

func resolveEntry(e xmlEntry, contentRoot string) Entry {
	entry := Entry{
		Title: strings.TrimSpace(e.Title),
		Link:  strings.TrimPrefix(filepath.ToSlash(e.Link), "/"),
	}
	if entry.Title == "" || entry.Title == linkedTitlePlaceholder {
		entry.Title = linkedTitle(entry.Link, contentRoot)
	}
	for _, c := range e.Children {
		entry.Children = append(entry.Children, resolveEntry(c, contentRoot))
	}
	return entry
}

// linkedTitle reads the referenced topic's first heading; the filename is
// the fallback when the topic is missing or headingless.
func linkedTitle(link string, contentRoot string) string {
	fallback := strings.TrimSuffix(filepath.Base(link), filepath.Ext(link))
	if link == "" {
		return fallback
	}
	data, err := os.ReadFile(filepath.Join(contentRoot, filepath.FromSlash(link)))
	if err != nil {
		return fallback
	}
	if title, ok := normalize.ExtractLeadingHeading(string(data)); ok {
		return title
	}
	return fallback
}
