// Master document assembly: one book file of chapter headings and include
// directives, built from the resolved TOC in the target dialect's syntax.
package toc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
)

// BuildMaster renders the book document for a resolved TOC. Each entry
// becomes a heading at its nesting level plus an include directive for
// the converted topic; entries without links contribute only the heading.
func BuildMaster(title string, entries []Entry, opts core.Options) string {
	var b strings.Builder
	switch opts.Dialect {
	case core.DialectMarkdown:
		b.WriteString("# " + title + "\n")
	case core.DialectHelpdesk:
		b.WriteString("<h1>" + title + "</h1>\n")
	default:
		b.WriteString("= " + title + "\n")
	}
	for _, e := range entries {
		writeMasterEntry(&b, e, 1, opts)
	}
	return b.String()
}

func writeMasterEntry(b *strings.Builder, e Entry, level int, opts core.Options) {
	target := strings.TrimSuffix(e.Link, filepath.Ext(e.Link))

	switch opts.Dialect {
	case core.DialectMarkdown:
		b.WriteString("\n" + strings.Repeat("#", level+1) + " " + e.Title + "\n")
		if target != "" {
			fmt.Fprintf(b, "\n<!-- include: %s -->\n", target)
		}
	case core.DialectHelpdesk:
		fmt.Fprintf(b, "\n<h%d>%s</h%d>\n", level+1, e.Title, level+1)
		if target != "" {
			fmt.Fprintf(b, "<div data-include=%q></div>\n", target)
		}
	default:
		b.WriteString("\n" + strings.Repeat("=", level+1) + " " + e.Title + "\n")
		if target != "" {
			fmt.Fprintf(b, "\ninclude::%s.adoc[]\n", target)
		}
	}

	for _, c := range e.Children {
		writeMasterEntry(b, c, level+1, opts)
	}
}
