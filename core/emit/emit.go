// Package emit provides the dialect emitters for the FlareConv pipeline.
// Each emitter is a pure function of the Block Tree and the options value:
// the same document and options always produce byte-identical output, and
// no emitter mutates the tree or depends on another emitter.
package emit

import (
	"fmt"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/blocktree"
)

// ForDialect creates the emitter for the selected dialect.
func ForDialect(d core.Dialect) (core.Emitter, error) {
	switch d {
	case core.DialectAsciiDoc:
		return NewAsciiDoc(), nil
	case core.DialectMarkdown:
		return NewMarkdown(), nil
	case core.DialectHelpdesk:
		return NewHelpdesk(), nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", d)
	}
}

// admonitionLabel is the shared kind → label mapping; dialects wrap the
// label in their own syntax.
func admonitionLabel(kind blocktree.AdmonitionKind) string {
	switch kind {
	case blocktree.Tip:
		return "Tip"
	case blocktree.Warning:
		return "Warning"
	case blocktree.Caution:
		return "Caution"
	case blocktree.Important:
		return "Important"
	default:
		return "Note"
	}
}

// tableCells renders every row's cells through render and right-pads
// ragged rows with empty cells to the widest row. The returned warning is
// non-nil when padding happened; tables degrade, they never fail.
func tableCells(t *blocktree.Table, render func(blocktree.InlineRun) string) ([][]string, *core.Warning) {
	maxCols := 0
	for _, row := range t.Rows {
		if len(row.Cells) > maxCols {
			maxCols = len(row.Cells)
		}
	}
	ragged := false
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, maxCols)
		for i := 0; i < maxCols; i++ {
			if i < len(row.Cells) {
				cells[i] = render(row.Cells[i])
			} else {
				ragged = true
			}
		}
		rows = append(rows, cells)
	}
	if ragged {
		return rows, &core.Warning{
			Stage:   "emit",
			Message: "ragged table rows right-padded with empty cells",
		}
	}
	return rows, nil
}
