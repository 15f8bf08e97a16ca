// Package blocktree defines the canonical intermediate representation for
// FlareConv. The lowering stage produces exactly one Document per source
// file; every emitter reads it and none of them mutate it.
package blocktree

// Document is an ordered sequence of top-level blocks. It owns its blocks
// exclusively and is never modified after lowering.
type Document struct {
	Blocks []Block
}

// Block is the tagged-variant interface for block-level nodes. Every
// emitter must handle every concrete type; the marker method keeps the
// variant set closed to this package.
type Block interface {
	block()
}

// Ordering distinguishes the three list families.
type Ordering int

const (
	Unordered Ordering = iota
	Ordered
	Definition
)

// ListStyle is the numbering convention for ordered lists.
type ListStyle int

const (
	Arabic ListStyle = iota
	LowerAlpha
	UpperAlpha
	LowerRoman
	UpperRoman
)

// AdmonitionKind is the callout flavor.
type AdmonitionKind int

const (
	Note AdmonitionKind = iota
	Tip
	Warning
	Caution
	Important
)

// Heading is a section heading, level 1..6.
type Heading struct {
	Level int
	Run   InlineRun
}

// Paragraph is a run of inline content forming one block.
type Paragraph struct {
	Run InlineRun
}

// List holds list items. Depth is never stored: it is derived from the
// number of List ancestors (see ListDepth).
type List struct {
	Ordering Ordering
	Style    ListStyle
	Items    []ListItem
}

// ListItem owns an ordered sequence of blocks. An item may hold a
// paragraph, then a nested list, then another paragraph; this is the one
// shape every dialect renders continuations from. Items never contain
// other items directly; nesting is always ListItem → List → ListItem.
type ListItem struct {
	Blocks []Block
}

// Admonition is a complete callout subtree.
type Admonition struct {
	Kind   AdmonitionKind
	Blocks []Block
}

// TableRow is one row of cells.
type TableRow struct {
	Cells []InlineRun
}

// Table is a complete subtree; emitters never need lookahead to close it.
type Table struct {
	Rows []TableRow
}

// CodeBlock is preformatted text with an optional language hint.
type CodeBlock struct {
	Language string // empty when unknown
	Text     string
}

// Image references a media file by path.
type Image struct {
	Path    string
	AltText string // empty when absent
}

// Include marks a snippet/transclusion reference. Substitution is the
// caller's responsibility; lowering only records the target.
type Include struct {
	TargetID string
}

// RawPassthrough preserves unrecognized input verbatim as a single unit.
// It is never split across two nodes and never silently dropped.
type RawPassthrough struct {
	Text string
}

func (*Heading) block()        {}
func (*Paragraph) block()      {}
func (*List) block()           {}
func (*Admonition) block()     {}
func (*Table) block()          {}
func (*CodeBlock) block()      {}
func (*Image) block()          {}
func (*Include) block()        {}
func (*RawPassthrough) block() {}

// ListDepth returns the number of List ancestors strictly above target in
// the document, or -1 when target is not reachable. Depth 0 means a
// top-level list. Depth is always computed, never cached, so there is a
// single depth rule shared by every consumer.
func ListDepth(doc *Document, target *List) int {
	if doc == nil || target == nil {
		return -1
	}
	return depthIn(doc.Blocks, target, 0)
}

func depthIn(blocks []Block, target *List, depth int) int {
	for _, b := range blocks {
		switch v := b.(type) {
		case *List:
			if v == target {
				return depth
			}
			for _, item := range v.Items {
				if d := depthIn(item.Blocks, target, depth+1); d >= 0 {
					return d
				}
			}
		case *Admonition:
			if d := depthIn(v.Blocks, target, depth); d >= 0 {
				return d
			}
		}
	}
	return -1
}

// Walk calls fn for every block in the document in document order,
// descending into list items and admonitions. fn returning false prunes
// the subtree below that block.
func Walk(doc *Document, fn func(Block) bool) {
	walkBlocks(doc.Blocks, fn)
}

func walkBlocks(blocks []Block, fn func(Block) bool) {
	for _, b := range blocks {
		if !fn(b) {
			continue
		}
		switch v := b.(type) {
		case *List:
			for _, item := range v.Items {
				walkBlocks(item.Blocks, fn)
			}
		case *Admonition:
			walkBlocks(v.Blocks, fn)
		}
	}
}
