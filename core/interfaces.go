// Package core defines the pipeline contracts for FlareConv.
// Each stage of the pipeline is a clean, testable interface; the stages
// share nothing but the values passed between them.
package core

import (
	"errors"

	"github.com/gaurav-prasanna/flareconv/core/blocktree"
	"golang.org/x/net/html"
)

// Dialect selects the target markup convention.
type Dialect string

const (
	DialectAsciiDoc Dialect = "asciidoc"
	DialectMarkdown Dialect = "markdown"
	DialectHelpdesk Dialect = "helpdesk"
)

// MathConvention selects how mathematical notation is encoded in output.
type MathConvention string

const (
	MathLaTeX     MathConvention = "latex"     // $...$ delimited
	MathAsciiMath MathConvention = "asciimath" // stem:[...] delimited
)

// Strictness controls how validation issues are treated by callers.
// The core only reports; the exit policy lives in cmd.
type Strictness string

const (
	StrictnessStrict  Strictness = "strict"
	StrictnessNormal  Strictness = "normal"
	StrictnessLenient Strictness = "lenient"
)

// TableStyle selects the frame/grid rendering for dialects that support it.
type TableStyle string

const (
	TableStyleAll  TableStyle = "all"
	TableStyleNone TableStyle = "none"
)

// Options is the per-document configuration record. It travels as a value
// through the pipeline; no stage keeps a copy beyond its call.
type Options struct {
	Dialect     Dialect
	Math        MathConvention
	Strictness  Strictness
	TableStyle  TableStyle
	Collapsible bool // convert dropdown/toggler blocks to collapsible output
	InferAlpha  bool // infer alphabetic list style from marker text
	// MaxListDepth is the deepest nesting the dialect renders with full
	// style fidelity; deeper lists degrade to the nearest style with a
	// warning. Zero means the per-dialect default.
	MaxListDepth int
}

// DefaultMaxListDepth is the nesting limit used when Options.MaxListDepth
// is zero.
const DefaultMaxListDepth = 6

// EffectiveMaxListDepth resolves the configured nesting limit.
func (o Options) EffectiveMaxListDepth() int {
	if o.MaxListDepth > 0 {
		return o.MaxListDepth
	}
	return DefaultMaxListDepth
}

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Warning is a non-fatal event recorded by any stage. It is data, not an
// error: the document still converts.
type Warning struct {
	Stage    string // "normalize", "lower", "emit", "math"
	Message  string
	NodePath string // best-effort location in the source tree, may be empty
}

// ValidationIssue is one finding from the validation engine's re-parse of
// emitted text. Line is 1-based; Column is 0 when unknown.
type ValidationIssue struct {
	RuleID     string
	Severity   Severity
	Message    string
	Line       int
	Column     int
	Suggestion string
}

// Result is the per-document output record.
type Result struct {
	Content  string
	Warnings []Warning
	Issues   []ValidationIssue
}

// ErrLowering marks the one fatal error class: a document whose structure
// cannot be lowered. It aborts that document only, never a batch.
var ErrLowering = errors.New("lowering failed")

// Normalizer repairs authoring-tool structural anomalies in raw markup
// before lowering sees it.
type Normalizer interface {
	Normalize(rawHTML string, sourcePath string) (*html.Node, []Warning, error)
}

// Lowerer walks a normalized tree once and produces the Block Tree.
type Lowerer interface {
	Lower(root *html.Node) (*blocktree.Document, []Warning, error)
}

// Emitter renders a Block Tree to one dialect's text. Emitting the same
// document twice with the same options yields byte-identical output.
type Emitter interface {
	Emit(doc *blocktree.Document, opts Options) (string, []Warning, error)
	// Extension returns the output file extension (e.g. ".adoc", ".md").
	Extension() string
}

// Validator re-parses emitted text for structural defects. It never sees
// the Block Tree and shares no state with any emitter.
type Validator interface {
	Validate(text string) []ValidationIssue
}
