// Package validate implements the Validator interface: an independent
// line-by-line re-parse of emitted text. It deliberately shares nothing
// with the emitters (no common renderer state, no Block Tree access) so
// it catches emitter bugs instead of rubber-stamping them.
package validate

import (
	"sort"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
)

// Rule is one structural check. Rules are independent and composable:
// running any subset never changes another rule's findings.
type Rule struct {
	ID    string
	Check func(lines []string, opts core.Options, report func(core.ValidationIssue))
}

// Engine runs a fixed rule set for one dialect.
type Engine struct {
	opts  core.Options
	rules []Rule
}

// New creates an Engine with the standard rules for the dialect selected
// in opts.
func New(opts core.Options) *Engine {
	return &Engine{opts: opts, rules: rulesFor(opts.Dialect)}
}

// NewWithRules creates an Engine running exactly the given rules.
func NewWithRules(opts core.Options, rules []Rule) *Engine {
	return &Engine{opts: opts, rules: rules}
}

// Validate reports structural issues in text. It never modifies the text
// and running it twice yields identical results.
func (e *Engine) Validate(text string) []core.ValidationIssue {
	lines := strings.Split(text, "\n")
	var issues []core.ValidationIssue
	for _, r := range e.rules {
		rule := r
		rule.Check(lines, e.opts, func(issue core.ValidationIssue) {
			issue.RuleID = rule.ID
			issues = append(issues, issue)
		})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].RuleID < issues[j].RuleID
	})
	return issues
}

// rulesFor selects the rule set per dialect. Every dialect gets the media
// and include checks; the structural rules follow the dialect's syntax.
func rulesFor(d core.Dialect) []Rule {
	switch d {
	case core.DialectMarkdown:
		return []Rule{
			markdownNestingRule(),
			markdownTableRule(),
			markdownMediaRule(),
			markdownIncludeRule(),
		}
	case core.DialectHelpdesk:
		return []Rule{
			helpdeskTableRule(),
			helpdeskMediaRule(),
			helpdeskIncludeRule(),
		}
	default:
		return []Rule{
			continuationRule(),
			asciidocNestingRule(),
			asciidocTableRule(),
			asciidocMediaRule(),
			asciidocIncludeRule(),
		}
	}
}
