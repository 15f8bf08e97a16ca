package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
)

// continuationLookahead bounds how far an attachable block may follow a
// `+` continuation marker before it counts as orphaned.
const continuationLookahead = 2

var (
	adocMarkerRe    = regexp.MustCompile(`^(\.+|\*+)\s`)
	adocStyleRe     = regexp.MustCompile(`^\[(?:lower|upper)(?:alpha|roman)\]$`)
	adocImageRe     = regexp.MustCompile(`^image::([^\[]*)\[([^\]]*)\]`)
	adocIncludeRe   = regexp.MustCompile(`^include::([^\[]*)\[`)
	mdMarkerRe      = regexp.MustCompile(`^(\s*)(?:[-*+]|\d+\.)\s`)
	mdSeparatorRe   = regexp.MustCompile(`^\|[-:| ]+\|$`)
	mdImageRe       = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)
	mdIncludeRe     = regexp.MustCompile(`<!-- include: ?(.*?) ?-->`)
	htmlImgRe       = regexp.MustCompile(`<img\s[^>]*>`)
	htmlAttrRe      = regexp.MustCompile(`(src|alt|data-include)="([^"]*)"`)
	htmlIncludeRe   = regexp.MustCompile(`<div[^>]*data-include="([^"]*)"`)
	adocTableDelim  = "|==="
	helpdeskTableRe = regexp.MustCompile(`</?table>`)
)

// continuationRule flags a `+` continuation marker with nothing to attach
// within the lookahead window.
func continuationRule() Rule {
	return Rule{ID: "orphan-continuation", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			if strings.TrimSpace(line) != "+" {
				continue
			}
			attached := false
			for j := i + 1; j <= i+continuationLookahead && j < len(lines); j++ {
				if strings.TrimSpace(lines[j]) != "" {
					attached = true
					break
				}
			}
			if !attached {
				report(core.ValidationIssue{
					Severity:   core.SeverityError,
					Message:    "continuation marker has no content to attach",
					Line:       i + 1,
					Suggestion: "remove the dangling '+' or move the continued block directly after it",
				})
			}
		}
	}}
}

// asciidocNestingRule flags marker depth past the dialect maximum and
// style attributes that are not immediately followed by a list.
func asciidocNestingRule() Rule {
	return Rule{ID: "broken-nesting", Check: func(lines []string, opts core.Options, report func(core.ValidationIssue)) {
		max := opts.EffectiveMaxListDepth()
		for i, line := range lines {
			if m := adocMarkerRe.FindStringSubmatch(line); m != nil && len(m[1]) > max {
				report(core.ValidationIssue{
					Severity:   core.SeverityError,
					Message:    fmt.Sprintf("list marker depth %d exceeds supported maximum %d", len(m[1]), max),
					Line:       i + 1,
					Suggestion: "flatten the deepest levels or raise the nesting limit",
				})
			}
			if adocStyleRe.MatchString(strings.TrimSpace(line)) {
				next := ""
				if i+1 < len(lines) {
					next = lines[i+1]
				}
				if !adocMarkerRe.MatchString(next) {
					report(core.ValidationIssue{
						Severity:   core.SeverityWarning,
						Message:    "list style attribute is not followed by a list",
						Line:       i + 1,
						Suggestion: "place the style attribute on the line directly above the first item",
					})
				}
			}
		}
	}}
}

// asciidocTableRule tracks |=== regions: rows inside must start with the
// cell delimiter, and an opened region must terminate.
func asciidocTableRule() Rule {
	return Rule{ID: "malformed-table", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		openLine := 0 // 1-based, 0 when closed
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == adocTableDelim {
				if openLine == 0 {
					openLine = i + 1
				} else {
					openLine = 0
				}
				continue
			}
			if openLine == 0 || trimmed == "" {
				continue
			}
			if !strings.HasPrefix(trimmed, "|") {
				report(core.ValidationIssue{
					Severity:   core.SeverityError,
					Message:    "table row does not start with the cell delimiter",
					Line:       i + 1,
					Column:     1,
					Suggestion: "prefix the row with '|' or close the table first",
				})
			}
		}
		if openLine != 0 {
			report(core.ValidationIssue{
				Severity:   core.SeverityError,
				Message:    "table region opened but never closed",
				Line:       openLine,
				Suggestion: "add a closing '|===' line",
			})
		}
	}}
}

func asciidocMediaRule() Rule {
	return Rule{ID: "malformed-media", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			m := adocImageRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			reportMedia(report, i+1, strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		}
	}}
}

func asciidocIncludeRule() Rule {
	return Rule{ID: "malformed-include", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			m := adocIncludeRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			if target := strings.TrimSpace(m[1]); target == "" || target == ".adoc" {
				reportEmptyInclude(report, i+1)
			}
		}
	}}
}

// markdownNestingRule derives depth from the indentation column.
func markdownNestingRule() Rule {
	return Rule{ID: "broken-nesting", Check: func(lines []string, opts core.Options, report func(core.ValidationIssue)) {
		max := opts.EffectiveMaxListDepth()
		for i, line := range lines {
			m := mdMarkerRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			depth := len(m[1])/4 + 1
			if depth > max {
				report(core.ValidationIssue{
					Severity:   core.SeverityError,
					Message:    fmt.Sprintf("list indentation depth %d exceeds supported maximum %d", depth, max),
					Line:       i + 1,
					Suggestion: "flatten the deepest levels or raise the nesting limit",
				})
			}
		}
	}}
}

// markdownTableRule checks that every pipe-table has its separator row in
// second position and that rows inside a table region keep the delimiter.
func markdownTableRule() Rule {
	return Rule{ID: "malformed-table", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		inTable := false
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			starts := strings.HasPrefix(trimmed, "|")
			switch {
			case !inTable && starts:
				inTable = true
				next := ""
				if i+1 < len(lines) {
					next = strings.TrimSpace(lines[i+1])
				}
				if !mdSeparatorRe.MatchString(next) {
					report(core.ValidationIssue{
						Severity:   core.SeverityWarning,
						Message:    "table header row is not followed by a separator row",
						Line:       i + 1,
						Suggestion: "insert a |---| separator after the header row",
					})
				}
			case inTable && trimmed == "":
				inTable = false
			case inTable && !starts:
				report(core.ValidationIssue{
					Severity:   core.SeverityError,
					Message:    "table row does not start with the cell delimiter",
					Line:       i + 1,
					Column:     1,
					Suggestion: "prefix the row with '|' or separate it from the table with a blank line",
				})
				inTable = false
			}
		}
	}}
}

func markdownMediaRule() Rule {
	return Rule{ID: "malformed-media", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			for _, m := range mdImageRe.FindAllStringSubmatch(line, -1) {
				reportMedia(report, i+1, strings.TrimSpace(m[2]), strings.TrimSpace(m[1]))
			}
		}
	}}
}

func markdownIncludeRule() Rule {
	return Rule{ID: "malformed-include", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			for _, m := range mdIncludeRe.FindAllStringSubmatch(line, -1) {
				if strings.TrimSpace(m[1]) == "" {
					reportEmptyInclude(report, i+1)
				}
			}
		}
	}}
}

// helpdeskTableRule pairs <table> and </table> tags per line scan.
func helpdeskTableRule() Rule {
	return Rule{ID: "malformed-table", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		openLine := 0
		for i, line := range lines {
			for _, tag := range helpdeskTableRe.FindAllString(line, -1) {
				if tag == "<table>" {
					openLine = i + 1
				} else {
					openLine = 0
				}
			}
		}
		if openLine != 0 {
			report(core.ValidationIssue{
				Severity:   core.SeverityError,
				Message:    "table region opened but never closed",
				Line:       openLine,
				Suggestion: "add the closing </table> tag",
			})
		}
	}}
}

func helpdeskMediaRule() Rule {
	return Rule{ID: "malformed-media", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			for _, img := range htmlImgRe.FindAllString(line, -1) {
				src, alt := "", ""
				for _, attr := range htmlAttrRe.FindAllStringSubmatch(img, -1) {
					switch attr[1] {
					case "src":
						src = attr[2]
					case "alt":
						alt = attr[2]
					}
				}
				reportMedia(report, i+1, strings.TrimSpace(src), strings.TrimSpace(alt))
			}
		}
	}}
}

func helpdeskIncludeRule() Rule {
	return Rule{ID: "malformed-include", Check: func(lines []string, _ core.Options, report func(core.ValidationIssue)) {
		for i, line := range lines {
			for _, m := range htmlIncludeRe.FindAllStringSubmatch(line, -1) {
				if strings.TrimSpace(m[1]) == "" {
					reportEmptyInclude(report, i+1)
				}
			}
		}
	}}
}

// reportMedia applies the shared media policy: an empty target path is an
// error, missing descriptive text only a warning.
func reportMedia(report func(core.ValidationIssue), line int, path, alt string) {
	if path == "" {
		report(core.ValidationIssue{
			Severity:   core.SeverityError,
			Message:    "media reference has an empty target path",
			Line:       line,
			Suggestion: "point the reference at the image file or remove it",
		})
	}
	if alt == "" {
		report(core.ValidationIssue{
			Severity:   core.SeverityWarning,
			Message:    "media reference has no descriptive text",
			Line:       line,
			Suggestion: "add alternative text describing the image",
		})
	}
}

func reportEmptyInclude(report func(core.ValidationIssue), line int) {
	report(core.ValidationIssue{
		Severity:   core.SeverityError,
		Message:    "include reference has an empty target",
		Line:       line,
		Suggestion: "point the include at a snippet target or remove it",
	})
}
