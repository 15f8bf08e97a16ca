// JSON conversion report.
// Serializes one document's conversion outcome (warnings and validation
// issues alongside basic structure counts) for toolchain consumption.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/flareconv/core"
)

// Report is the machine-readable record of one conversion.
type Report struct {
	Source   string                 `json:"source"`
	Dialect  string                 `json:"dialect"`
	Lines    int                    `json:"lines"`
	Warnings []core.Warning         `json:"warnings,omitempty"`
	Issues   []core.ValidationIssue `json:"issues,omitempty"`
}

// RenderReport builds the JSON report for one converted document.
func RenderReport(source string, dialect core.Dialect, result core.Result) ([]byte, error) {
	report := Report{
		Source:   source,
		Dialect:  string(dialect),
		Lines:    strings.Count(result.Content, "\n"),
		Warnings: result.Warnings,
		Issues:   result.Issues,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}
