// Package pipeline wires the stages together for one document:
// normalize → lower → emit → validate. The sequence is strictly
// synchronous and shares nothing between invocations, so callers may
// convert many documents concurrently without coordination.
package pipeline

import (
	"fmt"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/emit"
	"github.com/gaurav-prasanna/flareconv/core/lower"
	"github.com/gaurav-prasanna/flareconv/core/normalize"
	"github.com/gaurav-prasanna/flareconv/core/validate"
)

// Convert runs the full pipeline for one document. Warnings and issues
// come back as data; the only error cases are unreadable input and the
// fatal lowering class, both scoped to this document.
func Convert(rawHTML string, sourcePath string, opts core.Options) (core.Result, error) {
	var result core.Result

	normalizer := normalize.New()
	root, warnings, err := normalizer.Normalize(rawHTML, sourcePath)
	if err != nil {
		return result, fmt.Errorf("normalize: %w", err)
	}
	result.Warnings = append(result.Warnings, warnings...)

	engine := lower.New(opts.Math, opts.InferAlpha)
	doc, warnings, err := engine.Lower(root)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return result, fmt.Errorf("lower: %w", err)
	}

	emitter, err := emit.ForDialect(opts.Dialect)
	if err != nil {
		return result, err
	}
	content, warnings, err := emitter.Emit(doc, opts)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		return result, fmt.Errorf("emit: %w", err)
	}
	result.Content = content

	if opts.Strictness != core.StrictnessLenient {
		result.Issues = validate.New(opts).Validate(content)
	}
	return result, nil
}

// Extension returns the output file extension for the dialect in opts.
func Extension(opts core.Options) string {
	emitter, err := emit.ForDialect(opts.Dialect)
	if err != nil {
		return ".txt"
	}
	return emitter.Extension()
}
