// Package output handles file naming and writing for FlareConv results.
// Single-file conversions land next to each other in the output directory;
// batch conversions mirror the source tree structure.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes converted documents to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WriteFlat writes a single document's output, named after the source
// file. Example: Content/intro.htm → intro.adoc
func (w *Writer) WriteFlat(sourcePath string, data []byte, ext string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	path := filepath.Join(w.OutputDir, name+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteMirrored writes batch output, mirroring the source tree below
// root. Example: root=Content, source=Content/guide/intro.htm →
// <out>/guide/intro.adoc
func (w *Writer) WriteMirrored(root, sourcePath string, data []byte, ext string) (string, error) {
	rel, err := filepath.Rel(root, sourcePath)
	if err != nil {
		rel = filepath.Base(sourcePath)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	fullPath := filepath.Join(w.OutputDir, rel+ext)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", filepath.Dir(fullPath), err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}
