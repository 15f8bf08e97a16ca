// Batch conversion: directory traversal with a bounded worker pool.
// Every document converts independently; one document's fatal error is
// reported in its result and never stops the batch. Cancellation stops
// submitting new documents, in-flight conversions run to completion.
package toc

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/flareconv/core"
	"github.com/gaurav-prasanna/flareconv/core/pipeline"
)

// FileResult is one document's conversion outcome.
type FileResult struct {
	SourcePath string
	Result     core.Result
	Err        error
}

// DiscoverTopics walks root and returns every topic file, sorted for
// deterministic batch order.
func DiscoverTopics(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".htm", ".html":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ConvertAll converts the given topics with up to workers concurrent
// conversions. Results come back in input order; reading the source and
// converting both count as that file's outcome.
func ConvertAll(ctx context.Context, paths []string, opts core.Options, workers int, read func(string) (string, error)) []FileResult {
	if workers <= 0 {
		workers = 4
	}

	results := make([]FileResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				raw, err := read(path)
				if err != nil {
					results[i] = FileResult{SourcePath: path, Err: err}
					continue
				}
				res, err := pipeline.Convert(raw, path, opts)
				results[i] = FileResult{SourcePath: path, Result: res, Err: err}
			}
		}()
	}

submit:
	for i := range paths {
		select {
		case <-ctx.Done():
			break submit
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// Unsubmitted jobs report the cancellation.
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].SourcePath == "" {
				results[i] = FileResult{SourcePath: paths[i], Err: err}
			}
		}
	}
	return results
}
