// Image reference collection and copying. Flare projects scatter images
// across Resources/Images variants, so each reference is resolved against
// an ordered list of candidate locations; a dedupe set keeps shared
// images from copying twice.
package toc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ImageRefs returns the image paths referenced by a topic's raw HTML, in
// document order, deduplicated.
func ImageRefs(rawHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var refs []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		refs = append(refs, src)
	})
	return refs
}

// Copier copies referenced images into the output tree, at most once per
// resolved source file.
type Copier struct {
	DestDir string
	copied  map[string]bool
}

// NewCopier creates a Copier targeting destDir.
func NewCopier(destDir string) *Copier {
	return &Copier{DestDir: destDir, copied: make(map[string]bool)}
}

// Copy resolves ref against the candidate locations derived from topicDir
// and searchDirs and copies the first hit, preserving the reference's
// relative layout under DestDir. A reference that resolves nowhere is
// returned as an error for the caller to report.
func (c *Copier) Copy(ref string, topicDir string, searchDirs []string) (string, error) {
	for _, candidate := range candidatePaths(ref, topicDir, searchDirs) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		dest := filepath.Join(c.DestDir, filepath.FromSlash(cleanRef(ref)))
		if c.copied[dest] {
			return dest, nil
		}
		if err := copyFile(candidate, dest); err != nil {
			return "", err
		}
		c.copied[dest] = true
		return dest, nil
	}
	return "", fmt.Errorf("image %s not found near %s", ref, topicDir)
}

// candidatePaths orders the locations an image reference may resolve to:
// relative to the topic first, then each search dir, then by basename
// under each search dir.
func candidatePaths(ref string, topicDir string, searchDirs []string) []string {
	rel := filepath.FromSlash(cleanRef(ref))
	candidates := []string{filepath.Join(topicDir, rel)}
	for _, dir := range searchDirs {
		candidates = append(candidates, filepath.Join(dir, rel))
	}
	base := filepath.Base(rel)
	for _, dir := range searchDirs {
		candidates = append(candidates, filepath.Join(dir, base))
	}
	return candidates
}

// cleanRef strips the parent-hops Flare puts in front of resource paths.
func cleanRef(ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	for strings.HasPrefix(ref, "../") {
		ref = strings.TrimPrefix(ref, "../")
	}
	return strings.TrimPrefix(ref, "/")
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
