package toc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImageRefs(t *testing.T) {
	raw := `<html><body>
<img src="../Resources/Images/one.png" alt="one">
<p>text</p>
<img src="two.png">
<img src="../Resources/Images/one.png">
<img alt="no source">
</body></html>`

	refs := ImageRefs(raw)
	want := []string{"../Resources/Images/one.png", "two.png"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("refs[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestCleanRef(t *testing.T) {
	tests := []struct{ in, want string }{
		{"../../Resources/Images/a.png", "Resources/Images/a.png"},
		{`..\Resources\shot.png`, "Resources/shot.png"},
		{"/Images/b.png", "Images/b.png"},
		{"local.png", "local.png"},
	}
	for _, tt := range tests {
		if got := cleanRef(tt.in); got != tt.want {
			t.Fatalf("cleanRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCandidatePathOrder(t *testing.T) {
	got := candidatePaths("../Images/a.png", "topics", []string{"proj"})
	want := []string{
		filepath.Join("topics", "Images", "a.png"),
		filepath.Join("proj", "Images", "a.png"),
		filepath.Join("proj", "a.png"),
	}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCopierCopy(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, src, "Resources/Images/shot.png", "png-bytes")

	c := NewCopier(dest)
	topicDir := filepath.Join(src, "Content")

	copied, err := c.Copy("../Resources/Images/shot.png", topicDir, []string{src})
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	data, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("reading copy: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("copied content = %q", data)
	}

	// A second reference to the same image resolves without re-copying.
	again, err := c.Copy("../Resources/Images/shot.png", topicDir, []string{src})
	if err != nil {
		t.Fatalf("second Copy: %v", err)
	}
	if again != copied {
		t.Fatalf("dedupe returned %q, want %q", again, copied)
	}
}

func TestCopierMissingImage(t *testing.T) {
	c := NewCopier(t.TempDir())
	if _, err := c.Copy("nowhere.png", t.TempDir(), nil); err == nil {
		t.Fatal("expected an error for an unresolvable reference")
	}
}
