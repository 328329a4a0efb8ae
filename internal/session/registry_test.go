package session

import (
	"os"
	"strings"
	"testing"
)

func TestOpenCreatesTempFile(t *testing.T) {
	r := NewRegistry()

	s, err := r.Open("/jobs/deploy.yaml", 2, "echo hi", ".sh")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer os.Remove(s.TempPath)

	if !strings.HasSuffix(s.TempPath, ".sh") {
		t.Errorf("Temp path should carry the extension, got %s", s.TempPath)
	}
	content, err := os.ReadFile(s.TempPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "echo hi" {
		t.Errorf("Expected script content, got %q", content)
	}
	if s.CommandIndex != 2 {
		t.Errorf("Expected index 2, got %d", s.CommandIndex)
	}
}

func TestOpenUniquePaths(t *testing.T) {
	r := NewRegistry()
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		s, err := r.Open("/jobs/deploy.yaml", i, "x", ".py")
		if err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		defer os.Remove(s.TempPath)
		if seen[s.TempPath] {
			t.Fatalf("Temp path reused: %s", s.TempPath)
		}
		seen[s.TempPath] = true
	}
	if r.Len() != 20 {
		t.Errorf("Expected 20 sessions, got %d", r.Len())
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry()

	s, err := r.Open("/jobs/deploy.yaml", 0, "x", ".sh")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer os.Remove(s.TempPath)

	got, ok := r.Lookup(s.TempPath)
	if !ok {
		t.Fatal("Expected session to be found")
	}
	if got.DocumentPath != "/jobs/deploy.yaml" || got.CommandIndex != 0 {
		t.Errorf("Unexpected session: %+v", got)
	}

	if _, ok := r.Lookup("/tmp/not-ours.sh"); ok {
		t.Error("Untracked path should not resolve")
	}
}

func TestForDocument(t *testing.T) {
	r := NewRegistry()

	a, _ := r.Open("/jobs/a.yaml", 0, "x", ".sh")
	b, _ := r.Open("/jobs/a.yaml", 3, "y", ".sh")
	c, _ := r.Open("/jobs/b.yaml", 1, "z", ".sh")
	defer os.Remove(a.TempPath)
	defer os.Remove(b.TempPath)
	defer os.Remove(c.TempPath)

	got := r.ForDocument("/jobs/a.yaml")
	if len(got) != 2 {
		t.Fatalf("Expected 2 sessions for a.yaml, got %d", len(got))
	}
	for _, s := range got {
		if s.DocumentPath != "/jobs/a.yaml" {
			t.Errorf("Wrong document in result: %s", s.DocumentPath)
		}
	}

	if got := r.ForDocument("/jobs/none.yaml"); len(got) != 0 {
		t.Errorf("Expected no sessions, got %d", len(got))
	}
}
