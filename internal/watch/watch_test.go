package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) save(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func TestWatcherEmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w, err := New(rec.save, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	path := filepath.Join(dir, "script.sh")
	if err := os.WriteFile(path, []byte("echo hi"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rec.count() == 0 {
		t.Fatal("Expected at least one save signal")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	w, err := New(rec.save, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A burst of writes well inside the debounce window
	path := filepath.Join(dir, "script.sh")
	for i := 0; i < 5; i++ {
		os.WriteFile(path, []byte("echo hi"), 0644)
	}

	time.Sleep(500 * time.Millisecond)
	if got := rec.count(); got > 2 {
		t.Errorf("Expected burst to be debounced, got %d signals", got)
	}
}
