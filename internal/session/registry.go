// Package session tracks live script-edit sessions: the mapping from an
// editable temp file back to the exact command slot it was extracted from.
package session

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Session associates one temp file with its origin command slot. The temp
// path doubles as the session identity.
type Session struct {
	TempPath     string
	DocumentPath string
	CommandIndex int
	CreatedAt    time.Time
}

// Registry is the process-wide session map. Entries are added when a script
// is opened for editing and never evicted in steady state; a stale entry
// just fails a later lookup harmlessly. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byPath map[string]Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]Session)}
}

// Open extracts a script into a uniquely named temp file and records the
// session. On any file error the registry is left untouched and no session
// exists.
func (r *Registry) Open(documentPath string, commandIndex int, script, ext string) (Session, error) {
	f, err := os.CreateTemp("", "rdx-script-*"+ext)
	if err != nil {
		return Session{}, fmt.Errorf("create temp file: %w", err)
	}
	tempPath := f.Name()

	if _, err := f.WriteString(script); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return Session{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return Session{}, fmt.Errorf("close temp file: %w", err)
	}

	s := Session{
		TempPath:     tempPath,
		DocumentPath: documentPath,
		CommandIndex: commandIndex,
		CreatedAt:    time.Now(),
	}

	r.mu.Lock()
	r.byPath[tempPath] = s
	r.mu.Unlock()

	return s, nil
}

// Lookup returns the session for a temp path, if one is tracked.
func (r *Registry) Lookup(tempPath string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPath[tempPath]
	return s, ok
}

// ForDocument returns every session whose owning document matches the
// given path. Matching is an exact string compare; the same file reached
// via two path spellings will not unify.
func (r *Registry) ForDocument(documentPath string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Session
	for _, s := range r.byPath {
		if s.DocumentPath == documentPath {
			out = append(out, s)
		}
	}
	return out
}

// Paths returns every tracked temp-file path.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byPath))
	for p := range r.byPath {
		out = append(out, p)
	}
	return out
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPath)
}
