// Package watch turns filesystem writes to session temp files into save
// signals for the sync engine.
package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow collapses the burst of events editors emit per save
// (write, chmod, rename) into one signal.
const debounceWindow = 200 * time.Millisecond

// Watcher observes directories holding session temp files and calls onSave
// once per save. Paths that were never opened as sessions still produce
// signals; the sync engine ignores them.
type Watcher struct {
	fw     *fsnotify.Watcher
	onSave func(path string)
	logger *slog.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time

	wg sync.WaitGroup
}

// New creates a watcher and starts its event loop. A nil logger falls back
// to slog.Default().
func New(onSave func(path string), logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		fw:       fw,
		onSave:   onSave,
		logger:   logger,
		lastSeen: make(map[string]time.Time),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add watches a directory. Watching the directory rather than the file
// itself survives editors that save via rename.
func (w *Watcher) Add(dir string) error {
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// Close stops the event loop and releases the watcher.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if w.debounced(ev.Name) {
				continue
			}
			w.onSave(ev.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// debounced reports whether an event for path arrived within the debounce
// window of the previous one.
func (w *Watcher) debounced(path string) bool {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < debounceWindow {
		return true
	}
	w.lastSeen[path] = now
	return false
}
