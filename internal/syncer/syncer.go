// Package syncer writes saved script edits back into their owning job
// document.
package syncer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rdxcli/rdx/internal/fsx"
	"github.com/rdxcli/rdx/internal/jobdoc"
	"github.com/rdxcli/rdx/internal/session"
	"github.com/rdxcli/rdx/internal/ui"
)

// Engine patches one command slot per save event. Correctness relies on
// the always-fresh document read in HandleSave, not on locking: two syncs
// against the same document serialize through the read-modify-write
// sequence, and the last write wins.
type Engine struct {
	registry *session.Registry
	surface  ui.Surface
	logger   *slog.Logger
}

// New creates a sync engine. A nil logger falls back to slog.Default().
func New(registry *session.Registry, surface ui.Surface, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		surface:  surface,
		logger:   logger,
	}
}

// HandleSave processes one "temp file saved" signal. Saves for paths this
// process never opened are ignored silently. Every failure is reported to
// the surface; none propagates to the caller.
func (e *Engine) HandleSave(tempPath string) {
	sess, ok := e.registry.Lookup(tempPath)
	if !ok {
		e.logger.Debug("save for untracked file ignored", "path", tempPath)
		return
	}

	if err := e.sync(sess); err != nil {
		if errors.Is(err, jobdoc.ErrNoCommands) || errors.Is(err, jobdoc.ErrNotScript) {
			e.surface.Warn(fmt.Sprintf("%s: command %d no longer holds a script, sync skipped", sess.DocumentPath, sess.CommandIndex))
			return
		}
		e.surface.Error(fmt.Sprintf("sync %s: %v", sess.DocumentPath, err))
		return
	}

	e.logger.Info("script synced", "document", sess.DocumentPath, "command", sess.CommandIndex)
	e.surface.Info(fmt.Sprintf("Synced command %d into %s", sess.CommandIndex, sess.DocumentPath))
}

// sync re-reads the owning document fresh from storage, patches the one
// targeted slot, and writes the document back.
func (e *Engine) sync(sess session.Session) error {
	raw, err := os.ReadFile(sess.DocumentPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := jobdoc.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	edited, err := os.ReadFile(sess.TempPath)
	if err != nil {
		return fmt.Errorf("read edited script: %w", err)
	}

	if err := doc.SetScript(sess.CommandIndex, string(edited)); err != nil {
		return err
	}

	out, err := doc.Serialize()
	if err != nil {
		return err
	}
	if err := fsx.WriteFileAtomic(sess.DocumentPath, out, 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
