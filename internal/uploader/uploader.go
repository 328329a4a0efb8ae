// Package uploader reconciles pending edit sessions into a job document
// and submits it to the cluster's import endpoint.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/rdxcli/rdx/internal/connection"
	"github.com/rdxcli/rdx/internal/jobdoc"
	"github.com/rdxcli/rdx/internal/models"
	"github.com/rdxcli/rdx/internal/rundeck"
	"github.com/rdxcli/rdx/internal/session"
	"github.com/rdxcli/rdx/internal/store"
	"github.com/rdxcli/rdx/internal/ui"
)

// Reconciler derives the fully patched upload payload from the session
// registry and the document on disk. It does not depend on the sync engine
// having run: edits saved to temp files are captured even when a
// save-triggered sync failed or raced.
type Reconciler struct {
	registry  *session.Registry
	newClient func(url, token string) *rundeck.Client
	conn      *connection.Manager
	history   *store.Store
	surface   ui.Surface
	logger    *slog.Logger
}

// New creates a reconciler. The client constructor is injected because the
// credentials it needs are only resolved per upload; nil falls back to
// rundeck.New. A nil logger falls back to slog.Default().
func New(registry *session.Registry, newClient func(url, token string) *rundeck.Client, conn *connection.Manager, history *store.Store, surface ui.Surface, logger *slog.Logger) *Reconciler {
	if newClient == nil {
		newClient = rundeck.New
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		registry:  registry,
		newClient: newClient,
		conn:      conn,
		history:   history,
		surface:   surface,
		logger:    logger,
	}
}

// Upload patches every pending session into a fresh read of the document,
// sanitizes it, and posts it to the import endpoint. The project is
// prompted for once when absent and persisted for future calls.
func (r *Reconciler) Upload(ctx context.Context, documentPath string) error {
	conn, err := r.conn.Require()
	if err != nil {
		return err
	}

	project := conn.Project
	if project == "" {
		project, err = r.surface.Input("Rundeck project", false)
		if err != nil {
			return err
		}
		if err := r.conn.SetProject(project); err != nil {
			return fmt.Errorf("persist project: %w", err)
		}
	}

	raw, err := os.ReadFile(documentPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := jobdoc.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	// One unreadable or stale session never aborts the others.
	for _, sess := range r.registry.ForDocument(documentPath) {
		edited, err := os.ReadFile(sess.TempPath)
		if err != nil {
			r.surface.Warn(fmt.Sprintf("session for command %d skipped: %v", sess.CommandIndex, err))
			continue
		}
		if err := doc.SetScript(sess.CommandIndex, string(edited)); err != nil {
			r.surface.Warn(fmt.Sprintf("session for command %d skipped: %v", sess.CommandIndex, err))
			continue
		}
	}

	doc.StripIdentityFields()
	doc.ForceSequence()

	payload, err := doc.Serialize()
	if err != nil {
		return err
	}

	client := r.newClient(conn.URL, conn.Token)
	result, err := client.ImportJobs(ctx, project, payload)
	if err != nil {
		code := 0
		detail := err.Error()
		var statusErr *rundeck.StatusError
		if errors.As(err, &statusErr) {
			code = statusErr.Code
			detail = statusErr.Body
		}
		r.record(documentPath, project, code, models.UploadFailed, detail)
		return fmt.Errorf("upload %s: %w", documentPath, err)
	}

	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped",
		len(result.Succeeded), len(result.Failed), len(result.Skipped))
	r.record(documentPath, project, http.StatusOK, models.UploadSucceeded, summary)

	r.surface.Info(fmt.Sprintf("Uploaded %s to project %s: %s", documentPath, project, summary))
	for _, job := range result.Failed {
		r.surface.Warn(fmt.Sprintf("import failed for %s: %s", job.Name, job.Error))
	}
	return nil
}

// record appends to the upload history; history failures are logged, never
// surfaced, because the upload itself already has an outcome.
func (r *Reconciler) record(documentPath, project string, code int, outcome models.UploadOutcome, detail string) {
	if r.history == nil {
		return
	}
	if _, err := r.history.RecordUpload(documentPath, project, code, outcome, detail); err != nil {
		r.logger.Warn("record upload history", "error", err)
	}
}
