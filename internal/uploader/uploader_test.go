package uploader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rdxcli/rdx/internal/connection"
	"github.com/rdxcli/rdx/internal/jobdoc"
	"github.com/rdxcli/rdx/internal/models"
	"github.com/rdxcli/rdx/internal/rundeck"
	"github.com/rdxcli/rdx/internal/session"
	"github.com/rdxcli/rdx/internal/store"
	"github.com/rdxcli/rdx/internal/ui"
	"github.com/rdxcli/rdx/internal/ui/uitest"
)

const scalarJob = `
name: deploy
uuid: 1d4b15e6
id: 42
sequence:
  commands:
    - script: "echo zero"
    - script: "echo one"
`

type env struct {
	registry *session.Registry
	conn     *connection.Manager
	history  *store.Store
	surface  *uitest.Scripted
	docPath  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "rdx.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	docPath := filepath.Join(t.TempDir(), "deploy.yaml")
	if err := os.WriteFile(docPath, []byte(scalarJob), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	return &env{
		registry: session.NewRegistry(),
		conn:     connection.NewManager(s),
		history:  s,
		surface:  &uitest.Scripted{},
		docPath:  docPath,
	}
}

func importServer(t *testing.T, capture *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*capture = body
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"succeeded":[{"id":"abc","name":"deploy","project":"proj1"}],"failed":[],"skipped":[]}`))
	}))
}

func TestUploadReconcilesPendingSessions(t *testing.T) {
	e := newEnv(t)
	var uploaded []byte
	srv := importServer(t, &uploaded)
	defer srv.Close()
	e.conn.Save("tok", srv.URL, "proj1")

	// Open sessions for commands 0 and 1, edit both temp files, and do
	// NOT trigger any save-sync.
	s0, _ := e.registry.Open(e.docPath, 0, "echo zero", ".sh")
	s1, _ := e.registry.Open(e.docPath, 1, "echo one", ".sh")
	defer os.Remove(s0.TempPath)
	defer os.Remove(s1.TempPath)
	os.WriteFile(s0.TempPath, []byte("echo zero-edited"), 0644)
	os.WriteFile(s1.TempPath, []byte("echo one-edited"), 0644)

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	if err := r.Upload(context.Background(), e.docPath); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	doc, err := jobdoc.Parse(uploaded)
	if err != nil {
		t.Fatalf("Payload not parseable: %v", err)
	}
	if !doc.IsSequence() {
		t.Error("Payload must be wrapped in a sequence even for a scalar job")
	}
	scripts := jobdoc.ListScriptCommands(doc)
	if len(scripts) != 2 {
		t.Fatalf("Expected 2 scripts in payload, got %d", len(scripts))
	}
	if scripts[0].Script != "echo zero-edited" || scripts[1].Script != "echo one-edited" {
		t.Errorf("Sessions not reconciled into payload: %+v", scripts)
	}
	if strings.Contains(string(uploaded), "uuid") || strings.Contains(string(uploaded), "\nid:") {
		t.Errorf("Identity fields must be stripped: %s", uploaded)
	}
	if len(e.surface.Infos) != 1 {
		t.Errorf("Expected one success notification, got %v", e.surface.Infos)
	}
}

func TestUploadPromptsForProjectOnce(t *testing.T) {
	e := newEnv(t)
	var uploaded []byte
	srv := importServer(t, &uploaded)
	defer srv.Close()
	e.conn.Save("tok", srv.URL, "")
	e.surface.Inputs = []string{"proj1"}

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	if err := r.Upload(context.Background(), e.docPath); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	conn, _ := e.conn.Get()
	if conn.Project != "proj1" {
		t.Errorf("Project not persisted, got %q", conn.Project)
	}

	// Second upload must not prompt again (no inputs left, abandonment
	// would fail the call).
	if err := r.Upload(context.Background(), e.docPath); err != nil {
		t.Fatalf("Second upload should reuse the stored project: %v", err)
	}
}

func TestUploadAbandonedProjectPrompt(t *testing.T) {
	e := newEnv(t)
	e.conn.Save("tok", "http://127.0.0.1:1", "")
	// No scripted inputs: the prompt is abandoned

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	err := r.Upload(context.Background(), e.docPath)
	if !errors.Is(err, ui.ErrAbandoned) {
		t.Errorf("Expected ErrAbandoned, got %v", err)
	}
}

func TestUploadWithoutConnection(t *testing.T) {
	e := newEnv(t)

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	err := r.Upload(context.Background(), e.docPath)
	if !errors.Is(err, connection.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestUploadSkipsBrokenSessions(t *testing.T) {
	e := newEnv(t)
	var uploaded []byte
	srv := importServer(t, &uploaded)
	defer srv.Close()
	e.conn.Save("tok", srv.URL, "proj1")

	good, _ := e.registry.Open(e.docPath, 0, "echo zero", ".sh")
	gone, _ := e.registry.Open(e.docPath, 1, "echo one", ".sh")
	defer os.Remove(good.TempPath)
	os.WriteFile(good.TempPath, []byte("echo patched"), 0644)
	os.Remove(gone.TempPath) // temp file lost

	// A session pointing at a slot that no longer holds a script
	stale, _ := e.registry.Open(e.docPath, 9, "x", ".sh")
	defer os.Remove(stale.TempPath)

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	if err := r.Upload(context.Background(), e.docPath); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	scripts := jobdoc.ListScriptCommands(mustParse(t, uploaded))
	if scripts[0].Script != "echo patched" {
		t.Errorf("Good session must still be applied: %+v", scripts)
	}
	if len(e.surface.Warns) != 2 {
		t.Errorf("Expected 2 skip warnings, got %v", e.surface.Warns)
	}
}

func TestUploadFailureRecordsHistory(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("malformed job definition"))
	}))
	defer srv.Close()
	e.conn.Save("tok", srv.URL, "proj1")

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	err := r.Upload(context.Background(), e.docPath)
	if err == nil {
		t.Fatal("Expected upload error")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "malformed job definition") {
		t.Errorf("Status and body must be surfaced: %v", err)
	}

	records, _ := e.history.ListUploads(5)
	if len(records) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(records))
	}
	if records[0].Outcome != models.UploadFailed || records[0].StatusCode != 400 {
		t.Errorf("Unexpected record: %+v", records[0])
	}
	if records[0].Detail != "malformed job definition" {
		t.Errorf("Response body not recorded: %q", records[0].Detail)
	}
}

func TestUploadSuccessRecordsHistory(t *testing.T) {
	e := newEnv(t)
	var uploaded []byte
	srv := importServer(t, &uploaded)
	defer srv.Close()
	e.conn.Save("tok", srv.URL, "proj1")

	r := New(e.registry, rundeck.New, e.conn, e.history, e.surface, nil)
	if err := r.Upload(context.Background(), e.docPath); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	records, _ := e.history.ListUploads(5)
	if len(records) != 1 || records[0].Outcome != models.UploadSucceeded {
		t.Errorf("Expected one succeeded record, got %+v", records)
	}
}

func TestUploadUsesInjectedClient(t *testing.T) {
	e := newEnv(t)
	var uploaded []byte
	srv := importServer(t, &uploaded)
	defer srv.Close()
	// The stored URL is unreachable; only the injected constructor can
	// route the request to the test server.
	e.conn.Save("tok", "http://stored.invalid", "proj1")

	var gotURL, gotToken string
	newClient := func(url, token string) *rundeck.Client {
		gotURL, gotToken = url, token
		return rundeck.New(srv.URL, token)
	}

	r := New(e.registry, newClient, e.conn, e.history, e.surface, nil)
	if err := r.Upload(context.Background(), e.docPath); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if gotURL != "http://stored.invalid" || gotToken != "tok" {
		t.Errorf("Constructor received %q/%q, want stored credentials", gotURL, gotToken)
	}
	if len(uploaded) == 0 {
		t.Error("Injected client was not used for the import")
	}
}

func mustParse(t *testing.T, data []byte) *jobdoc.Document {
	t.Helper()
	doc, err := jobdoc.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}
