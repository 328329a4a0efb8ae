// Package store provides SQLite-backed persistence for rdx: the named
// connection settings and the upload history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rdxcli/rdx/internal/models"
	_ "modernc.org/sqlite"
)

// Store provides access to the rdx SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		document_path TEXT NOT NULL,
		project TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Settings Operations ---

// SetSetting stores one named value, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns one named value, or "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// DeleteSettings removes the named values regardless of whether they were set.
func (s *Store) DeleteSettings(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete setting %s: %w", key, err)
		}
	}
	return nil
}

// --- Upload History Operations ---

// RecordUpload inserts one upload-attempt record.
func (s *Store) RecordUpload(documentPath, project string, statusCode int, outcome models.UploadOutcome, detail string) (*models.UploadRecord, error) {
	rec := &models.UploadRecord{
		ID:           uuid.New().String(),
		DocumentPath: documentPath,
		Project:      project,
		StatusCode:   statusCode,
		Outcome:      outcome,
		Detail:       detail,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO uploads (id, document_path, project, status_code, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DocumentPath, rec.Project, rec.StatusCode, rec.Outcome, rec.Detail, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}
	return rec, nil
}

// ListUploads returns the most recent upload records, newest first.
func (s *Store) ListUploads(limit int) ([]models.UploadRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, document_path, project, status_code, outcome, detail, created_at FROM uploads ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var records []models.UploadRecord
	for rows.Next() {
		var rec models.UploadRecord
		var detail sql.NullString
		if err := rows.Scan(&rec.ID, &rec.DocumentPath, &rec.Project, &rec.StatusCode, &rec.Outcome, &detail, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		if detail.Valid {
			rec.Detail = detail.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
