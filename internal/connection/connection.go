// Package connection manages the stored Rundeck connection: API token,
// server URL, and default project, persisted as three independent slots.
package connection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rdxcli/rdx/internal/models"
	"github.com/rdxcli/rdx/internal/store"
)

const (
	keyToken   = "token"
	keyURL     = "url"
	keyProject = "project"
)

// ErrNotConfigured indicates no usable token/URL pair is stored.
var ErrNotConfigured = errors.New("no connection configured, run 'rdx connect' first")

// Manager reads and writes the connection slots.
type Manager struct {
	store *store.Store
}

// NewManager creates a manager over the given store.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// DefaultDBPath returns the standard location of the rdx database.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rdx", "rdx.db"), nil
}

// Save stores the token and URL, and the project when given. An empty
// project leaves the existing project slot untouched.
func (m *Manager) Save(token, url, project string) error {
	if err := m.store.SetSetting(keyToken, token); err != nil {
		return err
	}
	if err := m.store.SetSetting(keyURL, url); err != nil {
		return err
	}
	if project != "" {
		if err := m.store.SetSetting(keyProject, project); err != nil {
			return err
		}
	}
	return nil
}

// SetProject stores only the project slot.
func (m *Manager) SetProject(project string) error {
	return m.store.SetSetting(keyProject, project)
}

// Get returns whichever slots are set. Unset slots read as empty strings.
func (m *Manager) Get() (models.Connection, error) {
	var conn models.Connection
	var err error

	if conn.Token, err = m.store.GetSetting(keyToken); err != nil {
		return conn, err
	}
	if conn.URL, err = m.store.GetSetting(keyURL); err != nil {
		return conn, err
	}
	if conn.Project, err = m.store.GetSetting(keyProject); err != nil {
		return conn, err
	}
	return conn, nil
}

// Require returns the stored connection, or ErrNotConfigured when the
// token/URL pair is incomplete.
func (m *Manager) Require() (models.Connection, error) {
	conn, err := m.Get()
	if err != nil {
		return conn, err
	}
	if !conn.Ready() {
		return conn, ErrNotConfigured
	}
	return conn, nil
}

// Clear unsets all three slots regardless of prior state.
func (m *Manager) Clear() error {
	return m.store.DeleteSettings(keyToken, keyURL, keyProject)
}
