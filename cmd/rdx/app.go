package main

import (
	"github.com/rdxcli/rdx/internal/connection"
	"github.com/rdxcli/rdx/internal/store"
)

// openStore opens the rdx database at its default location.
func openStore() (*store.Store, error) {
	path, err := connection.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return store.New(path)
}

// --- Helpers ---

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
