package main

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/rdxcli/rdx/internal/connection"
	"github.com/rdxcli/rdx/internal/rundeck"
	"github.com/rdxcli/rdx/internal/session"
	"github.com/rdxcli/rdx/internal/ui"
	"github.com/rdxcli/rdx/internal/uploader"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [job-file]",
	Short: "Upload a job document to the cluster's import endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	surface := ui.NewTerm()

	docPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	// A fresh process has no pending edit sessions; upload still
	// sanitizes and normalizes the document before submitting it.
	rec := uploader.New(session.NewRegistry(), rundeck.New, connection.NewManager(s), s, surface, slog.Default())
	if err := rec.Upload(cmd.Context(), docPath); err != nil {
		if errors.Is(err, ui.ErrAbandoned) {
			return nil
		}
		return err
	}
	return nil
}
