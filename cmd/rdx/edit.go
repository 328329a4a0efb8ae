package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rdxcli/rdx/internal/connection"
	"github.com/rdxcli/rdx/internal/jobdoc"
	"github.com/rdxcli/rdx/internal/rundeck"
	"github.com/rdxcli/rdx/internal/session"
	"github.com/rdxcli/rdx/internal/syncer"
	"github.com/rdxcli/rdx/internal/ui"
	"github.com/rdxcli/rdx/internal/uploader"
	"github.com/rdxcli/rdx/internal/watch"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [job-file]",
	Short: "Extract job scripts into your editor and sync saves back",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var editCommandIndexes []int

func init() {
	editCmd.Flags().IntSliceVar(&editCommandIndexes, "command", nil,
		"Command index to edit; repeat to edit several at once (skips the pick list)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	surface := ui.NewTerm()
	logger := slog.Default()

	docPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read job document: %w", err)
	}
	doc, err := jobdoc.Parse(raw)
	if err != nil {
		surface.Warn(fmt.Sprintf("No editable scripts: %v", err))
		return nil
	}

	scripts := jobdoc.ListScriptCommands(doc)
	if len(scripts) == 0 {
		surface.Warn("No editable scripts in " + docPath)
		return nil
	}

	chosen, err := chooseScripts(surface, scripts)
	if err != nil {
		return err
	}
	if len(chosen) == 0 {
		return nil
	}

	registry := session.NewRegistry()
	sessions, err := openSessions(registry, docPath, chosen)
	if err != nil {
		return err
	}

	engine := syncer.New(registry, surface, logger)
	watcher, err := watch.New(engine.HandleSave, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	for _, sess := range sessions {
		dir := filepath.Dir(sess.TempPath)
		if watched[dir] {
			continue
		}
		watched[dir] = true
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	paths := make([]string, len(sessions))
	for i, sess := range sessions {
		paths[i] = sess.TempPath
	}
	for _, sc := range chosen {
		surface.Info(fmt.Sprintf("Editing %s (command %d)", sc.Description, sc.Index))
	}
	surface.Info("Every save syncs back into " + docPath)
	if err := launchEditor(paths...); err != nil {
		return fmt.Errorf("launch editor: %w", err)
	}

	// The editor exited; sync the final state in case its last save events
	// raced the watcher shutdown.
	for _, sess := range sessions {
		engine.HandleSave(sess.TempPath)
	}

	return offerUpload(cmd, surface, registry, docPath)
}

// chooseScripts resolves which script commands to edit: the repeatable
// --command flag, the only script when there is exactly one, or a pick loop
// that keeps offering the remaining slots until the user is done.
func chooseScripts(surface ui.Surface, scripts []jobdoc.ScriptCommand) ([]jobdoc.ScriptCommand, error) {
	if len(editCommandIndexes) > 0 {
		chosen := make([]jobdoc.ScriptCommand, 0, len(editCommandIndexes))
		for _, want := range editCommandIndexes {
			found := false
			for _, sc := range scripts {
				if sc.Index == want {
					chosen = append(chosen, sc)
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("command %d does not hold an editable script", want)
			}
		}
		return chosen, nil
	}

	if len(scripts) == 1 {
		return scripts[:1], nil
	}

	var chosen []jobdoc.ScriptCommand
	remaining := append([]jobdoc.ScriptCommand(nil), scripts...)
	for len(remaining) > 0 {
		labels := make([]string, 0, len(remaining)+1)
		for _, sc := range remaining {
			labels = append(labels, fmt.Sprintf("[%d] %s (%s)", sc.Index, sc.Description, sc.Ext))
		}
		if len(chosen) > 0 {
			labels = append(labels, "Done selecting")
		}

		idx, err := surface.Pick("Select a script to edit", labels)
		if errors.Is(err, ui.ErrAbandoned) {
			break
		}
		if err != nil {
			return nil, err
		}
		if idx == len(remaining) {
			break
		}
		chosen = append(chosen, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return chosen, nil
}

// openSessions opens one edit session per chosen slot. Failing to open any
// of them aborts the whole edit rather than leaving a partial set.
func openSessions(registry *session.Registry, docPath string, chosen []jobdoc.ScriptCommand) ([]session.Session, error) {
	sessions := make([]session.Session, 0, len(chosen))
	for _, sc := range chosen {
		sess, err := registry.Open(docPath, sc.Index, sc.Script, sc.Ext)
		if err != nil {
			return nil, fmt.Errorf("open edit session for command %d: %w", sc.Index, err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// offerUpload asks whether to upload the document now that the edit is done.
func offerUpload(cmd *cobra.Command, surface ui.Surface, registry *session.Registry, docPath string) error {
	idx, err := surface.Pick("Upload "+docPath+" now?", []string{"Yes", "No"})
	if errors.Is(err, ui.ErrAbandoned) {
		return nil
	}
	if err != nil {
		return err
	}
	if idx != 0 {
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rec := uploader.New(registry, rundeck.New, connection.NewManager(s), s, surface, slog.Default())
	if err := rec.Upload(cmd.Context(), docPath); err != nil {
		if errors.Is(err, ui.ErrAbandoned) {
			return nil
		}
		return err
	}
	return nil
}
