package main

import (
	"errors"
	"fmt"

	"github.com/rdxcli/rdx/internal/connection"
	"github.com/rdxcli/rdx/internal/rundeck"
	"github.com/rdxcli/rdx/internal/ui"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Store the Rundeck connection (URL, token, optional project)",
	RunE:  runConnect,
}

var connectTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the stored connection reaches the cluster",
	RunE:  runConnectTest,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored connection",
	RunE:  runDisconnect,
}

func init() {
	connectCmd.AddCommand(connectTestCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	surface := ui.NewTerm()

	url, err := surface.Input("Rundeck URL", false)
	if errors.Is(err, ui.ErrAbandoned) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := surface.Input("API token", true)
	if errors.Is(err, ui.ErrAbandoned) {
		return nil
	}
	if err != nil {
		return err
	}

	// Project is optional; abandoning the prompt leaves the slot alone.
	project, err := surface.Input("Project (optional)", false)
	if err != nil && !errors.Is(err, ui.ErrAbandoned) {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := connection.NewManager(s).Save(token, url, project); err != nil {
		return err
	}
	surface.Info("Connection saved")
	return nil
}

func runConnectTest(cmd *cobra.Command, args []string) error {
	surface := ui.NewTerm()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	conn, err := connection.NewManager(s).Require()
	if err != nil {
		return err
	}

	info, err := rundeck.New(conn.URL, conn.Token).SystemInfo(cmd.Context())
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	if info.Version != "" {
		surface.Info(fmt.Sprintf("Connected to Rundeck %s at %s", info.Version, conn.URL))
	} else {
		surface.Info(fmt.Sprintf("Connected to Rundeck at %s", conn.URL))
	}
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	surface := ui.NewTerm()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := connection.NewManager(s).Clear(); err != nil {
		return err
	}
	surface.Info("Connection cleared")
	return nil
}
