package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rdxcli/rdx/internal/jobdoc"
	"github.com/rdxcli/rdx/internal/ui"
	"github.com/spf13/cobra"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts [job-file]",
	Short: "List the editable scripts in a job document",
	Args:  cobra.ExactArgs(1),
	RunE:  runScripts,
}

func runScripts(cmd *cobra.Command, args []string) error {
	surface := ui.NewTerm()

	docPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read job document: %w", err)
	}

	// A document that does not decode simply has no scripts to offer.
	doc, err := jobdoc.Parse(raw)
	if err != nil {
		surface.Warn(fmt.Sprintf("No scripts found: %v", err))
		return nil
	}

	scripts := jobdoc.ListScriptCommands(doc)
	if len(scripts) == 0 {
		surface.Warn("No editable scripts in " + docPath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tDESCRIPTION\tINTERPRETER\tEXT\tSCRIPT")
	for _, sc := range scripts {
		interp := sc.Interpreter
		if interp == "" {
			interp = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", sc.Index, sc.Description, interp, sc.Ext, truncate(sc.Script, 40))
	}
	w.Flush()
	return nil
}
