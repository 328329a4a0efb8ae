package main

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/kballard/go-shellquote"
)

// launchEditor opens the user's editor on every given path in one
// invocation and blocks until it exits. $VISUAL wins over $EDITOR; both may
// carry arguments ("code --wait").
func launchEditor(paths ...string) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	var name string
	var args []string
	if editor != "" {
		parts, err := shellquote.Split(editor)
		if err != nil || len(parts) == 0 {
			name = editor
		} else {
			name = parts[0]
			args = parts[1:]
		}
	} else if runtime.GOOS == "windows" {
		name = "notepad"
	} else {
		name = "vi"
	}

	cmd := exec.Command(name, append(args, paths...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
