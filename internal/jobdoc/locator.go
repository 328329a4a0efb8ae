package jobdoc

import (
	"fmt"
	"strings"
)

// ScriptCommand is a read-only projection of one script-carrying command
// slot, used for presentation and selection. Index is the true position in
// the command sequence, not the position within the filtered list.
type ScriptCommand struct {
	Index       int
	Description string
	Script      string
	Interpreter string
	Ext         string
}

// ListScriptCommands scans the working job's command sequence in order and
// returns every slot whose script field is present and textual. An empty
// result means no editable scripts, not an error.
func ListScriptCommands(d *Document) []ScriptCommand {
	cmds, err := d.commands()
	if err != nil {
		return nil
	}

	var out []ScriptCommand
	for i, raw := range cmds {
		cmd, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		script, ok := cmd["script"].(string)
		if !ok {
			continue
		}

		interp, _ := cmd["scriptInterpreter"].(string)
		desc, _ := cmd["description"].(string)
		if desc == "" {
			desc = fmt.Sprintf("Script #%d", i)
		}

		out = append(out, ScriptCommand{
			Index:       i,
			Description: desc,
			Script:      script,
			Interpreter: interp,
			Ext:         ExtensionFor(interp),
		})
	}
	return out
}

// ExtensionFor infers a temp-file extension from a script interpreter.
// Anything mentioning python edits as .py; everything else, including an
// absent interpreter, gets shell semantics.
func ExtensionFor(interpreter string) string {
	if strings.Contains(strings.ToLower(interpreter), "python") {
		return ".py"
	}
	return ".sh"
}
