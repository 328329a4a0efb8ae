// Package jobdoc parses and rewrites Rundeck job-definition documents.
package jobdoc

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for document shape problems.
var (
	ErrNoCommands = errors.New("job has no command sequence")
	ErrNotScript  = errors.New("command slot does not hold a script")
)

// Document is the parsed form of one job-definition file. A Rundeck YAML
// export has either a single job mapping or a sequence of job mappings at
// the root; when the root is a sequence the first element is the working
// job. Operating only on the first job of a multi-job file is a documented
// limitation, not a guarantee.
type Document struct {
	jobs        []map[string]interface{}
	wasSequence bool
}

// Parse decodes a job-definition document and normalizes the root shape.
func Parse(data []byte) (*Document, error) {
	var root interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode job document: %w", err)
	}

	switch v := root.(type) {
	case []interface{}:
		doc := &Document{wasSequence: true}
		for i, item := range v {
			job, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("decode job document: element %d is not a job mapping", i)
			}
			doc.jobs = append(doc.jobs, job)
		}
		if len(doc.jobs) == 0 {
			return nil, fmt.Errorf("decode job document: empty job sequence")
		}
		return doc, nil
	case map[string]interface{}:
		return &Document{jobs: []map[string]interface{}{v}}, nil
	default:
		return nil, fmt.Errorf("decode job document: root is %T, want job mapping or sequence", root)
	}
}

// Serialize encodes the document back to YAML, reproducing the original
// root shape. Output is semantically equivalent to the source, not
// byte-identical (the encoder may reorder or reformat).
func (d *Document) Serialize() ([]byte, error) {
	var root interface{}
	if d.wasSequence {
		root = d.jobs
	} else {
		root = d.jobs[0]
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode job document: %w", err)
	}
	return out, nil
}

// Jobs returns the number of job objects in the document.
func (d *Document) Jobs() int {
	return len(d.jobs)
}

// IsSequence reports whether the document root is a sequence of jobs.
func (d *Document) IsSequence() bool {
	return d.wasSequence
}

// StripIdentityFields removes uuid and id from every job. The import API
// reads their presence as import-mode semantics, so they must be gone
// before upload.
func (d *Document) StripIdentityFields() {
	for _, job := range d.jobs {
		delete(job, "uuid")
		delete(job, "id")
	}
}

// ForceSequence makes the root a sequence of jobs. The import endpoint
// requires a list payload even for a single job. Idempotent.
func (d *Document) ForceSequence() {
	d.wasSequence = true
}

// commands returns the working job's command slots.
func (d *Document) commands() ([]interface{}, error) {
	seq, ok := d.jobs[0]["sequence"].(map[string]interface{})
	if !ok {
		return nil, ErrNoCommands
	}
	cmds, ok := seq["commands"].([]interface{})
	if !ok {
		return nil, ErrNoCommands
	}
	return cmds, nil
}

// SetScript replaces the script text of the command at index in the
// working job. Fails with ErrNoCommands or ErrNotScript when the document
// shape changed underneath the caller.
func (d *Document) SetScript(index int, text string) error {
	cmds, err := d.commands()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(cmds) {
		return fmt.Errorf("command %d: %w", index, ErrNotScript)
	}
	cmd, ok := cmds[index].(map[string]interface{})
	if !ok {
		return fmt.Errorf("command %d: %w", index, ErrNotScript)
	}
	if _, ok := cmd["script"].(string); !ok {
		return fmt.Errorf("command %d: %w", index, ErrNotScript)
	}
	cmd["script"] = text
	return nil
}
