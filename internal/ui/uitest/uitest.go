// Package uitest provides a scripted ui.Surface for tests.
package uitest

import "github.com/rdxcli/rdx/internal/ui"

// Scripted answers prompts from canned values and records notifications.
// Exhausted inputs and picks behave as user abandonment.
type Scripted struct {
	Inputs []string
	Picks  []int

	Infos  []string
	Warns  []string
	Errors []string
}

func (s *Scripted) Input(prompt string, masked bool) (string, error) {
	if len(s.Inputs) == 0 {
		return "", ui.ErrAbandoned
	}
	v := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	if v == "" {
		return "", ui.ErrAbandoned
	}
	return v, nil
}

func (s *Scripted) Pick(title string, options []string) (int, error) {
	if len(s.Picks) == 0 {
		return 0, ui.ErrAbandoned
	}
	v := s.Picks[0]
	s.Picks = s.Picks[1:]
	if v < 0 || v >= len(options) {
		return 0, ui.ErrAbandoned
	}
	return v, nil
}

func (s *Scripted) Info(msg string)  { s.Infos = append(s.Infos, msg) }
func (s *Scripted) Warn(msg string)  { s.Warns = append(s.Warns, msg) }
func (s *Scripted) Error(msg string) { s.Errors = append(s.Errors, msg) }
