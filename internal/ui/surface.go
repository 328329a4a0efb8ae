// Package ui provides the interactive surface the core actions talk to:
// line input, single-choice pick lists, and outcome notifications.
package ui

import "errors"

// ErrAbandoned is returned when the user dismisses a prompt or pick list.
// It is a legitimate stop, not a failure; callers end the current action
// without reporting an error.
var ErrAbandoned = errors.New("input abandoned")

// Surface is the request/respond interface to the operator.
type Surface interface {
	// Input asks for one line of text. masked hides the typed characters
	// (API tokens). An empty or escaped prompt returns ErrAbandoned.
	Input(prompt string, masked bool) (string, error)

	// Pick asks the user to choose one of the labeled options and returns
	// its index. Escape returns ErrAbandoned.
	Pick(title string, options []string) (int, error)

	Info(msg string)
	Warn(msg string)
	Error(msg string)
}
