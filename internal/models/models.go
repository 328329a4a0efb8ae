// Package models defines the core domain types for rdx.
package models

import "time"

// Connection is the stored cluster connection. Token, URL, and project are
// three independent slots; partial states (token and URL without a project)
// are legal.
type Connection struct {
	Token   string `json:"token"`
	URL     string `json:"url"`
	Project string `json:"project,omitempty"`
}

// Ready reports whether the connection can reach the cluster API. The
// project slot is not required; upload prompts for it when absent.
func (c Connection) Ready() bool {
	return c.Token != "" && c.URL != ""
}

// UploadOutcome classifies one upload attempt.
type UploadOutcome string

const (
	UploadSucceeded UploadOutcome = "succeeded"
	UploadFailed    UploadOutcome = "failed"
)

// UploadRecord is one entry in the upload history.
type UploadRecord struct {
	ID           string        `json:"id"`
	DocumentPath string        `json:"document_path"`
	Project      string        `json:"project"`
	StatusCode   int           `json:"status_code"`
	Outcome      UploadOutcome `json:"outcome"`
	Detail       string        `json:"detail,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
