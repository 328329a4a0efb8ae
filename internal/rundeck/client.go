// Package rundeck is the HTTP client for the Rundeck cluster API. Only the
// two endpoints the tool needs are covered: system info for connection
// testing and the job-definition import endpoint.
package rundeck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every API request.
const DefaultTimeout = 30 * time.Second

const (
	systemInfoPath = "/api/40/system/info"
	importPathFmt  = "/api/53/project/%s/jobs/import"
)

// StatusError is a non-2xx API response. The body is kept verbatim so the
// caller can surface the cluster's own diagnostic text.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rundeck API error (%d): %s", e.Code, e.Body)
}

// Client talks to one Rundeck server with one auth token.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New creates a client for the given server URL and API token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: DefaultTimeout},
	}
}

// SystemInfo is the subset of the system-info payload the tool reports.
type SystemInfo struct {
	Version string
}

// SystemInfo performs the connection test. Any 2xx counts as reachable;
// the version string is extracted from the body when present.
func (c *Client) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+systemInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build system info request: %w", err)
	}
	req.Header.Set("X-Rundeck-Auth-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("system info request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read system info response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	// Version is informational; a 2xx with an unexpected body still passes.
	var payload struct {
		System struct {
			Rundeck struct {
				Version string `json:"version"`
			} `json:"rundeck"`
		} `json:"system"`
	}
	_ = json.Unmarshal(body, &payload)

	return &SystemInfo{Version: payload.System.Rundeck.Version}, nil
}

// ImportedJob identifies one job in an import response.
type ImportedJob struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Project   string `json:"project"`
	Permalink string `json:"permalink,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ImportResult is the parsed import response.
type ImportResult struct {
	Succeeded []ImportedJob `json:"succeeded"`
	Failed    []ImportedJob `json:"failed"`
	Skipped   []ImportedJob `json:"skipped"`
}

// ImportJobs uploads a serialized YAML job document to the project's import
// endpoint. The uuidOption=remove and dupeOption=update flags are fixed
// policy: existing jobs are updated in place, never duplicated.
func (c *Client) ImportJobs(ctx context.Context, project string, body []byte) (*ImportResult, error) {
	q := url.Values{
		"fileformat": {"yaml"},
		"uuidOption": {"remove"},
		"dupeOption": {"update"},
	}
	// The base URL is user-configured and may contain % sequences; only the
	// path template goes through the format parser.
	endpoint := c.baseURL + fmt.Sprintf(importPathFmt, url.PathEscape(project)) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set("X-Rundeck-Auth-Token", c.token)
	req.Header.Set("Content-Type", "application/yaml")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("import request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read import response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result ImportResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse import response: %w", err)
	}
	return &result, nil
}
