// Package flakehub talks to the FlakeHub API to resolve org/project
// references into pinned release URLs.
package flakehub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIAddr is the public FlakeHub API.
const DefaultAPIAddr = "https://api.flakehub.com"

// Client is a minimal FlakeHub API client.
type Client struct {
	apiAddr    string
	httpClient *http.Client
}

// New creates a Client against the given API address. An empty address uses
// the public API.
func New(apiAddr string) *Client {
	if apiAddr == "" {
		apiAddr = DefaultAPIAddr
	}
	return &Client{
		apiAddr:    strings.TrimRight(apiAddr, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// project is the subset of the API's project payload the CLI needs.
type project struct {
	Project           string `json:"project"`
	PrettyDownloadURL string `json:"pretty_download_url"`
}

// APIError reports a non-success response from the API, with whatever body
// text it returned.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flakehub API returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// ProjectAndURL resolves org/project, optionally pinned to a version
// requirement, into the project's canonical name and its release tarball
// URL. Version may be empty to track the latest release.
func (c *Client) ProjectAndURL(ctx context.Context, org, proj, version string) (string, string, error) {
	var addr string
	if version == "" {
		addr = fmt.Sprintf("%s/f/%s/%s", c.apiAddr, url.PathEscape(org), url.PathEscape(proj))
	} else {
		addr = fmt.Sprintf("%s/version/%s/%s/%s", c.apiAddr, url.PathEscape(org), url.PathEscape(proj), url.PathEscape(version))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build request for %s: %w", addr, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to reach %s: %w", addr, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response from %s: %w", addr, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", "", &APIError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var p project
	if err := json.Unmarshal(body, &p); err != nil {
		return "", "", fmt.Errorf("failed to decode response from %s: %w", addr, err)
	}
	if p.Project == "" || p.PrettyDownloadURL == "" {
		return "", "", fmt.Errorf("incomplete response from %s", addr)
	}

	return p.Project, p.PrettyDownloadURL, nil
}
