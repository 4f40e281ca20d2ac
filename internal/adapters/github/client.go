package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// ErrNotConfigured is returned by every call when the token or repository is missing.
var ErrNotConfigured = errors.New("github integration not configured")

// Issue is the part of a GitHub issue the service cares about.
type Issue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
}

// Client talks to the GitHub issues API for one repository.
type Client struct {
	token   string
	repo    string
	baseURL string
	http    *http.Client
}

// NewClient creates a client for repo ("owner/name").
// An empty token or repo yields a client whose calls return ErrNotConfigured.
func NewClient(token, repo string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		token:   token,
		repo:    strings.Trim(repo, "/"),
		baseURL: DefaultBaseURL,
		http:    httpClient,
	}
}

// WithBaseURL points the client at another API root, e.g. an httptest server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Enabled reports whether the client has credentials and a repository.
func (c *Client) Enabled() bool {
	return c != nil && c.token != "" && c.repo != ""
}

// CreateIssue opens a new issue.
// PRE: Enabled()
// POST: returns the created issue (HTTP 201)
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (Issue, error) {
	var issue Issue
	payload := map[string]any{"title": title, "body": body, "labels": labels}
	if err := c.do(ctx, http.MethodPost, "/issues", payload, http.StatusCreated, &issue); err != nil {
		return Issue{}, err
	}
	slog.Info("github_event", "event", "issue_created", "issue", issue.Number)
	return issue, nil
}

// UpdateIssue sets the state and replaces the labels of an issue.
// PRE: Enabled(); number > 0
func (c *Client) UpdateIssue(ctx context.Context, number int, state string, labels []string) (Issue, error) {
	var issue Issue
	payload := map[string]any{"state": state, "labels": labels}
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/issues/%d", number), payload, http.StatusOK, &issue); err != nil {
		return Issue{}, err
	}
	slog.Info("github_event", "event", "issue_updated", "issue", number, "state", state)
	return issue, nil
}

// CloseIssue closes an issue and replaces its labels.
func (c *Client) CloseIssue(ctx context.Context, number int, labels []string) error {
	_, err := c.UpdateIssue(ctx, number, "closed", labels)
	return err
}

// AddComment posts a comment on an issue and returns the comment id.
// PRE: Enabled(); number > 0
func (c *Client) AddComment(ctx context.Context, number int, body string) (int64, error) {
	var comment struct {
		ID int64 `json:"id"`
	}
	payload := map[string]any{"body": body}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/issues/%d/comments", number), payload, http.StatusCreated, &comment); err != nil {
		return 0, err
	}
	slog.Info("github_event", "event", "comment_added", "issue", number)
	return comment.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, wantStatus int, out any) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s%s", c.baseURL, c.repo, path)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github api request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("github api %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse github response: %w", err)
		}
	}
	return nil
}
