package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"verlof/internal/adapters/email"
	"verlof/internal/adapters/github"
	leaveStore "verlof/internal/adapters/storage/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

// NewExecutors registers an executor for every outbox action type.
// A nil sender or tracker leaves its actions failing until configured.
func NewExecutors(sender email.Sender, tracker IssueTracker, requests leaveStore.Store) map[string]ActionExecutor {
	return map[string]ActionExecutor{
		domainOutbox.ActionEmail:             &EmailExecutor{Sender: sender},
		domainOutbox.ActionGitHubIssue:       &GitHubIssueExecutor{GitHub: tracker, Requests: requests},
		domainOutbox.ActionGitHubIssueUpdate: &GitHubIssueUpdateExecutor{GitHub: tracker},
		domainOutbox.ActionGitHubComment:     &GitHubCommentExecutor{GitHub: tracker},
	}
}

// --- Email Executor ---

// EmailExecutor sends emails.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching domainOutbox.EmailPayload
// POST: email sent via configured sender, returns message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p domainOutbox.EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if e.Sender == nil {
		return "", fmt.Errorf("no email sender configured")
	}
	req, err := emailRequest(p)
	if err != nil {
		return "", err
	}
	res, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// --- GitHub Executors ---

// GitHubIssueExecutor creates GitHub issues and links them to their request.
type GitHubIssueExecutor struct {
	GitHub   IssueTracker
	Requests leaveStore.Store
}

// Execute creates a GitHub issue from the payload.
// PRE: payload is valid JSON matching domainOutbox.GitHubIssuePayload
// POST: GitHub issue created, request linked when RequestID is set; returns the issue number
// INVARIANT: outbox entry status managed by caller
func (e *GitHubIssueExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p domainOutbox.GitHubIssuePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := requireTracker(e.GitHub); err != nil {
		return "", err
	}
	issue, err := e.GitHub.CreateIssue(ctx, p.Title, p.Body, p.Labels)
	if err != nil {
		return "", err
	}
	if p.RequestID != "" && e.Requests != nil {
		// The issue exists now; a retry would open a duplicate.
		if err := e.Requests.SetGitHubIssue(ctx, p.RequestID, issue.Number); err != nil {
			slog.Error("github_event", "event", "issue_link_failed", "request_id", p.RequestID, "issue", issue.Number, "error", err)
		}
	}
	return strconv.Itoa(issue.Number), nil
}

// GitHubIssueUpdateExecutor closes and relabels issues.
type GitHubIssueUpdateExecutor struct {
	GitHub IssueTracker
}

// Execute applies the state and labels in the payload.
// PRE: payload is valid JSON matching domainOutbox.GitHubIssueUpdatePayload
func (e *GitHubIssueUpdateExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p domainOutbox.GitHubIssueUpdatePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := requireTracker(e.GitHub); err != nil {
		return "", err
	}
	issue, err := e.GitHub.UpdateIssue(ctx, p.IssueNumber, p.State, p.Labels)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(issue.Number), nil
}

// GitHubCommentExecutor posts issue comments.
type GitHubCommentExecutor struct {
	GitHub IssueTracker
}

// Execute posts the comment in the payload and returns the comment ID.
// PRE: payload is valid JSON matching domainOutbox.GitHubCommentPayload
func (e *GitHubCommentExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p domainOutbox.GitHubCommentPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := requireTracker(e.GitHub); err != nil {
		return "", err
	}
	id, err := e.GitHub.AddComment(ctx, p.IssueNumber, p.Body)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func requireTracker(t IssueTracker) error {
	if t == nil || !t.Enabled() {
		return github.ErrNotConfigured
	}
	return nil
}
