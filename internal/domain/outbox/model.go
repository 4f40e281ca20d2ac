package outbox

import (
	"errors"
	"time"
)

// Entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Deferred integration actions. Each has a JSON payload type below.
const (
	ActionEmail             = "email"
	ActionGitHubIssue       = "github_issue"
	ActionGitHubIssueUpdate = "github_issue_update"
	ActionGitHubComment     = "github_comment"
)

// DefaultMaxAttempts applies when an entry is queued without a limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrNotFound          = errors.New("outbox entry not found")
	ErrEmptyActionType   = errors.New("action type is required")
	ErrUnknownActionType = errors.New("unknown action type")
	ErrEmptyPayload      = errors.New("payload is required")
	ErrNotRetryable      = errors.New("outbox entry cannot be retried")
)

// Entry is one integration action waiting to be (re)played.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON, see the payload types
	RequestID       string // leave request the action belongs to, may be empty
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // e.g. GitHub issue number or email id
	ErrorMessage    string
}

// EmailPayload replays an email send.
type EmailPayload struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Markdown    string   `json:"markdown"`
	ReplyTo     string   `json:"reply_to,omitempty"`
	ICSFilename string   `json:"ics_filename,omitempty"`
	ICS         string   `json:"ics,omitempty"`
}

// GitHubIssuePayload replays issue creation. RequestID receives the issue number.
type GitHubIssuePayload struct {
	RequestID string   `json:"request_id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels"`
}

// GitHubIssueUpdatePayload replays closing and relabelling an issue.
type GitHubIssueUpdatePayload struct {
	IssueNumber int      `json:"issue_number"`
	State       string   `json:"state"`
	Labels      []string `json:"labels"`
}

// GitHubCommentPayload replays adding a comment.
type GitHubCommentPayload struct {
	IssueNumber int    `json:"issue_number"`
	Body        string `json:"body"`
}

// IsKnownAction reports whether an executor exists for the action type.
func IsKnownAction(actionType string) bool {
	switch actionType {
	case ActionEmail, ActionGitHubIssue, ActionGitHubIssueUpdate, ActionGitHubComment:
		return true
	}
	return false
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid; MaxAttempts defaulted
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if !IsKnownAction(e.ActionType) {
		return ErrUnknownActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry returns true if the entry can be retried.
// POST: true for pending/retrying/failed with attempts < max
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying || e.Status == StatusFailed) &&
		e.Attempts < e.MaxAttempts
}

// IsTerminal returns true if the entry has reached a terminal state.
func (e *Entry) IsTerminal() bool {
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return true
	}
	return e.Status == StatusFailed && e.Attempts >= e.MaxAttempts
}

// IsDue reports whether the backoff delay since the last attempt has elapsed.
func (e *Entry) IsDue(now time.Time, baseDelay, maxDelay time.Duration) bool {
	if e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(baseDelay, maxDelay)))
}

// MarkAttempt records an attempt.
// POST: Attempts incremented, LastAttemptedAt = now, status retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry done.
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records an error. The entry turns failed once attempts are exhausted.
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// MarkAbandoned marks the entry as abandoned by the admin.
func (e *Entry) MarkAbandoned() {
	e.Status = StatusAbandoned
}

// Rearm gives an exhausted entry one more attempt on manual retry.
// PRE: entry is not done or abandoned
func (e *Entry) Rearm() error {
	if e.Status == StatusDone || e.Status == StatusAbandoned {
		return ErrNotRetryable
	}
	if e.Attempts >= e.MaxAttempts {
		e.MaxAttempts = e.Attempts + 1
	}
	e.LastAttemptedAt = time.Time{}
	return nil
}

// NextRetryDelay is 2^attempts * baseDelay, capped at maxDelay.
func (e *Entry) NextRetryDelay(baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	if e.Attempts >= 30 {
		return maxDelay
	}
	delay := baseDelay * (1 << e.Attempts)
	if delay > maxDelay || delay <= 0 {
		return maxDelay
	}
	return delay
}
