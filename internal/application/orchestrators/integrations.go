package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"verlof/internal/adapters/email"
	"verlof/internal/adapters/github"
	"verlof/internal/adapters/ics"
	auditStore "verlof/internal/adapters/storage/audit"
	outboxStore "verlof/internal/adapters/storage/outbox"
	"verlof/internal/application/notify"
	"verlof/internal/domain/audit"
	domainOutbox "verlof/internal/domain/outbox"
)

// IssueTracker is the part of the GitHub client the leave flows use.
type IssueTracker interface {
	Enabled() bool
	CreateIssue(ctx context.Context, title, body string, labels []string) (github.Issue, error)
	UpdateIssue(ctx context.Context, number int, state string, labels []string) (github.Issue, error)
	CloseIssue(ctx context.Context, number int, labels []string) error
	AddComment(ctx context.Context, number int, body string) (int64, error)
}

var _ IssueTracker = (*github.Client)(nil)

// Integrations bundles the outbound channels shared by the leave flows.
// Email and GitHub may be nil; Outbox may be nil, in which case failures are only logged.
type Integrations struct {
	Email      email.Sender
	GitHub     IssueTracker
	Outbox     outboxStore.Store
	Links      notify.Links
	AdminEmail string
	ReplyTo    string
	Location   *time.Location
}

func (in Integrations) location() *time.Location {
	if in.Location == nil {
		return time.UTC
	}
	return in.Location
}

func (in Integrations) githubEnabled() bool {
	return in.GitHub != nil && in.GitHub.Enabled()
}

// sendMessage renders p and sends it, attaching the ICS payload when present.
func (in Integrations) sendMessage(ctx context.Context, p domainOutbox.EmailPayload) (email.SendResult, error) {
	if in.Email == nil {
		return email.SendResult{}, fmt.Errorf("no email sender configured")
	}
	req, err := emailRequest(p)
	if err != nil {
		return email.SendResult{}, err
	}
	return in.Email.Send(ctx, req)
}

// emailRequest turns a queued payload into a send request.
func emailRequest(p domainOutbox.EmailPayload) (email.SendRequest, error) {
	req, err := notify.Message{Subject: p.Subject, Markdown: p.Markdown}.Email(p.To, p.ReplyTo)
	if err != nil {
		return email.SendRequest{}, err
	}
	if p.ICS != "" {
		req.Attachments = []email.Attachment{{
			Filename:    p.ICSFilename,
			ContentType: ics.ContentType,
			Content:     []byte(p.ICS),
		}}
	}
	return req, nil
}

// enqueue stores a deferred integration action.
// POST: returns nil without storing when no outbox is configured
func (in Integrations) enqueue(ctx context.Context, id string, now time.Time, action, requestID string, payload any) error {
	if in.Outbox == nil {
		slog.Warn("outbox_event", "event", "enqueue_skipped", "action_type", action, "request_id", requestID)
		return fmt.Errorf("no outbox configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", action, err)
	}
	entry := domainOutbox.Entry{
		ID:         id,
		ActionType: action,
		Payload:    string(data),
		RequestID:  requestID,
		Status:     domainOutbox.StatusPending,
		CreatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := in.Outbox.Save(ctx, entry); err != nil {
		return fmt.Errorf("queue %s: %w", action, err)
	}
	slog.Info("outbox_event", "event", "enqueued", "entry_id", id, "action_type", action, "request_id", requestID)
	return nil
}

// RecordAudit saves an audit event. Failures are logged and never block the caller.
func RecordAudit(ctx context.Context, store auditStore.Store, event audit.Event) {
	if store == nil {
		return
	}
	if err := store.Save(ctx, event); err != nil {
		slog.Error("audit_save_failed", "action", event.Action, "resource_id", event.ResourceID, "error", err)
	}
}
