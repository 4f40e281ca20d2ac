package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"verlof/internal/adapters/email"
	"verlof/internal/adapters/ics"
	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	"verlof/internal/application/notify"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/employee"
	"verlof/internal/domain/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

// ErrMissingLocator is returned when neither a token nor an ID identifies the request.
var ErrMissingLocator = errors.New("request token or id is required")

// DecideRequestInput selects a request by admin token (approval link) or by ID
// (overview) and carries the decision: leave.StatusApproved or leave.StatusRejected.
type DecideRequestInput struct {
	Token     string
	ID        string
	Decision  string
	Actor     string
	IPAddress string
	UserAgent string
}

// DecideRequestDeps holds dependencies for ExecuteDecideRequest.
type DecideRequestDeps struct {
	RequestStore leaveStore.Store
	AuditStore   auditStore.Store
	Directory    *employee.Directory
	Integrations Integrations
	Now          func() time.Time
	GenerateID   func() string
}

// DecideRequestResult reports the decided request and the side effects.
type DecideRequestResult struct {
	Request     leave.Request
	ICS         []byte // set on approval
	ICSFilename string
	EmailSent   bool // the first email went out: the calendar item on approval when there is an admin address
	EmailsSent  int
	Queued      int // integration actions deferred to the outbox
}

// ExecuteDecideRequest approves or rejects a pending request.
// PRE: Decision is approved or rejected; Token or ID set
// POST: status and DecidedAt persisted; a linked GitHub issue is closed, relabelled
// and commented; on approval an ICS item is emailed to the administrator ahead of the
// employee notice. Emails that did not go out and other integration failures are queued
// in the outbox and never undo the decision.
func ExecuteDecideRequest(ctx context.Context, input DecideRequestInput, deps DecideRequestDeps) (DecideRequestResult, error) {
	if input.Decision != leave.StatusApproved && input.Decision != leave.StatusRejected {
		return DecideRequestResult{}, leave.ErrInvalidStatus
	}
	r, err := findRequest(ctx, deps.RequestStore, input.Token, input.ID)
	if err != nil {
		return DecideRequestResult{}, err
	}

	now := deps.Now()
	if err := r.SetStatus(input.Decision, now); err != nil {
		return DecideRequestResult{}, err
	}
	if err := deps.RequestStore.Save(ctx, r); err != nil {
		return DecideRequestResult{}, fmt.Errorf("save decision: %w", err)
	}
	slog.Info("leave_event", "event", "request_decided", "request_id", r.ID, "status", r.Status)

	action := audit.ActionReject
	if r.Status == leave.StatusApproved {
		action = audit.ActionApprove
	}
	RecordAudit(ctx, deps.AuditStore, audit.NewEvent(actorOrAdmin(input.Actor), audit.CategoryLeave, action).
		WithResource("leave_request", r.ID).
		WithDescription(fmt.Sprintf("%s: %s", r.EmployeeName, leave.StatusLabel(r.Status))).
		WithRequest(input.IPAddress, input.UserAgent))

	res := DecideRequestResult{Request: r}
	res.Queued += syncIssue(ctx, r, deps)

	var emails []domainOutbox.EmailPayload
	in := deps.Integrations
	if r.Status == leave.StatusApproved {
		data, err := ics.Encode(r, now, in.location())
		if err != nil {
			slog.Error("leave_event", "event", "ics_failed", "request_id", r.ID, "error", err)
		} else {
			res.ICS = data
			res.ICSFilename = ics.Filename(r)
			if in.AdminEmail != "" {
				msg := notify.ApprovalNotification(r)
				emails = append(emails, domainOutbox.EmailPayload{
					To:          []string{in.AdminEmail},
					Subject:     msg.Subject,
					Markdown:    msg.Markdown,
					ReplyTo:     in.ReplyTo,
					ICSFilename: res.ICSFilename,
					ICS:         string(data),
				})
			}
		}
	}
	if deps.Directory != nil {
		if addr := deps.Directory.EmailFor(r.EmployeeNumber); addr != "" {
			msg := notify.DecisionNotice(r)
			emails = append(emails, domainOutbox.EmailPayload{
				To:       []string{addr},
				Subject:  msg.Subject,
				Markdown: msg.Markdown,
				ReplyTo:  in.ReplyTo,
			})
		}
	}

	sent, queued := deliver(ctx, r.ID, emails, deps)
	res.EmailSent = sent > 0
	res.EmailsSent = sent
	res.Queued += queued
	return res, nil
}

// syncIssue closes and comments the fallback GitHub issue. Returns the number of queued actions.
func syncIssue(ctx context.Context, r leave.Request, deps DecideRequestDeps) int {
	in := deps.Integrations
	if r.GitHubIssueNumber <= 0 || !in.githubEnabled() {
		return 0
	}
	queued := 0
	labels := notify.DecisionLabels(r.Status)
	if err := in.GitHub.CloseIssue(ctx, r.GitHubIssueNumber, labels); err != nil {
		slog.Error("github_event", "event", "issue_update_failed", "request_id", r.ID, "issue", r.GitHubIssueNumber, "error", err)
		payload := domainOutbox.GitHubIssueUpdatePayload{IssueNumber: r.GitHubIssueNumber, State: "closed", Labels: labels}
		if in.enqueue(ctx, deps.GenerateID(), deps.Now(), domainOutbox.ActionGitHubIssueUpdate, r.ID, payload) == nil {
			queued++
		}
	}
	comment := notify.DecisionComment(r.Status)
	if _, err := in.GitHub.AddComment(ctx, r.GitHubIssueNumber, comment); err != nil {
		slog.Error("github_event", "event", "comment_failed", "request_id", r.ID, "issue", r.GitHubIssueNumber, "error", err)
		payload := domainOutbox.GitHubCommentPayload{IssueNumber: r.GitHubIssueNumber, Body: comment}
		if in.enqueue(ctx, deps.GenerateID(), deps.Now(), domainOutbox.ActionGitHubComment, r.ID, payload) == nil {
			queued++
		}
	}
	return queued
}

// deliver sends the decision emails as one batch and queues the ones that did not go out.
// Returns how many were delivered and how many were queued.
func deliver(ctx context.Context, requestID string, payloads []domainOutbox.EmailPayload, deps DecideRequestDeps) (int, int) {
	if len(payloads) == 0 {
		return 0, 0
	}
	in := deps.Integrations
	delivered := 0
	if in.Email != nil {
		reqs := make([]email.SendRequest, 0, len(payloads))
		var sendErr error
		for _, p := range payloads {
			req, err := emailRequest(p)
			if err != nil {
				sendErr = err
				break
			}
			reqs = append(reqs, req)
		}
		if sendErr == nil {
			var results []email.SendResult
			results, sendErr = in.Email.SendBatch(ctx, reqs)
			delivered = min(len(results), len(reqs))
		}
		if sendErr == nil {
			slog.Info("email_event", "event", "decision_sent", "request_id", requestID, "count", len(reqs))
			return len(payloads), 0
		}
		slog.Error("email_event", "event", "decision_send_failed", "request_id", requestID, "delivered", delivered, "error", sendErr)
	}
	queued := 0
	for _, p := range payloads[delivered:] {
		if in.enqueue(ctx, deps.GenerateID(), deps.Now(), domainOutbox.ActionEmail, requestID, p) == nil {
			queued++
		}
	}
	return delivered, queued
}

func findRequest(ctx context.Context, store leaveStore.Store, token, id string) (leave.Request, error) {
	switch {
	case token != "":
		return store.GetByToken(ctx, token)
	case id != "":
		return store.GetByID(ctx, id)
	default:
		return leave.Request{}, ErrMissingLocator
	}
}
