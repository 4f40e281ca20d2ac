package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	"verlof/internal/application/notify"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/employee"
	"verlof/internal/domain/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

// Notification channels reported back to the submitter.
const (
	ChannelEmail  = "email"
	ChannelGitHub = "github"
	ChannelQueued = "queued"
	ChannelNone   = "none"
)

// SubmitRequestInput carries the request form fields. Dates are YYYY-MM-DD, times HH:MM.
type SubmitRequestInput struct {
	EmployeeNumber string
	Type           string
	Duration       string
	StartDate      string
	EndDate        string
	StartTime      string
	EndTime        string
	Reason         string
	IPAddress      string
	UserAgent      string
}

// SubmitSickLeaveInput carries the sick-leave form fields.
type SubmitSickLeaveInput struct {
	EmployeeNumber string
	StartDate      string
	EndDate        string
	Reason         string
	IPAddress      string
	UserAgent      string
}

// SubmitRequestDeps holds dependencies for the submit orchestrators.
type SubmitRequestDeps struct {
	RequestStore leaveStore.Store
	AuditStore   auditStore.Store
	Directory    *employee.Directory
	Integrations Integrations
	Now          func() time.Time
	GenerateID   func() string
	NewToken     func() (string, error)
}

// SubmitRequestResult reports the stored request and how the administrator was told.
type SubmitRequestResult struct {
	Request   leave.Request
	AdminLink string
	Channel   string
}

// ExecuteSubmitRequest validates, stores and announces a new leave request.
// PRE: deps.RequestStore, Now, GenerateID are set
// POST: request persisted as pending with a fresh admin token; the administrator is
// notified by email, else by GitHub issue, else the email is queued in the outbox
func ExecuteSubmitRequest(ctx context.Context, input SubmitRequestInput, deps SubmitRequestDeps) (SubmitRequestResult, error) {
	r := leave.Request{
		EmployeeNumber: input.EmployeeNumber,
		Type:           input.Type,
		Duration:       input.Duration,
		StartDate:      parseDateOrZero(input.StartDate),
		EndDate:        parseDateOrZero(input.EndDate),
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Reason:         input.Reason,
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		return SubmitRequestResult{}, err
	}
	return submit(ctx, r, input.IPAddress, input.UserAgent, deps)
}

// ExecuteSubmitSickLeave stores a sick-leave report through the same path as a leave request.
// PRE: deps as for ExecuteSubmitRequest
// POST: request of type ziekte persisted and announced; start date not before today
func ExecuteSubmitSickLeave(ctx context.Context, input SubmitSickLeaveInput, deps SubmitRequestDeps) (SubmitRequestResult, error) {
	today := leave.Today(deps.Now(), deps.Integrations.location())
	r, err := leave.NewSickRequest(
		input.EmployeeNumber,
		parseDateOrZero(input.StartDate),
		parseDateOrZero(input.EndDate),
		input.Reason,
		today,
	)
	if err != nil {
		return SubmitRequestResult{}, err
	}
	r.Normalize()
	return submit(ctx, r, input.IPAddress, input.UserAgent, deps)
}

func submit(ctx context.Context, r leave.Request, ip, ua string, deps SubmitRequestDeps) (SubmitRequestResult, error) {
	newToken := deps.NewToken
	if newToken == nil {
		newToken = leave.NewAdminToken
	}
	token, err := newToken()
	if err != nil {
		return SubmitRequestResult{}, fmt.Errorf("generate admin token: %w", err)
	}

	r.ID = deps.GenerateID()
	r.AdminToken = token
	r.Status = leave.StatusPending
	r.CreatedAt = deps.Now()
	if deps.Directory != nil {
		if _, ok := deps.Directory.Lookup(r.EmployeeNumber); !ok {
			slog.Warn("leave_event", "event", "unknown_employee", "employee_number", r.EmployeeNumber)
		}
		r.EmployeeName = deps.Directory.NameFor(r.EmployeeNumber)
	} else {
		r.EmployeeName = employee.FallbackName(r.EmployeeNumber)
	}

	if err := deps.RequestStore.Save(ctx, r); err != nil {
		return SubmitRequestResult{}, fmt.Errorf("save leave request: %w", err)
	}
	slog.Info("leave_event", "event", "request_submitted", "request_id", r.ID, "type", r.Type, "duration", r.Duration)

	RecordAudit(ctx, deps.AuditStore, audit.NewEvent(audit.ActorEmployee, audit.CategoryLeave, audit.ActionCreate).
		WithResource("leave_request", r.ID).
		WithDescription(fmt.Sprintf("%s: %s %s", r.EmployeeName, leave.TypeLabel(r.Type), notify.DateRange(r))).
		WithRequest(ip, ua))

	link := deps.Integrations.Links.Admin(r.AdminToken)
	channel, issue := announce(ctx, r, link, deps)
	if issue > 0 {
		r.GitHubIssueNumber = issue
	}
	return SubmitRequestResult{Request: r, AdminLink: link, Channel: channel}, nil
}

// announce notifies the administrator and returns the channel used and any issue number.
// When email and GitHub both fail, each is queued for retry. Failures here never fail the submission.
func announce(ctx context.Context, r leave.Request, link string, deps SubmitRequestDeps) (string, int) {
	in := deps.Integrations
	msg := notify.AdminNotification(r, link)
	payload := domainOutbox.EmailPayload{
		To:       []string{in.AdminEmail},
		Subject:  msg.Subject,
		Markdown: msg.Markdown,
		ReplyTo:  in.ReplyTo,
	}

	if in.AdminEmail != "" && in.Email != nil {
		res, err := in.sendMessage(ctx, payload)
		if err == nil {
			slog.Info("email_event", "event", "admin_notified", "request_id", r.ID, "message_id", res.MessageID)
			return ChannelEmail, 0
		}
		slog.Error("email_event", "event", "admin_notify_failed", "request_id", r.ID, "error", err)
	}

	queued := false
	if in.githubEnabled() {
		title, body, labels := notify.IssueTitle(r), notify.IssueBody(r, link, in.location()), notify.IssueLabels()
		issue, err := in.GitHub.CreateIssue(ctx, title, body, labels)
		if err == nil {
			if err := deps.RequestStore.SetGitHubIssue(ctx, r.ID, issue.Number); err != nil {
				slog.Error("leave_event", "event", "issue_link_failed", "request_id", r.ID, "issue", issue.Number, "error", err)
			}
			return ChannelGitHub, issue.Number
		}
		slog.Error("github_event", "event", "issue_create_failed", "request_id", r.ID, "error", err)
		issuePayload := domainOutbox.GitHubIssuePayload{RequestID: r.ID, Title: title, Body: body, Labels: labels}
		if err := in.enqueue(ctx, deps.GenerateID(), deps.Now(), domainOutbox.ActionGitHubIssue, r.ID, issuePayload); err != nil {
			slog.Error("github_event", "event", "issue_queue_failed", "request_id", r.ID, "error", err)
		} else {
			queued = true
		}
	}

	if in.AdminEmail != "" {
		if err := in.enqueue(ctx, deps.GenerateID(), deps.Now(), domainOutbox.ActionEmail, r.ID, payload); err != nil {
			slog.Error("email_event", "event", "admin_queue_failed", "request_id", r.ID, "error", err)
		} else {
			queued = true
		}
	}
	if queued {
		return ChannelQueued, 0
	}
	slog.Warn("leave_event", "event", "admin_not_notified", "request_id", r.ID)
	return ChannelNone, 0
}

func parseDateOrZero(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := leave.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
