package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/leave"
)

// ManageRequestInput identifies a request acted on from the overview.
type ManageRequestInput struct {
	ID        string
	Actor     string
	IPAddress string
	UserAgent string
}

// ManageRequestDeps holds dependencies for reset and delete.
type ManageRequestDeps struct {
	RequestStore leaveStore.Store
	AuditStore   auditStore.Store
}

// ExecuteResetRequest returns a decided request to pending. No notification is sent.
// PRE: request exists and is approved or rejected
// POST: status pending, DecidedAt cleared, audited
func ExecuteResetRequest(ctx context.Context, input ManageRequestInput, deps ManageRequestDeps) (leave.Request, error) {
	r, err := deps.RequestStore.GetByID(ctx, input.ID)
	if err != nil {
		return leave.Request{}, err
	}
	previous := r.Status
	if err := r.Reset(); err != nil {
		return leave.Request{}, err
	}
	if err := deps.RequestStore.Save(ctx, r); err != nil {
		return leave.Request{}, fmt.Errorf("save reset: %w", err)
	}
	slog.Info("leave_event", "event", "request_reset", "request_id", r.ID, "previous_status", previous)

	RecordAudit(ctx, deps.AuditStore, audit.NewEvent(actorOrAdmin(input.Actor), audit.CategoryLeave, audit.ActionReset).
		WithResource("leave_request", r.ID).
		WithDescription(fmt.Sprintf("%s: %s -> %s", r.EmployeeName, leave.StatusLabel(previous), leave.StatusLabel(r.Status))).
		WithRequest(input.IPAddress, input.UserAgent))
	return r, nil
}

// ExecuteDeleteRequest removes a request permanently.
// PRE: request exists
// POST: request gone, audited at warning severity
func ExecuteDeleteRequest(ctx context.Context, input ManageRequestInput, deps ManageRequestDeps) error {
	r, err := deps.RequestStore.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := deps.RequestStore.Delete(ctx, r.ID); err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	slog.Info("leave_event", "event", "request_deleted", "request_id", r.ID)

	RecordAudit(ctx, deps.AuditStore, audit.NewEvent(actorOrAdmin(input.Actor), audit.CategoryLeave, audit.ActionDelete).
		WithSeverity(audit.SeverityWarning).
		WithResource("leave_request", r.ID).
		WithDescription(fmt.Sprintf("%s: %s %s", r.EmployeeName, leave.TypeLabel(r.Type), leave.FormatDate(r.StartDate))).
		WithRequest(input.IPAddress, input.UserAgent))
	return nil
}

// ChangeStatusInput is an overview status change: any of the three statuses.
type ChangeStatusInput struct {
	ManageRequestInput
	Status string
}

// ExecuteChangeStatus applies a status picked on the overview.
// Approve and reject go through the full decision flow; pending resets.
func ExecuteChangeStatus(ctx context.Context, input ChangeStatusInput, deps DecideRequestDeps) (leave.Request, error) {
	switch input.Status {
	case leave.StatusPending:
		return ExecuteResetRequest(ctx, input.ManageRequestInput, ManageRequestDeps{
			RequestStore: deps.RequestStore,
			AuditStore:   deps.AuditStore,
		})
	case leave.StatusApproved, leave.StatusRejected:
		res, err := ExecuteDecideRequest(ctx, DecideRequestInput{
			ID:        input.ID,
			Decision:  input.Status,
			Actor:     input.Actor,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
		}, deps)
		return res.Request, err
	default:
		return leave.Request{}, leave.ErrInvalidStatus
	}
}

func actorOrAdmin(actor string) string {
	if actor == "" {
		return audit.ActorAdmin
	}
	return actor
}
