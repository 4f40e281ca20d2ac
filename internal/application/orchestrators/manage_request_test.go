package orchestrators

import (
	"context"
	"errors"
	"testing"

	"verlof/internal/domain/audit"
	"verlof/internal/domain/leave"
)

func TestExecuteResetRequest(t *testing.T) {
	r := pendingRequest()
	r.Status = leave.StatusApproved
	r.DecidedAt = fixedTime
	store := newMockRequestStore(r)
	auditLog := &mockAuditStore{}

	got, err := ExecuteResetRequest(context.Background(), ManageRequestInput{ID: "req-1"}, ManageRequestDeps{RequestStore: store, AuditStore: auditLog})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != leave.StatusPending || !got.DecidedAt.IsZero() {
		t.Errorf("reset = %+v", got)
	}
	if store.get("req-1").Status != leave.StatusPending {
		t.Error("reset not persisted")
	}
	if len(auditLog.events) != 1 || auditLog.events[0].Description != "Kevin Slot: Goedgekeurd -> In behandeling" {
		t.Errorf("audit = %+v", auditLog.events)
	}
}

func TestExecuteResetRequest_AlreadyPending(t *testing.T) {
	store := newMockRequestStore(pendingRequest())
	_, err := ExecuteResetRequest(context.Background(), ManageRequestInput{ID: "req-1"}, ManageRequestDeps{RequestStore: store})
	if !errors.Is(err, leave.ErrAlreadyPending) {
		t.Fatalf("err = %v, want ErrAlreadyPending", err)
	}
}

func TestExecuteDeleteRequest(t *testing.T) {
	store := newMockRequestStore(pendingRequest())
	auditLog := &mockAuditStore{}
	deps := ManageRequestDeps{RequestStore: store, AuditStore: auditLog}

	if err := ExecuteDeleteRequest(context.Background(), ManageRequestInput{ID: "req-1", IPAddress: "10.0.0.1"}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetByID(context.Background(), "req-1"); !errors.Is(err, leave.ErrNotFound) {
		t.Errorf("request still present: %v", err)
	}
	if len(auditLog.events) != 1 {
		t.Fatalf("audit events = %d", len(auditLog.events))
	}
	e := auditLog.events[0]
	if e.Action != audit.ActionDelete || e.Severity != audit.SeverityWarning || e.IPAddress != "10.0.0.1" {
		t.Errorf("audit event = %+v", e)
	}

	if err := ExecuteDeleteRequest(context.Background(), ManageRequestInput{ID: "req-1"}, deps); !errors.Is(err, leave.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
