package projections

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"verlof/internal/application/notify"
	domainLeave "verlof/internal/domain/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

// ErrMissingToken is returned when the approval link carries no token.
var ErrMissingToken = errors.New("admin token is required")

// GetAdminRequestQuery carries the token from the approval link.
type GetAdminRequestQuery struct {
	Token string
}

// GetAdminRequestResult carries the request behind an approval link.
type GetAdminRequestResult struct {
	Request RequestView
	ICSLink string // set once approved
	Queued  []domainOutbox.Entry
}

// GetAdminRequestDeps holds dependencies for QueryGetAdminRequest.
type GetAdminRequestDeps struct {
	RequestStore RequestStore
	OutboxStore  OutboxStore // optional
	Links        notify.Links
	Location     *time.Location
	WorkdayHours float64
}

// QueryGetAdminRequest resolves an approval-link token to its request.
// PRE: none
// POST: returns domainLeave.ErrNotFound for unknown or malformed tokens
// POST: Queued lists the request's outbox entries, oldest first; a failing outbox lookup leaves it empty
func QueryGetAdminRequest(ctx context.Context, query GetAdminRequestQuery, deps GetAdminRequestDeps) (GetAdminRequestResult, error) {
	if query.Token == "" {
		return GetAdminRequestResult{}, ErrMissingToken
	}
	if !domainLeave.IsWellFormedToken(query.Token) {
		return GetAdminRequestResult{}, domainLeave.ErrNotFound
	}
	r, err := deps.RequestStore.GetByToken(ctx, query.Token)
	if err != nil {
		return GetAdminRequestResult{}, err
	}
	result := GetAdminRequestResult{Request: newRequestView(r, deps.Location, deps.WorkdayHours)}
	if r.Status == domainLeave.StatusApproved {
		result.ICSLink = deps.Links.ICS(r.AdminToken)
	}
	if deps.OutboxStore != nil {
		entries, err := deps.OutboxStore.ListByRequest(ctx, r.ID)
		if err != nil {
			slog.Warn("outbox_event", "event", "list_by_request_failed", "request_id", r.ID, "error", err)
		}
		result.Queued = entries
	}
	return result, nil
}
