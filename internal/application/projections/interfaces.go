package projections

import (
	"context"
	"time"

	domainLeave "verlof/internal/domain/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

// RequestStore interface for leave request queries.
type RequestStore interface {
	GetByToken(ctx context.Context, token string) (domainLeave.Request, error)
	List(ctx context.Context, status string) ([]domainLeave.Request, error)
	ListPending(ctx context.Context) ([]domainLeave.Request, error)
	ListOverlapping(ctx context.Context, from, to time.Time) ([]domainLeave.Request, error)
}

// OutboxStore interface for the integration actions queued for a request.
type OutboxStore interface {
	ListByRequest(ctx context.Context, requestID string) ([]domainOutbox.Entry, error)
}
