package leave

import (
	"context"
	"time"

	domain "verlof/internal/domain/leave"
)

// Store defines the interface for leave request persistence.
type Store interface {
	// Save inserts or updates a request.
	// PRE: r has been validated and has an ID and AdminToken
	// POST: request persisted
	Save(ctx context.Context, r domain.Request) error

	// GetByID returns the request or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.Request, error)

	// GetByToken returns the request holding the admin token or domain.ErrNotFound.
	GetByToken(ctx context.Context, token string) (domain.Request, error)

	// List returns requests with the given status, or all when status is empty.
	// POST: newest first
	List(ctx context.Context, status string) ([]domain.Request, error)

	// ListPending returns pending requests, oldest first.
	ListPending(ctx context.Context) ([]domain.Request, error)

	// ListOverlapping returns requests whose date range intersects [from, to].
	// POST: ordered by start date
	ListOverlapping(ctx context.Context, from, to time.Time) ([]domain.Request, error)

	// SetGitHubIssue records the fallback issue number on a request.
	SetGitHubIssue(ctx context.Context, id string, number int) error

	// Delete removes a request or returns domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

var _ Store = (*SQLiteStore)(nil)
