package outbox

import (
	"context"

	domain "verlof/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or domain.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry to the database.
	// PRE: entry has been validated
	// POST: Entry is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries that need to be processed (pending or retrying).
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by created_at
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListRecent returns the most recent entries in any status for the admin page.
	// PRE: limit > 0
	// POST: newest first
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListByRequest returns every entry queued for a leave request.
	ListByRequest(ctx context.Context, requestID string) ([]domain.Entry, error)

	// CountByStatus returns the number of entries per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

var _ Store = (*SQLiteStore)(nil)
