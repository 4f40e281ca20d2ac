package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	outboxStore "verlof/internal/adapters/storage/outbox"
	domain "verlof/internal/domain/outbox"
)

// ErrNoExecutor is returned when an entry's action type has no registered executor.
var ErrNoExecutor = errors.New("no executor registered for action type")

// OutboxProcessor replays deferred integration actions.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the external ID (e.g., GitHub issue number) and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// ProcessStats summarises one pass over the outbox.
type ProcessStats struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int // still backing off
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		now:       time.Now,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 25,
	}
}

// WithClock replaces the processor's time source.
func (p *OutboxProcessor) WithClock(now func() time.Time) *OutboxProcessor {
	p.now = now
	return p
}

// WithBackoff sets the base and maximum retry delays.
func (p *OutboxProcessor) WithBackoff(base, maxDelay time.Duration) *OutboxProcessor {
	p.baseDelay = base
	p.maxDelay = maxDelay
	return p
}

// ProcessPending processes pending outbox entries with retries.
// PRE: Context is valid
// POST: due entries are attempted once; entries still backing off are skipped
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessStats, error) {
	var stats ProcessStats
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if !entry.IsDue(p.now(), p.baseDelay, p.maxDelay) {
			stats.Skipped++
			continue
		}
		stats.Processed++
		ok, err := p.attempt(ctx, entry)
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
		if ok {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	if stats.Processed > 0 {
		slog.Info("outbox_event", "event", "pass_complete", "processed", stats.Processed, "succeeded", stats.Succeeded, "failed", stats.Failed, "skipped", stats.Skipped)
	}
	return stats, nil
}

// attempt runs one entry and saves the outcome. The bool reports success.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) (bool, error) {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAttempt(p.now())
		entry.MarkFailed(fmt.Errorf("%w: %s", ErrNoExecutor, entry.ActionType))
		return false, p.store.Save(ctx, entry)
	}

	entry.MarkAttempt(p.now())
	externalID, err := executor.Execute(ctx, entry.Payload)
	succeeded := err == nil
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}

	if err := p.store.Save(ctx, entry); err != nil {
		return succeeded, fmt.Errorf("save outbox entry: %w", err)
	}
	return succeeded, nil
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// An exhausted entry is granted one more attempt.
// PRE: entryID is non-empty
// POST: Entry is processed, status updated; returns the saved entry
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("get outbox entry: %w", err)
	}
	if err := entry.Rearm(); err != nil {
		return entry, err
	}
	if _, err := p.attempt(ctx, entry); err != nil {
		return entry, err
	}
	return p.store.GetByID(ctx, entryID)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty; entry not done
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.Status == domain.StatusDone {
		return domain.ErrNotRetryable
	}
	entry.MarkAbandoned()
	slog.Info("outbox_event", "event", "abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
	return p.store.Save(ctx, entry)
}

// Run processes the outbox every interval until ctx is cancelled.
// PRE: interval > 0
// POST: returns nil once ctx is done
func (p *OutboxProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("outbox_worker_started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox_worker_stopped")
			return nil
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if _, err := p.ProcessPending(passCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("outbox_background_process_failed", "error", err.Error())
			}
			cancel()
		}
	}
}
