package web

import (
	"errors"
	"net/http"
	"strconv"

	"verlof/internal/adapters/http/middleware"
	"verlof/internal/application/orchestrators"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/outbox"
)

// handleAdminOutbox lists queued integration actions (GET /admin/outbox)
// Responds with JSON when the client asks for it.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 200 {
		limit = n
	}
	entries, err := stores.OutboxStore.ListRecent(ctx, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	counts, err := stores.OutboxStore.CountByStatus(ctx)
	if err != nil {
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "counts": counts})
		return
	}
	renderTemplate(w, r, "admin_outbox.html", map[string]any{
		"Entries": entries,
		"Counts":  counts,
		"Notice":  r.URL.Query().Get("notice"),
	})
}

// handleAdminOutboxAction retries or abandons one entry (POST /admin/outbox/{id}/{retry|abandon})
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if settings.Processor == nil {
		http.Error(w, "outbox processor not configured", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	entryID := r.PathValue("id")

	var (
		action audit.Action
		notice string
		err    error
	)
	switch r.PathValue("action") {
	case "retry":
		action = audit.ActionRetry
		var entry outbox.Entry
		entry, err = settings.Processor.ProcessSingle(ctx, entryID)
		notice = "retry_" + entry.Status
	case "abandon":
		action = audit.ActionAbandon
		err = settings.Processor.AbandonEntry(ctx, entryID)
		notice = "abandoned"
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, outbox.ErrNotFound):
		http.Error(w, "outbox entry not found", http.StatusNotFound)
		return
	case errors.Is(err, outbox.ErrNotRetryable):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	orchestrators.RecordAudit(ctx, stores.AuditStore,
		audit.NewEvent(sess.Actor, audit.CategorySystem, action).
			WithResource("outbox", entryID).
			WithRequest(middleware.ClientIP(r), r.UserAgent()))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"status": notice})
		return
	}
	http.Redirect(w, r, "/admin/outbox?notice="+notice, http.StatusSeeOther)
}
