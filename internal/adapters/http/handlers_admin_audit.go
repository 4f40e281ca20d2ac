package web

import (
	"net/http"
	"strconv"
	"time"

	auditStore "verlof/internal/adapters/storage/audit"
	auditDomain "verlof/internal/domain/audit"
)

var auditCategories = []auditDomain.Category{
	auditDomain.CategoryLeave,
	auditDomain.CategorySecurity,
	auditDomain.CategorySystem,
}

// handleAdminAuditTrail renders the audit trail (GET /admin/audit)
// PRE: admin session
// POST: Renders audit trail with optional category, action and resource filters
func handleAdminAuditTrail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   auditDomain.Category(q.Get("category")),
		Action:     auditDomain.Action(q.Get("action")),
		ResourceID: q.Get("resource_id"),
	}

	limit := 100
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	for i := range events {
		events[i].Timestamp = events[i].Timestamp.In(settings.Location)
	}

	renderTemplate(w, r, "admin_audit.html", map[string]any{
		"Events":     events,
		"Filter":     filter,
		"Categories": auditCategories,
		"Limit":      limit,
	})
}

// handleAdminPerf renders request and query timings (GET /admin/perf?minutes=)
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "performance collector not configured", http.StatusServiceUnavailable)
		return
	}

	minutes := 60
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 && m <= 24*60 {
		minutes = m
	}
	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 20)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	renderTemplate(w, r, "admin_perf.html", map[string]any{
		"Snapshot": snap,
		"Minutes":  minutes,
	})
}
