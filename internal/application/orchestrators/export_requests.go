package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"verlof/internal/adapters/spreadsheet"
	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/leave"
)

// ExportRequestsInput selects which requests to export. An empty Status exports all.
type ExportRequestsInput struct {
	Status    string
	Actor     string
	IPAddress string
	UserAgent string
}

// ExportRequestsDeps holds dependencies for ExecuteExportRequests.
type ExportRequestsDeps struct {
	RequestStore leaveStore.Store
	AuditStore   auditStore.Store
	WorkdayHours float64
	Location     *time.Location
}

var exportHeader = []string{
	"Personeelsnummer", "Naam", "Type", "Duur", "Startdatum", "Einddatum",
	"Begintijd", "Eindtijd", "Dagen", "Uren", "Reden", "Status", "Ingediend", "Beslist",
}

var exportWidths = map[string]float64{
	"A": 16, "B": 24, "C": 14, "E": 12, "F": 12, "K": 40, "L": 14, "M": 18, "N": 18,
}

// ExecuteExportRequests writes the requests as an .xlsx workbook to w.
// PRE: Status is empty or a valid status
// POST: one row per request, newest first; returns the row count
func ExecuteExportRequests(ctx context.Context, w io.Writer, input ExportRequestsInput, deps ExportRequestsDeps) (int, error) {
	if input.Status != "" && !leave.IsValidStatus(input.Status) {
		return 0, leave.ErrInvalidStatus
	}
	requests, err := deps.RequestStore.List(ctx, input.Status)
	if err != nil {
		return 0, fmt.Errorf("list requests: %w", err)
	}
	hours := deps.WorkdayHours
	if hours <= 0 {
		hours = leave.DefaultWorkdayHours
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	rows := make([][]any, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []any{
			r.EmployeeNumber,
			r.EmployeeName,
			leave.TypeLabel(r.Type),
			r.Duration,
			leave.FormatDate(r.StartDate),
			leave.FormatDate(r.EndDate),
			r.StartTime,
			r.EndTime,
			r.Days(),
			r.Hours(hours),
			r.Reason,
			leave.StatusLabel(r.Status),
			formatStamp(r.CreatedAt, loc),
			formatStamp(r.DecidedAt, loc),
		})
	}

	sheet := spreadsheet.Sheet{Name: "Verlof", Header: exportHeader, Rows: rows, Widths: exportWidths}
	if err := spreadsheet.Write(w, sheet); err != nil {
		return 0, err
	}

	slog.Info("leave_event", "event", "requests_exported", "status", input.Status, "rows", len(rows))
	RecordAudit(ctx, deps.AuditStore, audit.NewEvent(actorOrAdmin(input.Actor), audit.CategoryLeave, audit.ActionExport).
		WithDescription(fmt.Sprintf("%d aanvragen geëxporteerd", len(rows))).
		WithRequest(input.IPAddress, input.UserAgent))
	return len(rows), nil
}

func formatStamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
