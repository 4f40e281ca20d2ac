package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"verlof/internal/adapters/roster"
	auditStore "verlof/internal/adapters/storage/audit"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/employee"
)

// ImportRosterInput carries an uploaded spreadsheet.
// PRE: Filename ends in .xlsx, .xlsm or .xls
type ImportRosterInput struct {
	Reader    io.Reader
	Filename  string
	DryRun    bool
	Actor     string
	IPAddress string
	UserAgent string
}

// ImportRosterResult holds aggregate counts from an import run.
type ImportRosterResult struct {
	Imported  int
	Skipped   int
	Employees []employee.Employee
	DryRun    bool
}

// ImportRosterDeps holds external dependencies for the import orchestrator.
// RosterPath may be empty, in which case only the in-memory directory changes.
type ImportRosterDeps struct {
	Directory  *employee.Directory
	RosterPath string
	AuditStore auditStore.Store
}

// ExecuteImportRoster replaces the employee directory with the spreadsheet contents.
// PRE: deps.Directory is set
// POST: roster file rewritten and directory replaced, unless DryRun
// INVARIANT: a failed import leaves both the file and the directory unchanged
func ExecuteImportRoster(ctx context.Context, input ImportRosterInput, deps ImportRosterDeps) (ImportRosterResult, error) {
	parsed, err := roster.ReadSpreadsheet(input.Reader, input.Filename)
	if err != nil {
		return ImportRosterResult{}, fmt.Errorf("read roster spreadsheet: %w", err)
	}
	res := ImportRosterResult{
		Imported:  len(parsed.Employees),
		Skipped:   parsed.Skipped,
		Employees: parsed.Employees,
		DryRun:    input.DryRun,
	}
	if input.DryRun {
		return res, nil
	}

	if deps.RosterPath != "" {
		if err := roster.Save(deps.RosterPath, parsed.Employees); err != nil {
			return ImportRosterResult{}, err
		}
	}
	if err := deps.Directory.Replace(parsed.Employees); err != nil {
		return ImportRosterResult{}, fmt.Errorf("replace directory: %w", err)
	}

	slog.Info("roster_event", "event", "imported", "file", input.Filename, "employees", res.Imported, "skipped", res.Skipped)
	RecordAudit(ctx, deps.AuditStore, audit.NewEvent(actorOrAdmin(input.Actor), audit.CategorySystem, audit.ActionImport).
		WithResource("roster", input.Filename).
		WithDescription(fmt.Sprintf("%d medewerkers geïmporteerd, %d overgeslagen", res.Imported, res.Skipped)).
		WithRequest(input.IPAddress, input.UserAgent))
	return res, nil
}
