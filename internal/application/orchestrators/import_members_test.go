package orchestrators

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"verlof/internal/adapters/roster"
	"verlof/internal/adapters/spreadsheet"
	"verlof/internal/domain/audit"
)

func rosterWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	err := spreadsheet.Write(&buf, spreadsheet.Sheet{
		Name:   "Personeel",
		Header: []string{"Personeelsnummer", "Naam", "E-mail"},
		Rows:   rows,
	})
	if err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestExecuteImportRoster(t *testing.T) {
	dir := testDirectory()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	auditLog := &mockAuditStore{}

	res, err := ExecuteImportRoster(context.Background(), ImportRosterInput{
		Reader:   rosterWorkbook(t, [][]any{{"200001", "Anna de Vries", "anna@example.com"}, {"", "Zonder nummer", ""}, {"200002", "Bram Jansen", ""}}),
		Filename: "personeel.xlsx",
	}, ImportRosterDeps{Directory: dir, RosterPath: path, AuditStore: auditLog})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v", res)
	}
	if dir.Len() != 2 || dir.NameFor("200001") != "Anna de Vries" {
		t.Errorf("directory not replaced: %v", dir.All())
	}
	saved, err := roster.Load(path)
	if err != nil || len(saved) != 2 {
		t.Fatalf("roster file = %v, err %v", saved, err)
	}
	if got := auditLog.actions(); len(got) != 1 || got[0] != audit.ActionImport {
		t.Errorf("audit = %v", got)
	}
}

func TestExecuteImportRoster_DryRunChangesNothing(t *testing.T) {
	dir := testDirectory()
	res, err := ExecuteImportRoster(context.Background(), ImportRosterInput{
		Reader:   rosterWorkbook(t, [][]any{{"200001", "Anna de Vries", ""}}),
		Filename: "personeel.xlsx",
		DryRun:   true,
	}, ImportRosterDeps{Directory: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.DryRun || res.Imported != 1 {
		t.Errorf("result = %+v", res)
	}
	if dir.Len() != 2 {
		t.Error("dry run must not touch the directory")
	}
}

func TestExecuteImportRoster_BadFileKeepsDirectory(t *testing.T) {
	dir := testDirectory()
	_, err := ExecuteImportRoster(context.Background(), ImportRosterInput{
		Reader:   bytes.NewBufferString("nummer,naam\n1,a\n"),
		Filename: "personeel.csv",
	}, ImportRosterDeps{Directory: dir})
	if err == nil {
		t.Fatal("expected error for unsupported file")
	}
	if dir.Len() != 2 {
		t.Error("failed import must not touch the directory")
	}
}
