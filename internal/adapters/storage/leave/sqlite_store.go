package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"verlof/internal/adapters/storage"
	domain "verlof/internal/domain/leave"
)

const selectColumns = `SELECT id, employee_number, employee_name, type, duration, start_date, end_date,
	start_time, end_time, reason, status, admin_token, github_issue_number, created_at, decided_at
	FROM leave_request`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new leave request store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a request.
// PRE: r has been validated and has an ID and AdminToken
// POST: request persisted; AdminToken and CreatedAt never change on update
func (s *SQLiteStore) Save(ctx context.Context, r domain.Request) error {
	var decidedAt sql.NullString
	if !r.DecidedAt.IsZero() {
		decidedAt = sql.NullString{String: storage.FormatTimestamp(r.DecidedAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_request (id, employee_number, employee_name, type, duration, start_date, end_date,
		   start_time, end_time, reason, status, admin_token, github_issue_number, created_at, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   employee_number=excluded.employee_number, employee_name=excluded.employee_name,
		   type=excluded.type, duration=excluded.duration, start_date=excluded.start_date,
		   end_date=excluded.end_date, start_time=excluded.start_time, end_time=excluded.end_time,
		   reason=excluded.reason, status=excluded.status,
		   github_issue_number=excluded.github_issue_number, decided_at=excluded.decided_at`,
		r.ID, r.EmployeeNumber, r.EmployeeName, r.Type, r.Duration,
		domain.FormatDate(r.StartDate), domain.FormatDate(r.EndDate),
		r.StartTime, r.EndTime, r.Reason, r.Status, r.AdminToken, r.GitHubIssueNumber,
		storage.FormatTimestamp(r.CreatedAt), decidedAt)
	if err != nil {
		return fmt.Errorf("save leave request %s: %w", r.ID, err)
	}
	return nil
}

// GetByID returns the request or domain.ErrNotFound.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Request, error) {
	return scanRequest(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
}

// GetByToken returns the request holding the admin token or domain.ErrNotFound.
func (s *SQLiteStore) GetByToken(ctx context.Context, token string) (domain.Request, error) {
	if token == "" {
		return domain.Request{}, domain.ErrNotFound
	}
	return scanRequest(s.db.QueryRowContext(ctx, selectColumns+` WHERE admin_token = ?`, token))
}

// List returns requests with the given status, or all when status is empty.
// POST: newest first
func (s *SQLiteStore) List(ctx context.Context, status string) ([]domain.Request, error) {
	if status == "" {
		return s.query(ctx, selectColumns+` ORDER BY created_at DESC, id`)
	}
	return s.query(ctx, selectColumns+` WHERE status = ? ORDER BY created_at DESC, id`, status)
}

// ListPending returns pending requests, oldest first.
func (s *SQLiteStore) ListPending(ctx context.Context) ([]domain.Request, error) {
	return s.query(ctx, selectColumns+` WHERE status = ? ORDER BY created_at ASC, id`, domain.StatusPending)
}

// ListOverlapping returns requests whose date range intersects [from, to].
// Civil dates are stored as YYYY-MM-DD so string comparison orders them.
func (s *SQLiteStore) ListOverlapping(ctx context.Context, from, to time.Time) ([]domain.Request, error) {
	return s.query(ctx, selectColumns+` WHERE start_date <= ? AND end_date >= ? ORDER BY start_date, created_at`,
		domain.FormatDate(to), domain.FormatDate(from))
}

// SetGitHubIssue records the fallback issue number on a request.
func (s *SQLiteStore) SetGitHubIssue(ctx context.Context, id string, number int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE leave_request SET github_issue_number = ? WHERE id = ?`, number, id)
	if err != nil {
		return fmt.Errorf("set github issue on %s: %w", id, err)
	}
	return requireOne(res)
}

// Delete removes a request or returns domain.ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leave_request WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete leave request %s: %w", id, err)
	}
	return requireOne(res)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (domain.Request, error) {
	var r domain.Request
	var startDate, endDate, createdAt string
	var decidedAt sql.NullString
	err := row.Scan(&r.ID, &r.EmployeeNumber, &r.EmployeeName, &r.Type, &r.Duration, &startDate, &endDate,
		&r.StartTime, &r.EndTime, &r.Reason, &r.Status, &r.AdminToken, &r.GitHubIssueNumber,
		&createdAt, &decidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Request{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Request{}, fmt.Errorf("scan leave request: %w", err)
	}
	r.StartDate, _ = domain.ParseDate(startDate)
	r.EndDate, _ = domain.ParseDate(endDate)
	r.CreatedAt = storage.ParseTimestamp(createdAt)
	if decidedAt.Valid && decidedAt.String != "" {
		r.DecidedAt = storage.ParseTimestamp(decidedAt.String)
	}
	return r, nil
}

