package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	auditStore "verlof/internal/adapters/storage/audit"
	"verlof/internal/domain/audit"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrLoginDisabled      = errors.New("admin login is not configured")
)

// AdminLoginInput carries input for the overview login.
type AdminLoginInput struct {
	Password  string
	IPAddress string
	UserAgent string
}

// AdminLoginDeps holds dependencies for ExecuteAdminLogin.
type AdminLoginDeps struct {
	PasswordHash string // bcrypt
	AuditStore   auditStore.Store
}

// ExecuteAdminLogin checks the overview password against the configured bcrypt hash.
// PRE: none
// POST: nil on success; every attempt is audited
func ExecuteAdminLogin(ctx context.Context, input AdminLoginInput, deps AdminLoginDeps) error {
	if deps.PasswordHash == "" {
		slog.Warn("auth_event", "event", "login_blocked", "reason", "no_password_hash")
		return ErrLoginDisabled
	}

	event := audit.NewEvent(audit.ActorAdmin, audit.CategorySecurity, audit.ActionLogin).
		WithResource("session", "").
		WithRequest(input.IPAddress, input.UserAgent)

	if input.Password == "" || bcrypt.CompareHashAndPassword([]byte(deps.PasswordHash), []byte(input.Password)) != nil {
		slog.Info("auth_event", "event", "login_failed", "ip", input.IPAddress)
		RecordAudit(ctx, deps.AuditStore, event.WithSeverity(audit.SeverityWarning).WithDescription("Mislukte inlogpoging"))
		return ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "login_success", "ip", input.IPAddress)
	RecordAudit(ctx, deps.AuditStore, event.WithDescription("Ingelogd"))
	return nil
}

// HashPassword returns a bcrypt hash for the admin password, used by the config tooling.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
