package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"verlof/internal/adapters/http/middleware"
	"verlof/internal/adapters/http/perf"
	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	outboxStore "verlof/internal/adapters/storage/outbox"
	"verlof/internal/application/orchestrators"
	"verlof/internal/application/projections"
	"verlof/internal/domain/employee"
	"verlof/internal/domain/leave"
)

// Stores holds all storage dependencies.
type Stores struct {
	RequestStore leaveStore.Store
	OutboxStore  outboxStore.Store
	AuditStore   auditStore.Store
}

// Config carries the non-storage dependencies of the handlers.
type Config struct {
	Directory         *employee.Directory
	Integrations      orchestrators.Integrations
	Processor         *orchestrators.OutboxProcessor
	AdminPasswordHash string // bcrypt; empty disables the overview login
	RosterPath        string
	Location          *time.Location
	ADVHours          float64
	WorkdayHours      float64
	CSRFKey           []byte // 32 bytes; random per start when empty
	Production        bool
	TrustedOrigins    []string
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Integrations.Location == nil {
		c.Integrations.Location = c.Location
	}
	if c.ADVHours <= 0 {
		c.ADVHours = projections.DefaultADVHours
	}
	if c.WorkdayHours <= 0 {
		c.WorkdayHours = leave.DefaultWorkdayHours
	}
	if c.Directory == nil {
		c.Directory, _ = employee.NewDirectory(employee.DefaultRoster)
	}
	return c
}

// LoadCSRFKey decodes the CSRF secret (hex-encoded, 32 bytes).
// In production the key MUST be set; in development an empty value yields a random key.
func LoadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("VERLOF_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("VERLOF_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set VERLOF_CSRF_KEY so forms survive a restart")
	return key, nil
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global settings (set by NewMux)
var settings Config

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

var limiter *middleware.RateLimiter

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, c Config, collector *perf.Collector) http.Handler {
	stores = s
	settings = c.withDefaults()
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = settings.Production

	mux := http.NewServeMux()
	if staticDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	registerRoutes(mux)

	csrfKey := settings.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey, _ = LoadCSRFKey("", false)
	}

	if limiter != nil {
		limiter.Close()
	}
	limiter = middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost first: Timing -> RateLimit -> Auth -> BodyLimit -> CSRF -> SecurityHeaders -> mux
	// The body cap sits outside CSRF because the token check parses the form.
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, middleware.CSRFOptions{Secure: settings.Production, TrustedOrigins: settings.TrustedOrigins}),
		middleware.BodyLimit(maxFormBody, map[string]int64{"/roster": maxRosterUpload}),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}

// Close releases background resources started by NewMux.
func Close() {
	if limiter != nil {
		limiter.Close()
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Employee pages
	mux.HandleFunc("/{$}", handleIndex)
	mux.HandleFunc("/requests", handleRequests)
	mux.HandleFunc("/sick", handleSick)
	mux.HandleFunc("/calendar", handleCalendar)
	mux.HandleFunc("/api/employees", handleEmployeeSearch)
	mux.HandleFunc("/api/adv-balance", handleAdvBalance)

	// Approval link
	mux.HandleFunc("/admin", handleAdminRequest)
	mux.HandleFunc("/admin/decide", handleAdminDecide)
	mux.HandleFunc("/ics", handleICS)

	// Overview (session)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/pending", handlePending)
	mux.HandleFunc("POST /requests/{id}/status", handleRequestStatus)
	mux.HandleFunc("POST /requests/{id}/delete", handleRequestDelete)
	mux.HandleFunc("/export.xlsx", handleExport)
	mux.HandleFunc("/roster", handleRoster)
	mux.HandleFunc("/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("POST /admin/outbox/{id}/{action}", handleAdminOutboxAction)
	mux.HandleFunc("/admin/audit", handleAdminAuditTrail)
	mux.HandleFunc("/admin/perf", handleAdminPerf)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}
