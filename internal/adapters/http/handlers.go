package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"verlof/internal/adapters/http/middleware"
	"verlof/internal/application/orchestrators"
	"verlof/internal/application/projections"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/leave"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

//go:embed templates/*.html
var templateFS embed.FS

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	_, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"isLoggedIn": func() bool { return loggedIn },
		"csrfField":  func() template.HTML { return csrf.TemplateField(r) },
		"currentPath": func() string {
			return r.URL.Path
		},
		"hours":       formatHours,
		"statusLabel": leave.StatusLabel,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// formatHours renders 8 as "8" and 2.5 as "2.5".
func formatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 2, 64)
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}

// renderError shows the shared error page ("Fout") with a Dutch message.
func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	renderTemplateStatus(w, r, status, "error.html", map[string]any{
		"Message": message,
	})
}

// requireAdmin checks for an overview session.
// HTML requests are redirected to /login; API requests get 401.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		if wantsJSON(r) || isJSONRequest(r) {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
		} else {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		}
		return middleware.Session{}, false
	}
	return sess, true
}

// localRedirect returns target when it is a same-site path, else fallback.
func localRedirect(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\") {
		return target
	}
	return fallback
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	var fe leave.FieldErrors
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest
	case errors.Is(err, leave.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, leave.ErrNotPending), errors.Is(err, leave.ErrAlreadyPending):
		return http.StatusConflict
	case errors.Is(err, leave.ErrInvalidStatus), errors.Is(err, orchestrators.ErrMissingLocator), errors.Is(err, projections.ErrMissingToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageForError returns the Dutch page text for a mapped error.
func messageForError(err error) string {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		return "Verlofaanvraag niet gevonden"
	case errors.Is(err, leave.ErrNotPending):
		return "Deze aanvraag is al beoordeeld"
	case errors.Is(err, leave.ErrAlreadyPending):
		return "Deze aanvraag is al in behandeling"
	case errors.Is(err, projections.ErrMissingToken), errors.Is(err, orchestrators.ErrMissingLocator):
		return "Geen token opgegeven"
	default:
		return "Ongeldige aanvraag"
	}
}

// writeDomainError renders err as an error page or JSON, hiding internal errors.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	if wantsJSON(r) || isJSONRequest(r) {
		body := map[string]any{"error": messageForError(err)}
		var fe leave.FieldErrors
		if errors.As(err, &fe) {
			body["fields"] = fe
		}
		writeJSON(w, status, body)
		return
	}
	renderError(w, r, status, messageForError(err))
}

func auditActor(r *http.Request) string {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		return sess.Actor
	}
	return audit.ActorAdmin
}

func submitDeps() orchestrators.SubmitRequestDeps {
	return orchestrators.SubmitRequestDeps{
		RequestStore: stores.RequestStore,
		AuditStore:   stores.AuditStore,
		Directory:    settings.Directory,
		Integrations: settings.Integrations,
		Now:          timeNow,
		GenerateID:   generateID,
		NewToken:     leave.NewAdminToken,
	}
}

func decideDeps() orchestrators.DecideRequestDeps {
	return orchestrators.DecideRequestDeps{
		RequestStore: stores.RequestStore,
		AuditStore:   stores.AuditStore,
		Directory:    settings.Directory,
		Integrations: settings.Integrations,
		Now:          timeNow,
		GenerateID:   generateID,
	}
}

func today() time.Time {
	return leave.Today(timeNow(), settings.Location)
}
