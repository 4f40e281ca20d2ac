package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"verlof/internal/adapters/http/middleware"
	"verlof/internal/application/orchestrators"
	"verlof/internal/application/projections"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/leave"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Request body caps, enforced by middleware.BodyLimit in NewMux.
const (
	maxRosterUpload = 5 << 20
	maxFormBody     = 1 << 20
)

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/pending", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{})
	case "POST":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		err := orchestrators.ExecuteAdminLogin(r.Context(), orchestrators.AdminLoginInput{
			Password:  r.FormValue("password"),
			IPAddress: middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
		}, orchestrators.AdminLoginDeps{
			PasswordHash: settings.AdminPasswordHash,
			AuditStore:   stores.AuditStore,
		})
		switch {
		case errors.Is(err, orchestrators.ErrLoginDisabled):
			renderTemplateStatus(w, r, http.StatusServiceUnavailable, "login.html", map[string]any{
				"Error": "Inloggen is niet ingesteld op deze server",
			})
			return
		case errors.Is(err, orchestrators.ErrInvalidCredentials):
			renderTemplateStatus(w, r, http.StatusUnauthorized, "login.html", map[string]any{
				"Error": "Onjuist wachtwoord",
			})
			return
		case err != nil:
			internalError(w, err)
			return
		}

		token, err := sessions.Create(audit.ActorAdmin)
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/pending", http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		orchestrators.RecordAudit(r.Context(), stores.AuditStore,
			audit.NewEvent(sess.Actor, audit.CategorySecurity, audit.ActionLogout).
				WithResource("session", "").
				WithRequest(middleware.ClientIP(r), r.UserAgent()))
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handlePending lists requests awaiting a decision (GET /pending)
func handlePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	result, err := projections.QueryGetPendingRequests(r.Context(), projections.GetPendingRequestsDeps{
		RequestStore: stores.RequestStore,
		Location:     settings.Location,
		WorkdayHours: settings.WorkdayHours,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "pending.html", map[string]any{
		"Result": result,
	})
}

// handleRequestStatus changes a request status from the overview (POST /requests/{id}/status)
// PRE: admin session; form field status in pending|approved|rejected
// POST: redirects to the form's return path
func handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	_, err := orchestrators.ExecuteChangeStatus(r.Context(), orchestrators.ChangeStatusInput{
		ManageRequestInput: orchestrators.ManageRequestInput{
			ID:        r.PathValue("id"),
			Actor:     sess.Actor,
			IPAddress: middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
		},
		Status: r.FormValue("status"),
	}, decideDeps())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	http.Redirect(w, r, localRedirect(r.FormValue("return"), "/requests"), http.StatusSeeOther)
}

// handleRequestDelete removes a request from the overview (POST /requests/{id}/delete)
func handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteDeleteRequest(r.Context(), orchestrators.ManageRequestInput{
		ID:        r.PathValue("id"),
		Actor:     sess.Actor,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}, orchestrators.ManageRequestDeps{
		RequestStore: stores.RequestStore,
		AuditStore:   stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	http.Redirect(w, r, localRedirect(r.FormValue("return"), "/requests"), http.StatusSeeOther)
}

// handleExport downloads the requests as a spreadsheet (GET /export.xlsx?status=)
func handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	_, err := orchestrators.ExecuteExportRequests(r.Context(), &buf, orchestrators.ExportRequestsInput{
		Status:    r.URL.Query().Get("status"),
		Actor:     sess.Actor,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}, orchestrators.ExportRequestsDeps{
		RequestStore: stores.RequestStore,
		AuditStore:   stores.AuditStore,
		WorkdayHours: settings.WorkdayHours,
		Location:     settings.Location,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	filename := fmt.Sprintf("verlofaanvragen-%s.xlsx", leave.FormatDate(today()))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	buf.WriteTo(w)
}

// handleRoster shows the roster and imports a spreadsheet (GET/POST /roster)
func handleRoster(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	data := map[string]any{
		"Employees":  settings.Directory.All(),
		"RosterPath": settings.RosterPath,
	}

	switch r.Method {
	case "GET":
		renderTemplate(w, r, "roster.html", data)
	case "POST":
		if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
			data["Error"] = "Upload mislukt of bestand te groot"
			renderTemplateStatus(w, r, http.StatusBadRequest, "roster.html", data)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			data["Error"] = "Kies een .xlsx of .xls bestand"
			renderTemplateStatus(w, r, http.StatusBadRequest, "roster.html", data)
			return
		}
		defer file.Close()

		result, err := orchestrators.ExecuteImportRoster(r.Context(), orchestrators.ImportRosterInput{
			Reader:    file,
			Filename:  header.Filename,
			DryRun:    r.FormValue("dry_run") != "",
			Actor:     sess.Actor,
			IPAddress: middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
		}, orchestrators.ImportRosterDeps{
			Directory:  settings.Directory,
			RosterPath: settings.RosterPath,
			AuditStore: stores.AuditStore,
		})
		if err != nil {
			data["Error"] = "Import mislukt: " + err.Error()
			renderTemplateStatus(w, r, http.StatusBadRequest, "roster.html", data)
			return
		}
		data["Result"] = result
		data["Employees"] = settings.Directory.All()
		if result.DryRun {
			data["Employees"] = result.Employees
		}
		renderTemplate(w, r, "roster.html", data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
