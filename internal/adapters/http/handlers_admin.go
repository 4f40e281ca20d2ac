package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"verlof/internal/adapters/http/middleware"
	"verlof/internal/adapters/ics"
	"verlof/internal/application/orchestrators"
	"verlof/internal/application/projections"
	"verlof/internal/domain/leave"
)

// ActorApprovalLink identifies decisions taken through the emailed approval link.
const ActorApprovalLink = "admin-link"

func adminRequestDeps() projections.GetAdminRequestDeps {
	return projections.GetAdminRequestDeps{
		RequestStore: stores.RequestStore,
		OutboxStore:  stores.OutboxStore,
		Links:        settings.Integrations.Links,
		Location:     settings.Location,
		WorkdayHours: settings.WorkdayHours,
	}
}

// handleAdminRequest shows one request behind an approval link (GET /admin?token=)
// PRE: token from the notification email
// POST: renders details with approve/reject buttons while pending
func handleAdminRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := projections.QueryGetAdminRequest(r.Context(), projections.GetAdminRequestQuery{
		Token: r.URL.Query().Get("token"),
	}, adminRequestDeps())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	renderTemplate(w, r, "admin.html", map[string]any{
		"Request": result.Request,
		"ICSLink": result.ICSLink,
		"Queued":  result.Queued,
	})
}

// handleAdminDecide applies the decision from the approval page (POST /admin/decide)
// PRE: form fields token and decision (approved|rejected)
// POST: renders the outcome page; integration failures are reported, not fatal
func handleAdminDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	token := r.FormValue("token")
	if token == "" {
		writeDomainError(w, r, projections.ErrMissingToken)
		return
	}
	if !leave.IsWellFormedToken(token) {
		writeDomainError(w, r, leave.ErrNotFound)
		return
	}

	result, err := orchestrators.ExecuteDecideRequest(r.Context(), orchestrators.DecideRequestInput{
		Token:     token,
		Decision:  r.FormValue("decision"),
		Actor:     ActorApprovalLink,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}, decideDeps())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	renderTemplate(w, r, "admin_done.html", map[string]any{
		"Request": result.Request,
		"Message": decisionMessage(result),
		"ICSLink": icsLinkFor(result),
	})
}

func icsLinkFor(result orchestrators.DecideRequestResult) string {
	if result.Request.Status != leave.StatusApproved {
		return ""
	}
	return "/ics?token=" + result.Request.AdminToken
}

// decisionMessage is the outcome text shown after deciding.
func decisionMessage(result orchestrators.DecideRequestResult) string {
	if result.Request.Status == leave.StatusRejected {
		return "De verlofaanvraag is afgewezen."
	}
	admin := settings.Integrations.AdminEmail
	switch {
	case result.EmailSent && admin != "":
		return fmt.Sprintf("Email is verzonden naar %s. Het agenda item (ICS bestand) is bijgevoegd in de email.", admin)
	case result.Queued > 0:
		return "Email kon niet automatisch worden verzonden en wordt later opnieuw geprobeerd. Download het agenda item hieronder."
	default:
		return "De verlofaanvraag is goedgekeurd. Download het agenda item hieronder."
	}
}

// handleICS serves the calendar item for a request (GET /ics?token=)
func handleICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	result, err := projections.QueryGetAdminRequest(r.Context(), projections.GetAdminRequestQuery{
		Token: r.URL.Query().Get("token"),
	}, adminRequestDeps())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	req := result.Request.Request
	data, err := ics.Encode(req, timeNow(), settings.Location)
	if err != nil {
		internalError(w, err)
		return
	}
	slog.Info("leave_event", "event", "ics_downloaded", "request_id", req.ID)
	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ics.Filename(req)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
