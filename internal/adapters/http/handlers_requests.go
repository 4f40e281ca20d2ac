package web

import (
	"errors"
	"log/slog"
	"net/http"

	"verlof/internal/adapters/http/middleware"
	"verlof/internal/application/listutil"
	"verlof/internal/application/orchestrators"
	"verlof/internal/application/projections"
	"verlof/internal/domain/leave"
)

// sentMessages is the confirmation shown after a submission, per notification channel.
var sentMessages = map[string]string{
	orchestrators.ChannelEmail:  "Je aanvraag is verstuurd. De beheerder heeft een email ontvangen.",
	orchestrators.ChannelGitHub: "Je aanvraag is verstuurd. De beheerder is via GitHub op de hoogte gebracht.",
	orchestrators.ChannelQueued: "Je aanvraag is opgeslagen. De melding aan de beheerder wordt later opnieuw verstuurd.",
	orchestrators.ChannelNone:   "Je aanvraag is opgeslagen.",
}

var durationOptions = []struct{ Value, Label string }{
	{leave.DurationHours, "Een paar uur"},
	{leave.DurationDay, "Hele dag"},
	{leave.DurationMultiple, "Meerdere dagen"},
}

// submitRequestJSON is the JSON body accepted by POST /requests.
type submitRequestJSON struct {
	EmployeeNumber string `json:"employeeNumber"`
	Type           string `json:"type"`
	Duration       string `json:"duration"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Reason         string `json:"reason"`
}

// handleIndex renders the request form (GET /)
func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderIndex(w, r, http.StatusOK, submitRequestJSON{Type: leave.DefaultType, Duration: leave.DefaultDuration}, nil)
}

func renderIndex(w http.ResponseWriter, r *http.Request, status int, form submitRequestJSON, errs leave.FieldErrors) {
	renderTemplateStatus(w, r, status, "index.html", map[string]any{
		"Form":      form,
		"Errors":    errs,
		"Types":     leave.TypeOptions,
		"Durations": durationOptions,
		"Employees": settings.Directory.All(),
		"Sent":      sentMessages[r.URL.Query().Get("sent")],
		"Today":     leave.FormatDate(today()),
	})
}

// handleRequests handles GET (overview list) and POST (submit) for /requests
func handleRequests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		q := r.URL.Query()
		result, err := projections.QueryGetRequestList(r.Context(), projections.GetRequestListQuery{
			Status: q.Get("status"),
			List:   listutil.Parse(q, projections.RequestSortColumns),
		}, projections.GetRequestListDeps{
			RequestStore: stores.RequestStore,
			Location:     settings.Location,
			WorkdayHours: settings.WorkdayHours,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, "requests.html", map[string]any{
			"Result":    result,
			"Statuses":  []string{leave.StatusPending, leave.StatusApproved, leave.StatusRejected},
			"Return":    r.URL.RequestURI(),
			"Pages":     pageLinks(result),
			"SortLinks": sortLinks(result),
		})
	case "POST":
		handleSubmitRequest(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// requestsURL builds an overview link that keeps the status tab and list state.
func requestsURL(status string, p listutil.Params) string {
	v := p.Values()
	if status != "" {
		v.Set("status", status)
	}
	if enc := v.Encode(); enc != "" {
		return "/requests?" + enc
	}
	return "/requests"
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

func pageLinks(res projections.GetRequestListResult) []pageLink {
	if !res.Page.ShowPagination() {
		return nil
	}
	var links []pageLink
	for _, n := range res.Page.PageNumbers() {
		p := res.List
		p.Page = n
		links = append(links, pageLink{Number: n, URL: requestsURL(res.Status, p), Current: n == res.Page.Page})
	}
	return links
}

// sortLinks maps each sort key to the link that sorts by it, flipping direction
// when it is already active. Sorting always returns to the first page.
func sortLinks(res projections.GetRequestListResult) map[string]string {
	links := make(map[string]string, len(projections.RequestSortColumns))
	for _, key := range projections.RequestSortColumns {
		p := res.List
		p.Page = 1
		p.Desc = p.Sort == key && !p.Desc
		p.Sort = key
		links[key] = requestsURL(res.Status, p)
	}
	return links
}

func handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var form submitRequestJSON
	if isJSONRequest(r) {
		if err := strictDecode(r, &form); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ongeldige JSON"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		form = submitRequestJSON{
			EmployeeNumber: r.FormValue("employeeNumber"),
			Type:           r.FormValue("type"),
			Duration:       r.FormValue("duration"),
			StartDate:      r.FormValue("startDate"),
			EndDate:        r.FormValue("endDate"),
			StartTime:      r.FormValue("startTime"),
			EndTime:        r.FormValue("endTime"),
			Reason:         r.FormValue("reason"),
		}
	}

	result, err := orchestrators.ExecuteSubmitRequest(r.Context(), orchestrators.SubmitRequestInput{
		EmployeeNumber: form.EmployeeNumber,
		Type:           form.Type,
		Duration:       form.Duration,
		StartDate:      form.StartDate,
		EndDate:        form.EndDate,
		StartTime:      form.StartTime,
		EndTime:        form.EndTime,
		Reason:         form.Reason,
		IPAddress:      middleware.ClientIP(r),
		UserAgent:      r.UserAgent(),
	}, submitDeps())

	var fe leave.FieldErrors
	if errors.As(err, &fe) && !isJSONRequest(r) {
		renderIndex(w, r, http.StatusBadRequest, form, fe)
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if isJSONRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":           result.Request.ID,
			"status":       result.Request.Status,
			"employeeName": result.Request.EmployeeName,
			"channel":      result.Channel,
		})
		return
	}
	http.Redirect(w, r, "/?sent="+result.Channel, http.StatusSeeOther)
}

// handleSick handles GET (form) and POST (report) for /sick
func handleSick(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		renderSick(w, r, http.StatusOK, orchestrators.SubmitSickLeaveInput{}, nil)
	case "POST":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.SubmitSickLeaveInput{
			EmployeeNumber: r.FormValue("employeeNumber"),
			StartDate:      r.FormValue("startDate"),
			EndDate:        r.FormValue("endDate"),
			Reason:         r.FormValue("reason"),
			IPAddress:      middleware.ClientIP(r),
			UserAgent:      r.UserAgent(),
		}
		result, err := orchestrators.ExecuteSubmitSickLeave(r.Context(), input, submitDeps())
		var fe leave.FieldErrors
		if errors.As(err, &fe) {
			renderSick(w, r, http.StatusBadRequest, input, fe)
			return
		}
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		slog.Info("leave_event", "event", "sick_reported", "request_id", result.Request.ID, "channel", result.Channel)
		http.Redirect(w, r, "/sick?sent="+result.Channel, http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func renderSick(w http.ResponseWriter, r *http.Request, status int, form orchestrators.SubmitSickLeaveInput, errs leave.FieldErrors) {
	day := leave.FormatDate(today())
	if form.StartDate == "" {
		form.StartDate = day
	}
	if form.EndDate == "" {
		form.EndDate = form.StartDate
	}
	renderTemplateStatus(w, r, status, "sick.html", map[string]any{
		"Form":      form,
		"Errors":    errs,
		"Employees": settings.Directory.All(),
		"Sent":      sentMessages[r.URL.Query().Get("sent")],
		"Today":     day,
	})
}

// handleCalendar renders the month grid (GET /calendar?month=YYYY-MM)
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	now := today()
	year, month := projections.ParseMonth(r.URL.Query().Get("month"), now)
	result, err := projections.QueryGetCalendarMonth(r.Context(), projections.GetCalendarMonthQuery{
		Year:  year,
		Month: month,
		Today: now,
	}, projections.GetCalendarMonthDeps{RequestStore: stores.RequestStore})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "calendar.html", map[string]any{
		"Calendar": result,
		"Blanks":   make([]struct{}, result.Leading),
	})
}
