package web

import (
	"net/http"
	"strconv"
	"strings"

	"verlof/internal/application/projections"
)

// employeeJSON is the public view of a roster entry. Email addresses stay private.
type employeeJSON struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

const maxSearchResults = 10

// handleEmployeeSearch returns matching employees (GET /api/employees?q=)
func handleEmployeeSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	matches := settings.Directory.Search(r.URL.Query().Get("q"))
	out := make([]employeeJSON, 0, len(matches))
	for _, e := range matches {
		if len(out) == maxSearchResults {
			break
		}
		out = append(out, employeeJSON{Number: e.Number, Name: e.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAdvBalance returns the ADV hours left this year (GET /api/adv-balance?employee=&year=)
func handleAdvBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	number := strings.TrimSpace(r.URL.Query().Get("employee"))
	if number == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Personeelsnummer is verplicht"})
		return
	}
	year := today().Year()
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 1900 && y < 3000 {
		year = y
	}

	result, err := projections.QueryGetAdvBalance(r.Context(), projections.GetAdvBalanceQuery{
		EmployeeNumber: number,
		Year:           year,
	}, projections.GetAdvBalanceDeps{
		RequestStore:   stores.RequestStore,
		AllowanceHours: settings.ADVHours,
		WorkdayHours:   settings.WorkdayHours,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
