package leave

import (
	"errors"
	"time"
)

// NewSickRequest builds a sick-leave request from the sick-leave form fields.
// PRE: today is the current civil date in the business time zone
// POST: Type ziekte, Reason defaulted, both dates required; a range keeps its end date
func NewSickRequest(employeeNumber string, start, end time.Time, reason string, today time.Time) (Request, error) {
	r := Request{
		EmployeeNumber: employeeNumber,
		Type:           TypeSick,
		Duration:       DurationDay,
		StartDate:      start,
		EndDate:        end,
		Reason:         reason,
	}

	errs := FieldErrors{}
	if end.IsZero() {
		errs["endDate"] = "Einddatum is verplicht"
	}
	if start.IsZero() {
		errs["startDate"] = "Startdatum is verplicht"
	} else if start.Before(civil(today)) {
		errs["startDate"] = "Startdatum mag niet in het verleden liggen"
	}
	if err := r.Validate(); err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			for k, v := range fe {
				if _, seen := errs[k]; !seen {
					errs[k] = v
				}
			}
		}
	}
	if len(errs) > 0 {
		return Request{}, errs
	}

	if r.Reason == "" {
		r.Reason = SickLeaveReason
	}
	if r.EndDate.After(r.StartDate) {
		r.Duration = DurationMultiple
	}
	return r, nil
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in loc as midnight UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return civil(now)
}
