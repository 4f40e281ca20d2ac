package projections

import (
	"fmt"
	"time"

	"verlof/internal/application/notify"
	domainLeave "verlof/internal/domain/leave"
)

// RequestView is a leave request with everything a page needs to render it.
type RequestView struct {
	domainLeave.Request
	TypeLabel      string
	AdminTypeLabel string
	StatusLabel    string
	StatusColor    string
	Period         string // "2 maart 2026 - 4 maart 2026"
	TimeRange      string
	Days           int
	DaysText       string
	Hours          float64
	CreatedText    string
	DecidedText    string
	Pending        bool
}

func newRequestView(r domainLeave.Request, loc *time.Location, workdayHours float64) RequestView {
	if loc == nil {
		loc = time.UTC
	}
	if workdayHours <= 0 {
		workdayHours = domainLeave.DefaultWorkdayHours
	}
	period := notify.LongDate(r.StartDate)
	if r.IsMultiDay() {
		period += " - " + notify.LongDate(r.EndDate)
	}
	days := r.Days()
	v := RequestView{
		Request:        r,
		TypeLabel:      domainLeave.TypeLabel(r.Type),
		AdminTypeLabel: domainLeave.AdminTypeLabel(r.Type),
		StatusLabel:    domainLeave.StatusLabel(r.Status),
		StatusColor:    domainLeave.StatusColor(r.Status),
		Period:         period,
		TimeRange:      notify.TimeRange(r),
		Days:           days,
		DaysText:       pluralize(days, "dag", "dagen"),
		Hours:          r.Hours(workdayHours),
		CreatedText:    notify.LongDateTime(r.CreatedAt.In(loc)),
		Pending:        r.IsPending(),
	}
	if !r.DecidedAt.IsZero() {
		v.DecidedText = notify.LongDateTime(r.DecidedAt.In(loc))
	}
	return v
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
