package leave

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Leave types. The values are persisted and must not change.
const (
	TypeADV         = "adv"
	TypeLeave       = "verlof"
	TypeSick        = "ziekte"
	TypePersonal    = "persoonlijk"
	DefaultType     = TypeADV
	DefaultDuration = DurationDay
)

// Duration kinds selected on the request form.
const (
	DurationHours    = "uur"
	DurationDay      = "dag"
	DurationMultiple = "meerdere"
)

// Request lifecycle statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Calendar defaults used when a request has no explicit times.
const (
	DefaultStartTime    = "09:00"
	DefaultEndTime      = "17:00"
	DefaultWorkdayHours = 8.0
	SickLeaveReason     = "Ziek gemeld"
	MaxReasonLength     = 1000
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Domain errors
var (
	ErrNotFound       = errors.New("leave request not found")
	ErrNotPending     = errors.New("leave request is not pending")
	ErrAlreadyPending = errors.New("leave request is already pending")
	ErrInvalidStatus  = errors.New("invalid leave request status")
)

// Request is a single leave or sick-leave request.
// INVARIANT: StartDate and EndDate are civil dates at midnight UTC; EndDate >= StartDate.
// INVARIANT: DecidedAt is set iff Status is approved or rejected.
type Request struct {
	ID                string
	EmployeeNumber    string
	EmployeeName      string
	Type              string
	Duration          string
	StartDate         time.Time
	EndDate           time.Time
	StartTime         string // "HH:MM", optional
	EndTime           string // "HH:MM", optional
	Reason            string
	Status            string
	AdminToken        string
	GitHubIssueNumber int
	CreatedAt         time.Time
	DecidedAt         time.Time
}

// FieldErrors maps form field names to a user-facing message.
type FieldErrors map[string]string

// Error implements error.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid leave request: " + strings.Join(parts, "; ")
}

// ParseDate parses a civil date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// FormatDate renders a civil date in YYYY-MM-DD form. The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Validate checks the request fields a submitter controls.
// PRE: none
// POST: returns nil or a FieldErrors describing every invalid field
func (r *Request) Validate() error {
	errs := FieldErrors{}

	if strings.TrimSpace(r.EmployeeNumber) == "" {
		errs["employeeNumber"] = "Personeelsnummer is verplicht"
	}
	if !IsValidType(r.Type) {
		errs["type"] = "Onbekend verloftype"
	}
	if !IsValidDuration(r.Duration) {
		errs["duration"] = "Onbekende duur"
	}
	if r.StartDate.IsZero() {
		errs["startDate"] = "Datum is verplicht"
	}
	if r.Duration == DurationMultiple && r.EndDate.IsZero() {
		errs["endDate"] = "Einddatum is verplicht"
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		errs["endDate"] = "Einddatum moet na startdatum zijn"
	}
	if r.Duration == DurationHours {
		start, startErr := time.Parse(timeLayout, r.StartTime)
		end, endErr := time.Parse(timeLayout, r.EndTime)
		switch {
		case startErr != nil:
			errs["startTime"] = "Begintijd is verplicht"
		case endErr != nil:
			errs["endTime"] = "Eindtijd is verplicht"
		case !end.After(start):
			errs["endTime"] = "Eindtijd moet na begintijd zijn"
		}
	}
	if len(r.Reason) > MaxReasonLength {
		errs["reason"] = "Opmerking is te lang"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize collapses single-day requests onto their start date and drops
// times that only apply to hour-based requests.
// POST: EndDate == StartDate unless Duration is multiple days
func (r *Request) Normalize() {
	r.EmployeeNumber = strings.TrimSpace(r.EmployeeNumber)
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Type == "" {
		r.Type = DefaultType
	}
	if r.Duration == "" {
		r.Duration = DefaultDuration
	}
	if r.Duration != DurationMultiple {
		r.EndDate = r.StartDate
	}
	if r.Duration != DurationHours {
		r.StartTime = ""
		r.EndTime = ""
	}
}

// IsPending reports whether the request still awaits a decision.
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// Approve marks a pending request approved.
// PRE: Status is pending
// POST: Status approved, DecidedAt = now
func (r *Request) Approve(now time.Time) error {
	return r.decide(StatusApproved, now)
}

// Reject marks a pending request rejected.
// PRE: Status is pending
// POST: Status rejected, DecidedAt = now
func (r *Request) Reject(now time.Time) error {
	return r.decide(StatusRejected, now)
}

func (r *Request) decide(status string, now time.Time) error {
	if r.Status != StatusPending {
		return ErrNotPending
	}
	r.Status = status
	r.DecidedAt = now
	return nil
}

// Reset returns a decided request to pending.
// PRE: Status is approved or rejected
// POST: Status pending, DecidedAt cleared
func (r *Request) Reset() error {
	if r.Status == StatusPending {
		return ErrAlreadyPending
	}
	r.Status = StatusPending
	r.DecidedAt = time.Time{}
	return nil
}

// SetStatus applies an overview status change by name.
func (r *Request) SetStatus(status string, now time.Time) error {
	switch status {
	case StatusApproved:
		return r.Approve(now)
	case StatusRejected:
		return r.Reject(now)
	case StatusPending:
		return r.Reset()
	default:
		return ErrInvalidStatus
	}
}

// Days returns the inclusive number of calendar days covered.
func (r *Request) Days() int {
	if r.StartDate.IsZero() {
		return 0
	}
	end := r.EndDate
	if end.IsZero() || end.Before(r.StartDate) {
		end = r.StartDate
	}
	return int(end.Sub(r.StartDate).Hours()/24) + 1
}

// Hours returns the leave hours this request consumes.
// Hour-based requests count the elapsed time between StartTime and EndTime;
// day-based requests count workdayHours per weekday in the range.
func (r *Request) Hours(workdayHours float64) float64 {
	if r.Duration == DurationHours {
		start, err1 := time.Parse(timeLayout, r.StartTime)
		end, err2 := time.Parse(timeLayout, r.EndTime)
		if err1 != nil || err2 != nil || !end.After(start) {
			return 0
		}
		return end.Sub(start).Hours()
	}
	return float64(r.Weekdays()) * workdayHours
}

// Weekdays counts Monday–Friday dates in the request range.
func (r *Request) Weekdays() int {
	n := 0
	for i := 0; i < r.Days(); i++ {
		d := r.StartDate.AddDate(0, 0, i)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// CoversDate reports whether the civil date d falls within the request.
func (r *Request) CoversDate(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(r.StartDate) && !day.After(r.EndDate)
}

// IsMultiDay reports whether the request spans more than one date.
func (r *Request) IsMultiDay() bool {
	return !r.EndDate.Equal(r.StartDate)
}

// HasTimes reports whether both start and end times are set.
func (r *Request) HasTimes() bool {
	return r.StartTime != "" && r.EndTime != ""
}

// Window returns the calendar start and end instants in loc.
// Missing times default to 09:00 and 17:00.
func (r *Request) Window(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := atClock(r.StartDate, r.StartTime, DefaultStartTime, loc)
	end := atClock(r.EndDate, r.EndTime, DefaultEndTime, loc)
	return start, end
}

func atClock(day time.Time, clock, fallback string, loc *time.Location) time.Time {
	c, err := time.Parse(timeLayout, clock)
	if err != nil {
		c, _ = time.Parse(timeLayout, fallback)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

// IsValidType reports whether t is a known leave type.
func IsValidType(t string) bool {
	_, ok := typeLabels[t]
	return ok
}

// IsValidDuration reports whether d is a known duration kind.
func IsValidDuration(d string) bool {
	return d == DurationHours || d == DurationDay || d == DurationMultiple
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}
