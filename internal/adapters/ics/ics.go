// Package ics renders approved leave requests as iCalendar invitations.
package ics

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"verlof/internal/domain/leave"
)

// Calendar identity written into every file.
const (
	ProductID   = "-//OET Verlof//NL"
	UIDDomain   = "oetelaar.nl"
	ContentType = "text/calendar; charset=utf-8; method=REQUEST"
)

// Encode renders r as a VCALENDAR holding a single confirmed VEVENT.
// Start and end instants come from r.Window(loc), so requests without times run 09:00 to 17:00.
// PRE: r has an ID, StartDate and EndDate
// POST: returns CRLF-delimited iCalendar bytes
func Encode(r leave.Request, now time.Time, loc *time.Location) ([]byte, error) {
	if r.ID == "" || r.StartDate.IsZero() {
		return nil, fmt.Errorf("encode ics: request id and start date are required")
	}
	start, end := r.Window(loc)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "REQUEST")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, r.ID+"@"+UIDDomain)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)
	event.Props.SetText(ical.PropSummary, Summary(r))
	event.Props.SetText(ical.PropDescription, Description(r))
	event.Props.SetText(ical.PropStatus, "CONFIRMED")
	event.Props.SetText(ical.PropSequence, "0")
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

// Summary is the event title.
func Summary(r leave.Request) string {
	return "Verlof: " + r.EmployeeName
}

// Description is the event body: who, what type and, when given, why.
func Description(r leave.Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Verlofaanvraag voor %s\nType: %s", r.EmployeeName, leave.TypeLabel(r.Type))
	if r.Reason != "" {
		fmt.Fprintf(&sb, "\nReden: %s", r.Reason)
	}
	return sb.String()
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename is the download and attachment name: verlof-<name-with-dashes>-<start>.ics.
func Filename(r leave.Request) string {
	name := whitespace.ReplaceAllString(strings.TrimSpace(r.EmployeeName), "-")
	if name == "" {
		name = r.EmployeeNumber
	}
	return fmt.Sprintf("verlof-%s-%s.ics", name, leave.FormatDate(r.StartDate))
}
