package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"verlof/internal/application/notify"
	domainLeave "verlof/internal/domain/leave"
)

// WeekDays are the Monday-first column headings.
var WeekDays = []string{"Ma", "Di", "Wo", "Do", "Vr", "Za", "Zo"}

const monthLayout = "2006-01"

// GetCalendarMonthQuery selects the month to show. Today marks the current day.
type GetCalendarMonthQuery struct {
	Year  int
	Month time.Month
	Today time.Time // civil date
}

// CalendarEntry is one request shown in a day cell.
type CalendarEntry struct {
	ID        string
	Name      string
	FirstName string
	Status    string
	DotColor  string
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date    time.Time
	Day     int
	IsToday bool
	Entries []CalendarEntry
	More    int // entries beyond the first
}

// GetCalendarMonthResult carries the query result.
type GetCalendarMonthResult struct {
	Title    string // "maart 2026"
	Month    string // "2026-03"
	Prev     string
	Next     string
	WeekDays []string
	Leading  int // blank cells before the first day
	Days     []CalendarDay
}

// GetCalendarMonthDeps holds dependencies for QueryGetCalendarMonth.
type GetCalendarMonthDeps struct {
	RequestStore RequestStore
}

// QueryGetCalendarMonth builds a Monday-first month grid with the requests on each day.
// PRE: Month in 1..12
// POST: len(Days) equals the days in the month; entries follow start date order
func QueryGetCalendarMonth(ctx context.Context, query GetCalendarMonthQuery, deps GetCalendarMonthDeps) (GetCalendarMonthResult, error) {
	first := time.Date(query.Year, query.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	requests, err := deps.RequestStore.ListOverlapping(ctx, first, last)
	if err != nil {
		return GetCalendarMonthResult{}, err
	}

	result := GetCalendarMonthResult{
		Title:    notify.MonthName(first.Month()) + " " + fmt.Sprint(first.Year()),
		Month:    first.Format(monthLayout),
		Prev:     first.AddDate(0, -1, 0).Format(monthLayout),
		Next:     first.AddDate(0, 1, 0).Format(monthLayout),
		WeekDays: WeekDays,
		Leading:  (int(first.Weekday()) + 6) % 7,
	}
	today := civilDate(query.Today)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		day := CalendarDay{Date: d, Day: d.Day(), IsToday: d.Equal(today)}
		for _, r := range requests {
			if !r.CoversDate(d) {
				continue
			}
			day.Entries = append(day.Entries, CalendarEntry{
				ID:        r.ID,
				Name:      r.EmployeeName,
				FirstName: firstName(r.EmployeeName),
				Status:    r.Status,
				DotColor:  domainLeave.StatusDotColor(r.Status),
			})
		}
		if len(day.Entries) > 1 {
			day.More = len(day.Entries) - 1
		}
		result.Days = append(result.Days, day)
	}
	return result, nil
}

// ParseMonth parses "YYYY-MM", falling back to the month of fallback.
func ParseMonth(s string, fallback time.Time) (int, time.Month) {
	if t, err := time.Parse(monthLayout, strings.TrimSpace(s)); err == nil {
		return t.Year(), t.Month()
	}
	return fallback.Year(), fallback.Month()
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}

func civilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
