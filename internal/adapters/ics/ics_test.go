package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"

	"verlof/internal/domain/leave"
)

func approvedRequest(t *testing.T) leave.Request {
	t.Helper()
	start, _ := leave.ParseDate("2026-07-06")
	end, _ := leave.ParseDate("2026-07-08")
	return leave.Request{
		ID:           "abc-123",
		EmployeeName: "Ed van de Ven",
		Type:         leave.TypeLeave,
		Duration:     leave.DurationMultiple,
		StartDate:    start,
		EndDate:      end,
		Reason:       "Vakantie, Frankrijk",
		Status:       leave.StatusApproved,
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	r := approvedRequest(t)
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	data, err := Encode(r, now, loc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	text := string(data)
	for _, want := range []string{"PRODID:-//OET Verlof//NL", "METHOD:REQUEST", "CALSCALE:GREGORIAN", "STATUS:CONFIRMED", "SEQUENCE:0", "\r\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]

	if uid, _ := ev.Props.Text(ical.PropUID); uid != "abc-123@oetelaar.nl" {
		t.Errorf("UID = %q", uid)
	}
	if summary, _ := ev.Props.Text(ical.PropSummary); summary != "Verlof: Ed van de Ven" {
		t.Errorf("SUMMARY = %q", summary)
	}
	desc, _ := ev.Props.Text(ical.PropDescription)
	if desc != "Verlofaanvraag voor Ed van de Ven\nType: Verlof\nReden: Vakantie, Frankrijk" {
		t.Errorf("DESCRIPTION = %q", desc)
	}

	start, err := ev.DateTimeStart(loc)
	if err != nil {
		t.Fatalf("DTSTART: %v", err)
	}
	end, err := ev.DateTimeEnd(loc)
	if err != nil {
		t.Fatalf("DTEND: %v", err)
	}
	wantStart := time.Date(2026, 7, 6, 9, 0, 0, 0, loc)
	wantEnd := time.Date(2026, 7, 8, 17, 0, 0, 0, loc)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("window = %v .. %v, want %v .. %v", start, end, wantStart, wantEnd)
	}
}

func TestEncode_ExplicitTimesAndNoReason(t *testing.T) {
	r := approvedRequest(t)
	r.Duration = leave.DurationHours
	r.EndDate = r.StartDate
	r.StartTime, r.EndTime = "13:00", "15:30"
	r.Reason = ""

	data, err := Encode(r, time.Now(), time.UTC)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev := cal.Events()[0]
	start, _ := ev.DateTimeStart(time.UTC)
	end, _ := ev.DateTimeEnd(time.UTC)
	if start.Hour() != 13 || end.Hour() != 15 || end.Minute() != 30 {
		t.Errorf("window = %v .. %v", start, end)
	}
	if desc, _ := ev.Props.Text(ical.PropDescription); strings.Contains(desc, "Reden") {
		t.Errorf("DESCRIPTION should omit empty reason: %q", desc)
	}
}

func TestEncode_RequiresIdentity(t *testing.T) {
	if _, err := Encode(leave.Request{}, time.Now(), time.UTC); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestFilename(t *testing.T) {
	r := approvedRequest(t)
	if got := Filename(r); got != "verlof-Ed-van-de-Ven-2026-07-06.ics" {
		t.Errorf("Filename = %q", got)
	}
	r.EmployeeName = ""
	r.EmployeeNumber = "123004"
	if got := Filename(r); got != "verlof-123004-2026-07-06.ics" {
		t.Errorf("Filename without name = %q", got)
	}
}
