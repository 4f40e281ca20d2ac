package notify

import (
	"strings"
	"testing"
	"time"

	"verlof/internal/domain/leave"
)

func sampleRequest() leave.Request {
	start, _ := leave.ParseDate("2026-07-06")
	end, _ := leave.ParseDate("2026-07-08")
	return leave.Request{
		ID:           "req-1",
		EmployeeName: "Kevin Slot",
		Type:         leave.TypeLeave,
		Duration:     leave.DurationMultiple,
		StartDate:    start,
		EndDate:      end,
		Reason:       "Zomervakantie",
		Status:       leave.StatusPending,
		AdminToken:   "abc",
		CreatedAt:    time.Date(2026, 6, 30, 8, 15, 0, 0, time.UTC),
	}
}

func TestLinks(t *testing.T) {
	l := Links{BaseURL: "https://verlof.example.com/"}
	if got := l.Admin("abc"); got != "https://verlof.example.com/admin?token=abc" {
		t.Errorf("Admin = %q", got)
	}
	if got := l.ICS("a b"); got != "https://verlof.example.com/ics?token=a+b" {
		t.Errorf("ICS = %q", got)
	}
}

func TestDates(t *testing.T) {
	r := sampleRequest()
	if got := DateRange(r); got != "6-7-2026 - 8-7-2026" {
		t.Errorf("DateRange = %q", got)
	}
	r.EndDate = r.StartDate
	if got := DateRange(r); got != "6-7-2026" {
		t.Errorf("single DateRange = %q", got)
	}
	if TimeRange(r) != "" {
		t.Error("TimeRange without times should be empty")
	}
	r.StartTime, r.EndTime = "09:00", "11:00"
	if TimeRange(r) != "09:00 - 11:00" {
		t.Errorf("TimeRange = %q", TimeRange(r))
	}
}

func TestAdminNotification(t *testing.T) {
	msg := AdminNotification(sampleRequest(), "https://x/admin?token=abc")
	if msg.Subject != "Verlofaanvraag van Kevin Slot" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"Verlof/Vakantie", "6-7-2026 - 8-7-2026", "Zomervakantie", "https://x/admin?token=abc"} {
		if !strings.Contains(msg.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, msg.Markdown)
		}
	}

	req, err := msg.Email([]string{"admin@example.com"}, "")
	if err != nil {
		t.Fatalf("Email: %v", err)
	}
	if !strings.Contains(req.HTML, "<strong>Medewerker:</strong>") || !strings.Contains(req.HTML, `href="https://x/admin?token=abc"`) {
		t.Errorf("HTML = %s", req.HTML)
	}
}

func TestRenderHTML_EscapesRawHTML(t *testing.T) {
	html, err := RenderHTML("Reden: <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw HTML leaked: %s", html)
	}
}

func TestApprovalAndDecision(t *testing.T) {
	r := sampleRequest()
	r.Status = leave.StatusApproved
	r.Duration = leave.DurationHours
	r.StartTime, r.EndTime = "13:00", "17:00"

	approval := ApprovalNotification(r)
	if approval.Subject != "Verlofaanvraag goedgekeurd - Kevin Slot - Agenda item" {
		t.Errorf("Subject = %q", approval.Subject)
	}
	if !strings.Contains(approval.Markdown, "13:00 - 17:00") || !strings.Contains(approval.Markdown, "ICS bestand") {
		t.Errorf("approval body = %s", approval.Markdown)
	}

	if DecisionNotice(r).Subject != "Je verlofaanvraag is goedgekeurd" {
		t.Errorf("decision subject = %q", DecisionNotice(r).Subject)
	}
	r.Status = leave.StatusRejected
	if !strings.Contains(DecisionNotice(r).Markdown, "**afgewezen**") {
		t.Errorf("decision body = %s", DecisionNotice(r).Markdown)
	}
}

func TestGitHubTexts(t *testing.T) {
	r := sampleRequest()
	if got := IssueTitle(r); got != "Verlofaanvraag: Kevin Slot - 6-7-2026" {
		t.Errorf("IssueTitle = %q", got)
	}
	body := IssueBody(r, "https://x/admin?token=abc", time.UTC)
	for _, want := range []string{"## Verlofaanvraag", "**Beheerder link:** https://x/admin?token=abc", "30-6-2026 08:15:00", "Request ID: req-1"} {
		if !strings.Contains(body, want) {
			t.Errorf("IssueBody missing %q:\n%s", want, body)
		}
	}
	if labels := DecisionLabels(leave.StatusApproved); labels[0] != LabelLeave || labels[1] != "approved" {
		t.Errorf("DecisionLabels = %v", labels)
	}
	if !strings.HasPrefix(DecisionComment(leave.StatusApproved), "✅ **Goedgekeurd**") {
		t.Error("approve comment mismatch")
	}
	if !strings.HasPrefix(DecisionComment(leave.StatusRejected), "❌ **Afgewezen**") {
		t.Error("reject comment mismatch")
	}
}

func TestLongDates(t *testing.T) {
	d := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	if got := LongDate(d); got != "2 maart 2026" {
		t.Errorf("LongDate = %q", got)
	}
	if got := LongDateTime(d); got != "2 maart 2026 09:05" {
		t.Errorf("LongDateTime = %q", got)
	}
	if LongDate(time.Time{}) != "" || MonthName(0) != "" {
		t.Error("zero values should render empty")
	}
}
