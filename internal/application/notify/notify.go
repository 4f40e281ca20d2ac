// Package notify composes the Dutch notification texts for email and GitHub.
// Bodies are authored as markdown; email HTML is rendered from the same source.
package notify

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"verlof/internal/adapters/email"
	"verlof/internal/domain/leave"
)

// GitHub labels applied to leave issues.
const (
	LabelLeave   = "verlof-aanvraag"
	LabelPending = "pending"
)

// Raw HTML in markdown is escaped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Message is a rendered notification.
type Message struct {
	Subject  string
	Markdown string
}

// HTML renders the markdown body.
func (m Message) HTML() (string, error) {
	return RenderHTML(m.Markdown)
}

// Email builds a send request for m. Attachments are added by the caller.
func (m Message) Email(to []string, replyTo string) (email.SendRequest, error) {
	html, err := m.HTML()
	if err != nil {
		return email.SendRequest{}, err
	}
	return email.SendRequest{
		To:      to,
		Subject: m.Subject,
		HTML:    html,
		Text:    m.Markdown,
		ReplyTo: replyTo,
	}, nil
}

// RenderHTML converts markdown to an HTML fragment.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Links builds absolute URLs into the service.
type Links struct {
	BaseURL string
}

// Admin is the approval link carried in notifications.
func (l Links) Admin(token string) string {
	return l.withToken("/admin", token)
}

// ICS is the calendar download link for an approved request.
func (l Links) ICS(token string) string {
	return l.withToken("/ics", token)
}

func (l Links) withToken(path, token string) string {
	return strings.TrimRight(l.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// DutchDate formats a civil date as d-m-yyyy.
func DutchDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year())
}

var monthNames = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

// MonthName returns the lowercase Dutch month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// LongDate formats a date as "2 maart 2026".
func LongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), MonthName(t.Month()), t.Year())
}

// LongDateTime formats an instant as "2 maart 2026 09:30".
func LongDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return LongDate(t) + " " + t.Format("15:04")
}

// DateRange renders the request dates, collapsing a single day.
func DateRange(r leave.Request) string {
	if !r.IsMultiDay() {
		return DutchDate(r.StartDate)
	}
	return DutchDate(r.StartDate) + " - " + DutchDate(r.EndDate)
}

// TimeRange renders "HH:MM - HH:MM" or "" when the request has no times.
func TimeRange(r leave.Request) string {
	if !r.HasTimes() {
		return ""
	}
	return r.StartTime + " - " + r.EndTime
}

func details(sb *strings.Builder, r leave.Request, withTime bool) {
	fmt.Fprintf(sb, "**Medewerker:** %s\n", r.EmployeeName)
	fmt.Fprintf(sb, "**Type:** %s\n", leave.AdminTypeLabel(r.Type))
	fmt.Fprintf(sb, "**Datum:** %s\n", DateRange(r))
	if tr := TimeRange(r); withTime && tr != "" {
		fmt.Fprintf(sb, "**Tijd:** %s\n", tr)
	}
	if r.Reason != "" {
		fmt.Fprintf(sb, "**Reden:** %s\n", r.Reason)
	}
}

// AdminNotification tells the administrator a new request awaits a decision.
func AdminNotification(r leave.Request, adminLink string) Message {
	var sb strings.Builder
	sb.WriteString("Er is een nieuwe verlofaanvraag ingediend:\n\n")
	details(&sb, r, true)
	sb.WriteString("\nKlik op de volgende link om de aanvraag te beoordelen:\n")
	fmt.Fprintf(&sb, "[%s](%s)\n", adminLink, adminLink)
	return Message{
		Subject:  "Verlofaanvraag van " + r.EmployeeName,
		Markdown: sb.String(),
	}
}

// ApprovalNotification carries the calendar item for an approved request to the administrator.
func ApprovalNotification(r leave.Request) Message {
	var sb strings.Builder
	sb.WriteString("De verlofaanvraag is goedgekeurd:\n\n")
	details(&sb, r, true)
	sb.WriteString("\nHet agenda item (ICS bestand) is bijgevoegd. Voeg deze toe aan je agenda.\n")
	return Message{
		Subject:  fmt.Sprintf("Verlofaanvraag goedgekeurd - %s - Agenda item", r.EmployeeName),
		Markdown: sb.String(),
	}
}

// DecisionNotice informs the employee of the outcome.
func DecisionNotice(r leave.Request) Message {
	verb := leave.DecisionVerb(r.Status)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Beste %s,\n\nJe verlofaanvraag is **%s**.\n\n", r.EmployeeName, verb)
	details(&sb, r, true)
	return Message{
		Subject:  fmt.Sprintf("Je verlofaanvraag is %s", verb),
		Markdown: sb.String(),
	}
}

// IssueTitle is the GitHub issue title for a request.
func IssueTitle(r leave.Request) string {
	return fmt.Sprintf("Verlofaanvraag: %s - %s", r.EmployeeName, DutchDate(r.StartDate))
}

// IssueBody is the GitHub issue body for a request.
func IssueBody(r leave.Request, adminLink string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var sb strings.Builder
	sb.WriteString("## Verlofaanvraag\n\n")
	details(&sb, r, true)
	fmt.Fprintf(&sb, "\n**Beheerder link:** %s\n\n", adminLink)
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "*Aangemaakt op: %s*\n", r.CreatedAt.In(loc).Format("2-1-2006 15:04:05"))
	fmt.Fprintf(&sb, "*Request ID: %s*\n", r.ID)
	return sb.String()
}

// IssueLabels are the labels for a new issue.
func IssueLabels() []string {
	return []string{LabelLeave, LabelPending}
}

// DecisionLabels are the labels set when an issue is closed for a decision.
func DecisionLabels(status string) []string {
	return []string{LabelLeave, status}
}

// DecisionComment is the comment posted on the issue after a decision.
func DecisionComment(status string) string {
	if status == leave.StatusApproved {
		return "✅ **Goedgekeurd**\n\nDe verlofaanvraag is goedgekeurd."
	}
	return "❌ **Afgewezen**\n\nDe verlofaanvraag is afgewezen."
}
