package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events.
type Category string

const (
	CategoryLeave    Category = "leave"
	CategorySecurity Category = "security"
	CategorySystem   Category = "system"
)

// Action is what happened.
type Action string

const (
	ActionCreate  Action = "create"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionReset   Action = "reset"
	ActionDelete  Action = "delete"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionRetry   Action = "retry"
	ActionAbandon Action = "abandon"
)

// Severity of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Well-known actors.
const (
	ActorEmployee = "employee"
	ActorAdmin    = "admin"
	ActorSystem   = "system"
)

// Event is a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	Actor        string    `json:"actor"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
}

// NewEvent creates an info-level event stamped now.
// PRE: actor and action are non-empty
func NewEvent(actor string, category Category, action Action) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
		Actor:     actor,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}
