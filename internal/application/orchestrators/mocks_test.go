package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"verlof/internal/adapters/email"
	"verlof/internal/adapters/github"
	auditStore "verlof/internal/adapters/storage/audit"
	"verlof/internal/application/notify"
	"verlof/internal/domain/audit"
	"verlof/internal/domain/employee"
	"verlof/internal/domain/leave"
	domainOutbox "verlof/internal/domain/outbox"
)

var fixedTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedToken() (string, error) { return "tok-123", nil }

// --- leave store ---

type mockRequestStore struct {
	mu       sync.Mutex
	requests map[string]leave.Request
	saveErr  error
}

func newMockRequestStore(rs ...leave.Request) *mockRequestStore {
	m := &mockRequestStore{requests: map[string]leave.Request{}}
	for _, r := range rs {
		m.requests[r.ID] = r
	}
	return m
}

func (m *mockRequestStore) Save(_ context.Context, r leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.requests[r.ID] = r
	return nil
}

func (m *mockRequestStore) GetByID(_ context.Context, id string) (leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrNotFound
	}
	return r, nil
}

func (m *mockRequestStore) GetByToken(_ context.Context, token string) (leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.AdminToken == token {
			return r, nil
		}
	}
	return leave.Request{}, leave.ErrNotFound
}

func (m *mockRequestStore) List(_ context.Context, status string) ([]leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []leave.Request
	for _, r := range m.requests {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRequestStore) ListPending(ctx context.Context) ([]leave.Request, error) {
	out, err := m.List(ctx, leave.StatusPending)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (m *mockRequestStore) ListOverlapping(_ context.Context, from, to time.Time) ([]leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []leave.Request
	for _, r := range m.requests {
		if !r.StartDate.After(to) && !r.EndDate.Before(from) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *mockRequestStore) SetGitHubIssue(_ context.Context, id string, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return leave.ErrNotFound
	}
	r.GitHubIssueNumber = number
	m.requests[id] = r
	return nil
}

func (m *mockRequestStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return leave.ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *mockRequestStore) get(id string) leave.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id]
}

// --- outbox store ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]domainOutbox.Entry
	order   []string
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: map[string]domainOutbox.Entry{}}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domainOutbox.Entry{}, domainOutbox.ErrNotFound
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e domainOutbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainOutbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.Status == domainOutbox.StatusPending || e.Status == domainOutbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockOutboxStore) ListRecent(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainOutbox.Entry
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[m.order[i]])
	}
	return out, nil
}

func (m *mockOutboxStore) ListByRequest(_ context.Context, requestID string) ([]domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainOutbox.Entry
	for _, id := range m.order {
		if e := m.entries[id]; e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutboxStore) CountByStatus(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, e := range m.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (m *mockOutboxStore) all() []domainOutbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domainOutbox.Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}

// --- audit store ---

type mockAuditStore struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *mockAuditStore) Save(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditStore) List(_ context.Context, _ auditStore.Filter, _ int) ([]audit.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Event(nil), m.events...), nil
}

func (m *mockAuditStore) actions() []audit.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Action
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

// --- email sender ---

type mockSender struct {
	mu      sync.Mutex
	sent    []email.SendRequest
	batches int
	err     error
	limit   int // when > 0, Send fails with errProvider once this many messages went out
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	if m.limit > 0 && len(m.sent) >= m.limit {
		return email.SendResult{}, errProvider
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("msg-%d", len(m.sent)), SentAt: fixedTime}, nil
}

func (m *mockSender) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	m.mu.Lock()
	m.batches++
	m.mu.Unlock()
	out := make([]email.SendResult, 0, len(reqs))
	for _, r := range reqs {
		res, err := m.Send(ctx, r)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// --- issue tracker ---

type mockTracker struct {
	mu        sync.Mutex
	enabled   bool
	err       error
	nextIssue int
	created   []string
	closed    []int
	updates   []string
	comments  []string
}

func (m *mockTracker) Enabled() bool { return m.enabled }

func (m *mockTracker) CreateIssue(_ context.Context, title, _ string, labels []string) (github.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return github.Issue{}, m.err
	}
	m.nextIssue++
	m.created = append(m.created, fmt.Sprintf("%s %v", title, labels))
	return github.Issue{Number: m.nextIssue, State: "open"}, nil
}

func (m *mockTracker) UpdateIssue(_ context.Context, number int, state string, labels []string) (github.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return github.Issue{}, m.err
	}
	m.updates = append(m.updates, fmt.Sprintf("#%d %s %v", number, state, labels))
	return github.Issue{Number: number, State: state}, nil
}

func (m *mockTracker) CloseIssue(ctx context.Context, number int, labels []string) error {
	m.mu.Lock()
	m.closed = append(m.closed, number)
	m.mu.Unlock()
	_, err := m.UpdateIssue(ctx, number, "closed", labels)
	return err
}

func (m *mockTracker) AddComment(_ context.Context, number int, body string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.comments = append(m.comments, fmt.Sprintf("#%d %s", number, body))
	return int64(len(m.comments)), nil
}

var errProvider = errors.New("provider unavailable")

func testDirectory() *employee.Directory {
	dir, err := employee.NewDirectory([]employee.Employee{
		{Number: "123002", Name: "Kevin Slot", Email: "kevin@example.com"},
		{Number: "123010", Name: "Jasper van Dijk"},
	})
	if err != nil {
		panic(err)
	}
	return dir
}

func testIntegrations(sender email.Sender, tracker IssueTracker, ob *mockOutboxStore) Integrations {
	in := Integrations{
		Email:      sender,
		Links:      notify.Links{BaseURL: "https://verlof.test"},
		AdminEmail: "admin@example.com",
		Location:   time.UTC,
	}
	if tracker != nil {
		in.GitHub = tracker
	}
	if ob != nil {
		in.Outbox = ob
	}
	return in
}

func mustDate(s string) time.Time {
	t, err := leave.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
