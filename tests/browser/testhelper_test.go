package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/crypto/bcrypt"

	"verlof/internal/adapters/email"
	web "verlof/internal/adapters/http"
	"verlof/internal/adapters/http/perf"
	"verlof/internal/adapters/storage"
	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	outboxStore "verlof/internal/adapters/storage/outbox"
	"verlof/internal/application/notify"
	"verlof/internal/application/orchestrators"
	"verlof/internal/domain/employee"
)

const adminPassword = "TestPass123!"

// outbox records what the app emailed.
type outbox struct {
	mu   sync.Mutex
	sent []email.SendRequest
}

func (o *outbox) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("test-%d", len(o.sent)), SentAt: time.Now()}, nil
}

func (o *outbox) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	out := make([]email.SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, _ := o.Send(ctx, req)
		out = append(out, res)
	}
	return out, nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL  string
	DB       *sql.DB
	Server   *http.Server
	PW       *playwright.Playwright
	Browser  playwright.Browser
	Requests *leaveStore.SQLiteStore
	Mail     *outbox
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
// Skips when the Playwright driver or browsers are not installed.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}

	requests := leaveStore.NewSQLiteStore(db)
	queue := outboxStore.NewSQLiteStore(db)
	stores := &web.Stores{
		RequestStore: requests,
		OutboxStore:  queue,
		AuditStore:   auditStore.NewSQLiteStore(db),
	}

	dir, err := employee.NewDirectory([]employee.Employee{
		{Number: "123042", Name: "Maickel Lelieveld", Email: "maickel@example.com"},
		{Number: "123002", Name: "Remon Gilsing"},
	})
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	mail := &outbox{}
	integrations := orchestrators.Integrations{
		Email:      mail,
		Outbox:     queue,
		Links:      notify.Links{BaseURL: baseURL},
		AdminEmail: "admin@example.com",
	}
	handler := web.NewMux("", stores, web.Config{
		Directory:         dir,
		Integrations:      integrations,
		Processor:         orchestrators.NewOutboxProcessor(queue, orchestrators.NewExecutors(mail, nil, requests)),
		AdminPasswordHash: string(hash),
		TrustedOrigins:    []string{fmt.Sprintf("127.0.0.1:%d", port)},
	}, perf.NewCollector(100))

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		srv.Close()
		db.Close()
		t.Skipf("playwright not available: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		srv.Close()
		db.Close()
		t.Skipf("chromium not available: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		web.Close()
		db.Close()
	})

	return &testApp{
		BaseURL:  baseURL,
		DB:       db,
		Server:   srv,
		PW:       pw,
		Browser:  browser,
		Requests: requests,
		Mail:     mail,
	}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in to the overview and waits for the pending list.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(adminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/pending", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to pending: %v", err)
	}
}
