package main

import (
	"fmt"
	"log/slog"
	"time"

	"verlof/internal/adapters/email"
	"verlof/internal/adapters/github"
	"verlof/internal/adapters/http/perf"
	"verlof/internal/adapters/roster"
	"verlof/internal/adapters/storage"
	auditStore "verlof/internal/adapters/storage/audit"
	leaveStore "verlof/internal/adapters/storage/leave"
	outboxStore "verlof/internal/adapters/storage/outbox"
	"verlof/internal/application/notify"
	"verlof/internal/application/orchestrators"
	"verlof/internal/domain/employee"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	db           *storage.TimedDB
	collector    *perf.Collector
	requests     *leaveStore.SQLiteStore
	outbox       *outboxStore.SQLiteStore
	audit        *auditStore.SQLiteStore
	directory    *employee.Directory
	integrations orchestrators.Integrations
	processor    *orchestrators.OutboxProcessor
	location     *time.Location
}

// openApp opens the database and builds the integrations described by c.
// POST: caller closes the returned app
func openApp(c appConfig) (*app, error) {
	loc, err := c.location()
	if err != nil {
		return nil, err
	}

	raw, err := storage.Open(c.DBPath)
	if err != nil {
		return nil, err
	}
	collector := perf.NewCollector(perf.DefaultRingSize)
	db := storage.NewTimedDB(raw, collector, storage.SlowQueryThreshold())

	dir, err := roster.Open(c.RosterPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load roster: %w", err)
	}

	var sender email.Sender
	if c.ResendKey != "" {
		sender = email.NewResendSender(c.ResendKey, c.ResendFrom)
		slog.Info("email_event", "event", "sender_configured", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if c.production() {
			slog.Warn("email_event", "event", "sender_disabled", "reason", "VERLOF_RESEND_KEY not set")
		} else {
			slog.Info("email_event", "event", "sender_configured", "provider", "noop")
		}
	}

	tracker := github.NewClient(c.GitHubToken, c.GitHubRepo, nil)
	if tracker.Enabled() {
		slog.Info("github_event", "event", "tracker_configured", "repo", c.GitHubRepo)
	}

	a := &app{
		db:        db,
		collector: collector,
		requests:  leaveStore.NewSQLiteStore(db),
		outbox:    outboxStore.NewSQLiteStore(db),
		audit:     auditStore.NewSQLiteStore(db),
		directory: dir,
		location:  loc,
	}
	a.integrations = orchestrators.Integrations{
		Email:      sender,
		GitHub:     tracker,
		Outbox:     a.outbox,
		Links:      notify.Links{BaseURL: c.BaseURL},
		AdminEmail: c.AdminEmail,
		ReplyTo:    c.ReplyTo,
		Location:   loc,
	}
	a.processor = orchestrators.NewOutboxProcessor(a.outbox, orchestrators.NewExecutors(sender, tracker, a.requests))
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
