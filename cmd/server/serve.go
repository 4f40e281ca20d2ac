package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	web "verlof/internal/adapters/http"
	"verlof/internal/adapters/roster"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	csrfKey, err := web.LoadCSRFKey(cfg.CSRFKey, cfg.production())
	if err != nil {
		return err
	}
	if cfg.AdminPasswordHash == "" {
		slog.Warn("config_event", "event", "overview_login_disabled", "reason", "VERLOF_ADMIN_PASSWORD_HASH not set")
	}
	if cfg.AdminEmail == "" {
		slog.Warn("config_event", "event", "admin_email_missing", "reason", "notifications will be queued")
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := web.NewMux("", &web.Stores{
		RequestStore: a.requests,
		OutboxStore:  a.outbox,
		AuditStore:   a.audit,
	}, web.Config{
		Directory:         a.directory,
		Integrations:      a.integrations,
		Processor:         a.processor,
		AdminPasswordHash: cfg.AdminPasswordHash,
		RosterPath:        cfg.RosterPath,
		Location:          a.location,
		ADVHours:          cfg.ADVHours,
		CSRFKey:           csrfKey,
		Production:        cfg.production(),
		TrustedOrigins:    trustedOrigins(cfg.BaseURL),
	}, a.collector)
	defer web.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	slog.Info("server_event", "event", "starting",
		"version", version,
		"addr", cfg.Addr,
		"env", cfg.Env,
		"timezone", a.location.String(),
		"employees", a.directory.Len(),
		"sqlite", storageVersion(ctx, a.db))

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("server_event", "event", "shutting_down")
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		return a.processor.Run(egCtx, cfg.OutboxInterval)
	})

	if cfg.RosterPath != "" {
		w, err := roster.NewWatcher(cfg.RosterPath, a.directory)
		if err != nil {
			slog.Warn("roster_event", "event", "watch_unavailable", "path", cfg.RosterPath, "error", err.Error())
		} else {
			eg.Go(func() error {
				return w.Run(egCtx)
			})
		}
	}

	err = eg.Wait()
	slog.Info("server_event", "event", "stopped")
	return err
}

// trustedOrigins lets CSRF accept same-site posts when running behind a proxy.
func trustedOrigins(baseURL string) []string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(baseURL) > len(prefix) && baseURL[:len(prefix)] == prefix {
			return []string{baseURL[len(prefix):]}
		}
	}
	return nil
}
