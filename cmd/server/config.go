package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// configKey describes one VERLOF_ environment variable.
type configKey struct {
	Name     string
	Required bool
}

var configKeys = []configKey{
	{Name: "VERLOF_ADDR"},
	{Name: "VERLOF_DB_PATH"},
	{Name: "VERLOF_ENV"},
	{Name: "VERLOF_BASE_URL", Required: true},
	{Name: "VERLOF_CSRF_KEY"},
	{Name: "VERLOF_ADMIN_EMAIL", Required: true},
	{Name: "VERLOF_ADMIN_PASSWORD_HASH"},
	{Name: "VERLOF_RESEND_KEY", Required: true},
	{Name: "VERLOF_RESEND_FROM", Required: true},
	{Name: "VERLOF_REPLY_TO"},
	{Name: "VERLOF_GITHUB_TOKEN"},
	{Name: "VERLOF_GITHUB_REPO"},
	{Name: "VERLOF_ROSTER_PATH"},
	{Name: "VERLOF_TIMEZONE"},
	{Name: "VERLOF_ADV_HOURS"},
	{Name: "VERLOF_OUTBOX_INTERVAL"},
	{Name: "VERLOF_SLOW_QUERY_MS"},
	{Name: "VERLOF_SLOW_REQUEST_MS"},
	{Name: "VERLOF_LOG_LEVEL"},
	{Name: "VERLOF_LOG_FORMAT"},
}

// appConfig is the resolved process configuration.
type appConfig struct {
	Addr              string
	DBPath            string
	Env               string
	BaseURL           string
	CSRFKey           string
	AdminEmail        string
	AdminPasswordHash string
	ResendKey         string
	ResendFrom        string
	ReplyTo           string
	GitHubToken       string
	GitHubRepo        string
	RosterPath        string
	Timezone          string
	ADVHours          float64
	OutboxInterval    time.Duration
	LogLevel          string
	LogFormat         string
}

func (c appConfig) production() bool {
	return c.Env == "production"
}

// location resolves Timezone; the embedded tzdata makes this work on bare hosts.
func (c appConfig) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// loadConfig reads the environment after merging .env.
// POST: every field has a usable value
func loadConfig() (appConfig, error) {
	if err := loadDotEnv(".env"); err != nil {
		return appConfig{}, fmt.Errorf("load .env: %w", err)
	}

	c := appConfig{
		Addr:              envOrDefault("VERLOF_ADDR", ":8080"),
		DBPath:            envOrDefault("VERLOF_DB_PATH", "verlof.db"),
		Env:               envOrDefault("VERLOF_ENV", "development"),
		BaseURL:           strings.TrimRight(envOrDefault("VERLOF_BASE_URL", "http://localhost:8080"), "/"),
		CSRFKey:           os.Getenv("VERLOF_CSRF_KEY"),
		AdminEmail:        os.Getenv("VERLOF_ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("VERLOF_ADMIN_PASSWORD_HASH"),
		ResendKey:         os.Getenv("VERLOF_RESEND_KEY"),
		ResendFrom:        envOrDefault("VERLOF_RESEND_FROM", "Verlof <verlof@example.com>"),
		ReplyTo:           os.Getenv("VERLOF_REPLY_TO"),
		GitHubToken:       os.Getenv("VERLOF_GITHUB_TOKEN"),
		GitHubRepo:        os.Getenv("VERLOF_GITHUB_REPO"),
		RosterPath:        os.Getenv("VERLOF_ROSTER_PATH"),
		Timezone:          envOrDefault("VERLOF_TIMEZONE", "Europe/Amsterdam"),
		LogLevel:          envOrDefault("VERLOF_LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("VERLOF_LOG_FORMAT", "text"),
	}

	if v := os.Getenv("VERLOF_ADV_HOURS"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil || h <= 0 {
			return appConfig{}, fmt.Errorf("VERLOF_ADV_HOURS: invalid value %q", v)
		}
		c.ADVHours = h
	}

	c.OutboxInterval = time.Minute
	if v := os.Getenv("VERLOF_OUTBOX_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return appConfig{}, fmt.Errorf("VERLOF_OUTBOX_INTERVAL: invalid duration %q", v)
		}
		c.OutboxInterval = d
	}
	return c, nil
}

// loadDotEnv sets variables from path that are not already in the environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the process logger from VERLOF_LOG_FORMAT and VERLOF_LOG_LEVEL.
func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// checkConfig writes one line per key and reports the missing required keys.
func checkConfig(w io.Writer, lookup func(string) (string, bool)) []string {
	var missing []string
	for _, k := range configKeys {
		v, ok := lookup(k.Name)
		switch {
		case ok && v != "":
			fmt.Fprintf(w, "✅ %-28s %s\n", k.Name, truncate(v, 30))
		case k.Required:
			missing = append(missing, k.Name)
			fmt.Fprintf(w, "❌ %-28s NIET INGEVULD (verplicht)\n", k.Name)
		default:
			fmt.Fprintf(w, "❌ %-28s NIET INGEVULD\n", k.Name)
		}
	}
	return missing
}
