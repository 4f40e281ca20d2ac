package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 30, "short"},
		{strings.Repeat("a", 30), 30, strings.Repeat("a", 30)},
		{strings.Repeat("a", 31), 30, strings.Repeat("a", 30) + "..."},
		{"geïmporteerd", 3, "geï..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCheckConfig(t *testing.T) {
	env := map[string]string{
		"VERLOF_BASE_URL":    "https://verlof.example.nl",
		"VERLOF_ADMIN_EMAIL": "admin@example.nl",
		"VERLOF_RESEND_KEY":  "re_" + strings.Repeat("x", 40),
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var buf bytes.Buffer
	missing := checkConfig(&buf, lookup)

	if len(missing) != 1 || missing[0] != "VERLOF_RESEND_FROM" {
		t.Errorf("missing = %v, want [VERLOF_RESEND_FROM]", missing)
	}
	out := buf.String()
	if n := strings.Count(out, "\n"); n != len(configKeys) {
		t.Errorf("printed %d lines, want %d", n, len(configKeys))
	}
	if !strings.Contains(out, "✅ VERLOF_BASE_URL") {
		t.Errorf("base URL should be reported as set:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 40)) {
		t.Error("long values should be truncated")
	}
	if !strings.Contains(out, "❌ VERLOF_RESEND_FROM") || !strings.Contains(out, "verplicht") {
		t.Errorf("missing required key not flagged:\n%s", out)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nVERLOF_TEST_EXISTING=from-file\nexport VERLOF_TEST_NEW=\"quoted value\"\nnot a pair\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VERLOF_TEST_EXISTING", "from-env")
	t.Cleanup(func() { os.Unsetenv("VERLOF_TEST_NEW") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("VERLOF_TEST_EXISTING"); got != "from-env" {
		t.Errorf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("VERLOF_TEST_NEW"); got != "quoted value" {
		t.Errorf("VERLOF_TEST_NEW = %q", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VERLOF_BASE_URL", "https://verlof.example.nl/")
	t.Setenv("VERLOF_OUTBOX_INTERVAL", "30s")
	t.Setenv("VERLOF_ADV_HOURS", "96")
	t.Setenv("VERLOF_TIMEZONE", "")

	c, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.BaseURL != "https://verlof.example.nl" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", c.BaseURL)
	}
	if c.OutboxInterval != 30*time.Second {
		t.Errorf("OutboxInterval = %v", c.OutboxInterval)
	}
	if c.ADVHours != 96 {
		t.Errorf("ADVHours = %v", c.ADVHours)
	}
	if c.Timezone != "Europe/Amsterdam" {
		t.Errorf("Timezone = %q", c.Timezone)
	}
	if _, err := c.location(); err != nil {
		t.Errorf("location: %v", err)
	}

	t.Setenv("VERLOF_OUTBOX_INTERVAL", "soon")
	if _, err := loadConfig(); err == nil {
		t.Error("invalid interval should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "warn")
	logger.Info("hidden")
	logger.Warn("leave_event", "event", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"event":"shown"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !newLogger(&buf, "text", "debug").Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level not applied")
	}
}

func TestTrustedOrigins(t *testing.T) {
	tests := map[string][]string{
		"https://verlof.example.nl": {"verlof.example.nl"},
		"http://localhost:8080":     {"localhost:8080"},
		"":                          nil,
	}
	for in, want := range tests {
		got := trustedOrigins(in)
		if len(got) != len(want) || (len(want) > 0 && got[0] != want[0]) {
			t.Errorf("trustedOrigins(%q) = %v, want %v", in, got, want)
		}
	}
}

func testCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRunRequestsExport(t *testing.T) {
	dir := t.TempDir()
	cfg = appConfig{DBPath: filepath.Join(dir, "verlof.db"), Timezone: "Europe/Amsterdam", BaseURL: "http://localhost:8080"}
	exportStatus = ""

	cmd, out := testCommand(t)
	target := filepath.Join(dir, "export.xlsx")
	if err := runRequestsExport(cmd, []string{target}); err != nil {
		t.Fatalf("runRequestsExport: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if !strings.Contains(out.String(), "0 aanvragen") {
		t.Errorf("output = %q", out.String())
	}

	exportStatus = "archived"
	t.Cleanup(func() { exportStatus = "" })
	bad := filepath.Join(dir, "bad.xlsx")
	if err := runRequestsExport(cmd, []string{bad}); err == nil {
		t.Error("invalid status should fail")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("failed export should not leave a file behind")
	}
}

func TestRunOutboxRetry_EmptyQueue(t *testing.T) {
	cfg = appConfig{DBPath: filepath.Join(t.TempDir(), "verlof.db"), Timezone: "UTC"}

	cmd, out := testCommand(t)
	if err := runOutboxRetry(cmd, nil); err != nil {
		t.Fatalf("runOutboxRetry: %v", err)
	}
	if !strings.Contains(out.String(), "verwerkt: 0") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunRosterImport_RequiresPath(t *testing.T) {
	cfg = appConfig{DBPath: filepath.Join(t.TempDir(), "verlof.db"), Timezone: "UTC"}
	rosterDryRun = false

	cmd, _ := testCommand(t)
	if err := runRosterImport(cmd, []string{"roster.xlsx"}); err == nil {
		t.Error("import without VERLOF_ROSTER_PATH should fail")
	}
}
