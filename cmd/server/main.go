package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"verlof/internal/adapters/storage"
	"verlof/internal/application/orchestrators"
	"verlof/internal/domain/audit"

	_ "time/tzdata"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var cfg appConfig

var rootCmd = &cobra.Command{
	Use:   "verlof",
	Short: "Verlof - leave and sick-report requests for a small team",
	Long: `verlof serves the leave request form, the request overview and the
approval links sent to the administrator.

Run without a subcommand to start the web server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		slog.SetDefault(newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel))
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server and the outbox worker",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "List every VERLOF_ setting and fail when a required one is missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.Repeat("=", 50))
		missing := checkConfig(out, os.LookupEnv)
		fmt.Fprintln(out, strings.Repeat("=", 50))
		if len(missing) > 0 {
			return fmt.Errorf("configuratie onvolledig: %s", strings.Join(missing, ", "))
		}
		fmt.Fprintln(out, "✅ Alle configuratie is compleet")
		return nil
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the employee roster",
}

var rosterDryRun bool

var rosterImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the roster with the employees in an .xlsx or .xls file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRosterImport,
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Work with stored leave requests",
}

var exportStatus string

var requestsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write the requests to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsExport,
}

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and drive the integration retry queue",
}

var outboxRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Run one pass over the due outbox entries",
	Args:  cobra.NoArgs,
	RunE:  runOutboxRetry,
}

func init() {
	rosterImportCmd.Flags().BoolVar(&rosterDryRun, "dry-run", false, "Parse and report without saving")
	requestsExportCmd.Flags().StringVar(&exportStatus, "status", "", "Only export requests with this status (pending, approved, rejected)")

	configCmd.AddCommand(configCheckCmd)
	rosterCmd.AddCommand(rosterImportCmd)
	requestsCmd.AddCommand(requestsExportCmd)
	outboxCmd.AddCommand(outboxRetryCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(outboxCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// runRosterImport loads a spreadsheet into the roster file named by VERLOF_ROSTER_PATH.
func runRosterImport(cmd *cobra.Command, args []string) error {
	if cfg.RosterPath == "" && !rosterDryRun {
		return fmt.Errorf("VERLOF_ROSTER_PATH is not set")
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := orchestrators.ExecuteImportRoster(cmd.Context(), orchestrators.ImportRosterInput{
		Reader:   f,
		Filename: filepath.Base(args[0]),
		DryRun:   rosterDryRun,
		Actor:    audit.ActorAdmin,
	}, orchestrators.ImportRosterDeps{
		Directory:  a.directory,
		RosterPath: cfg.RosterPath,
		AuditStore: a.audit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.DryRun {
		fmt.Fprintf(out, "🔎 Voorbeeld: %d medewerkers, %d rijen overgeslagen. Er is niets opgeslagen.\n", res.Imported, res.Skipped)
		return nil
	}
	fmt.Fprintf(out, "✅ %d medewerkers geïmporteerd, %d rijen overgeslagen → %s\n", res.Imported, res.Skipped, cfg.RosterPath)
	return nil
}

// runRequestsExport writes the workbook to the given path.
func runRequestsExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	n, err := orchestrators.ExecuteExportRequests(cmd.Context(), f, orchestrators.ExportRequestsInput{
		Status: exportStatus,
		Actor:  audit.ActorAdmin,
	}, orchestrators.ExportRequestsDeps{
		RequestStore: a.requests,
		AuditStore:   a.audit,
		Location:     a.location,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(args[0])
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %d aanvragen geëxporteerd → %s\n", n, args[0])
	return nil
}

// runOutboxRetry processes the outbox once, as the background worker would.
func runOutboxRetry(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.processor.ProcessPending(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ verwerkt: %d, gelukt: %d, mislukt: %d, wacht nog: %d\n",
		stats.Processed, stats.Succeeded, stats.Failed, stats.Skipped)
	return nil
}

// storageVersion is logged at startup.
func storageVersion(ctx context.Context, db storage.SQLDB) string {
	var v string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&v); err != nil {
		return "unknown"
	}
	return v
}
