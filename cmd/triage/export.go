package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/config"
	"github.com/Veraticus/upi-triage/internal/export"
	"github.com/Veraticus/upi-triage/internal/filter"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newReportWriter builds the Google Sheets writer. Tests replace it.
var newReportWriter = func(ctx context.Context, cfg sheets.Config) (export.ReportWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default().With("component", "sheets"))
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions",
		Long: `Export the current transaction list, after filters, as CSV or as a
Google Sheets report.`,
	}

	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func addExportFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "number of transactions to fetch (default from config)")
	cmd.Flags().String("status", filter.All, "status filter: all, success, failed, pending")
	cmd.Flags().String("failure-type", filter.All, "failure type filter")
	cmd.Flags().String("search", "", "search over ID, VPAs and failure reason")
}

// loadFiltered loads the list the way the dashboard does and applies the
// export filters.
func loadFiltered(cmd *cobra.Command, a *app) ([]model.Transaction, filter.Criteria) {
	ctx := cmd.Context()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = a.settings.FetchLimit
	}
	criteria := filter.Criteria{}
	criteria.Status, _ = cmd.Flags().GetString("status")
	criteria.FailureType, _ = cmd.Flags().GetString("failure-type")
	criteria.Search, _ = cmd.Flags().GetString("search")

	st, cleanup := a.newStore(ctx)
	defer cleanup()

	result := st.Load(ctx, limit, "")
	if result.Degraded() {
		a.println(cli.FormatWarning(fmt.Sprintf("Backend unavailable, exporting %s data", result.Source)))
	}
	return filter.Apply(result.Transactions, criteria), criteria
}

func exportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export transactions as CSV",
		RunE:  runExportCSV,
	}

	addExportFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output file, - for stdout (default upi-transactions-<date>.csv)")

	return cmd
}

func runExportCSV(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	session := a.session(cmd.Context())
	if err := requireSession(session, permission.ExportTransactions); err != nil {
		return err
	}

	transactions, _ := loadFiltered(cmd, a)

	output, _ := cmd.Flags().GetString("output")
	if output == "-" {
		return export.CSV(session, a.out, transactions, nil)
	}
	if output == "" {
		output = export.CSVFilename(time.Now())
	}
	output = config.ExpandPath(output)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(transactions), "Exporting")
	if err := export.CSV(session, f, transactions, bar); err != nil {
		_ = f.Close()
		_ = os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", output, err)
	}

	a.println(cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(transactions), output)))
	return nil
}

func exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Publish a report to Google Sheets",
		Long: `Publish a summary and the filtered transactions to Google Sheets.

Authenticate either with a service account (sheets.service_account_path) or
with OAuth2 by running 'triage sheets-auth' once.`,
		RunE: runExportSheets,
	}

	addExportFilterFlags(cmd)
	cmd.Flags().String("title", "UPI Failure Report", "report title")
	cmd.Flags().String("spreadsheet-id", "", "existing spreadsheet to overwrite (overrides config)")

	return cmd
}

func runExportSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	session := a.session(ctx)
	if err := requireSession(session, permission.ExportReports); err != nil {
		return err
	}

	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load sheets config: %w", err)
	}
	if id, _ := cmd.Flags().GetString("spreadsheet-id"); id != "" {
		cfg.SpreadsheetID = id
	}

	transactions, criteria := loadFiltered(cmd, a)
	title, _ := cmd.Flags().GetString("title")
	report := export.NewReport(title, describeCriteria(criteria), transactions, time.Now())

	writer, err := newReportWriter(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}
	if err := export.Publish(ctx, session, writer, report); err != nil {
		return err
	}

	a.println(cli.FormatSuccess(fmt.Sprintf("Published %d transactions to Google Sheets", len(transactions))))
	return nil
}

func describeCriteria(c filter.Criteria) string {
	if c.IsZero() {
		return "all transactions"
	}
	return fmt.Sprintf("status=%s failure_type=%s search=%q", orAll(c.Status), orAll(c.FailureType), c.Search)
}

func orAll(s string) string {
	if s == "" {
		return filter.All
	}
	return s
}
