package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/upi-triage/internal/certs"
	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/config"
	"github.com/Veraticus/upi-triage/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive triage dashboard",
		Long: `Open the interactive dashboard.

The dashboard shows headline statistics, the failure type breakdown and a
paginated transaction table. Select a failed transaction and press Enter to
ask the backend for a diagnosis. When the backend is unreachable the last
cached list (or bundled sample data) is shown instead.`,
		RunE: runDashboard,
	}

	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().Bool("metrics-tls", false, "serve metrics over HTTPS with a self-signed localhost certificate")
	cmd.Flags().String("export-dir", ".", "directory for CSV exports")
	cmd.Flags().Int("limit", 0, "number of transactions to fetch (overrides config)")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	logs, err := tui.RedirectLogs(a.settings.LogFile,
		common.ParseLevel(viper.GetString("logging.level")),
		viper.GetString("logging.format"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := logs.Close(); closeErr != nil {
			slog.Warn("Failed to close log file", "error", closeErr)
		}
	}()

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		var tlsSource certs.Source
		if useTLS, _ := cmd.Flags().GetBool("metrics-tls"); useTLS {
			tlsSource = certs.NewFileManager(config.ExpandPath(config.DefaultCertDir))
		}
		go func() {
			if serveErr := a.metrics.Serve(ctx, addr, tlsSource); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				slog.Error("Metrics server stopped", "addr", addr, "error", serveErr)
			}
		}()
	}

	limit := a.settings.FetchLimit
	if flagLimit, _ := cmd.Flags().GetInt("limit"); flagLimit > 0 {
		limit = flagLimit
	}
	exportDir, _ := cmd.Flags().GetString("export-dir")

	st, cleanup := a.newStore(ctx)
	defer cleanup()

	slog.Info("Starting dashboard", "backend", a.client.BaseURL(), "role", a.settings.Role)

	return tui.Run(ctx,
		tui.WithLoader(st),
		tui.WithDiagnoser(a.client),
		tui.WithIdentity(a.settings.Identity()),
		tui.WithPageSize(a.settings.PageSize),
		tui.WithFetchLimit(limit),
		tui.WithExportDir(config.ExpandPath(exportDir)),
	)
}
