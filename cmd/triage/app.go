package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/config"
	"github.com/Veraticus/upi-triage/internal/metrics"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/storage"
	"github.com/Veraticus/upi-triage/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app bundles what most commands need: resolved settings, a backend client
// and the stored credential it uses.
type app struct {
	out         io.Writer
	client      *api.Client
	credentials *config.FileCredentials
	metrics     *metrics.Metrics
	logger      *slog.Logger
	settings    config.Settings
}

func newApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	a := &app{
		out:         cmd.OutOrStdout(),
		settings:    settings,
		credentials: config.NewFileCredentials(settings.TokenFile, settings.APIToken),
		metrics:     metrics.New(),
		logger:      slog.Default().With("component", "cli"),
	}

	a.client, err = api.New(settings.APIURL,
		api.WithTimeout(settings.APITimeout),
		api.WithCredentials(a.credentials),
		api.WithMetrics(a.metrics),
		api.OnUnauthorized(func() {
			a.logger.Warn("Backend rejected the stored token, run 'triage login' again")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return a, nil
}

// session resolves the permission session from the configured identity.
func (a *app) session(ctx context.Context) permission.Session {
	return permission.Load(ctx, a.settings.Identity())
}

// openStorage opens and migrates the snapshot cache.
func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	if err := config.EnsureParent(a.settings.StoragePath); err != nil {
		return nil, err
	}
	db, err := storage.NewSQLiteStorage(a.settings.StoragePath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	db.SetKeepSnapshots(a.settings.KeepSnapshots)
	return db, nil
}

// newStore returns a store backed by the snapshot cache. A cache that cannot
// be opened is logged and skipped; loads then fall back to fixtures only.
func (a *app) newStore(ctx context.Context) (*store.Store, func()) {
	opts := []store.Option{
		store.WithMetrics(a.metrics),
		store.WithBackendURL(a.client.BaseURL()),
	}

	cleanup := func() {}
	db, err := a.openStorage(ctx)
	if err != nil {
		a.logger.Warn("Snapshot cache unavailable", "path", a.settings.StoragePath, "error", err)
	} else {
		opts = append(opts, store.WithSnapshots(db))
		cleanup = func() {
			if closeErr := db.Close(); closeErr != nil {
				a.logger.Warn("Failed to close snapshot cache", "error", closeErr)
			}
		}
	}
	return store.New(a.client, opts...), cleanup
}

// printf writes formatted output.
func (a *app) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(a.out, format, args...); err != nil {
		a.logger.Error("failed to write output", "error", err)
	}
}

// println writes a line of output.
func (a *app) println(args ...any) {
	if _, err := fmt.Fprintln(a.out, args...); err != nil {
		a.logger.Error("failed to write output", "error", err)
	}
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
