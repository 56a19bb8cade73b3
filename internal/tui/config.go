package tui

import (
	"context"
	"time"

	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/filter"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/store"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
)

// Loader fetches the transaction list shown on the dashboard.
type Loader interface {
	Load(ctx context.Context, limit int, failureType string) store.Result
}

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	Loader     Loader
	Diagnoser  diagnosis.Diagnoser
	Identity   permission.IdentitySource
	Clipboard  diagnosis.ClipboardWriter
	Now        func() time.Time
	ExportDir  string
	FetchLimit int
	PageSize   int
	Width      int
	Height     int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:      themes.Default,
		Clipboard:  diagnosis.SystemClipboard,
		Now:        time.Now,
		ExportDir:  ".",
		FetchLimit: 100,
		PageSize:   filter.DefaultPageSize,
		Width:      120,
		Height:     40,
	}
}

// WithLoader sets where transactions come from.
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

// WithDiagnoser sets the diagnosis backend.
func WithDiagnoser(d diagnosis.Diagnoser) Option {
	return func(c *Config) {
		c.Diagnoser = d
	}
}

// WithIdentity sets the source of the session permissions.
func WithIdentity(src permission.IdentitySource) Option {
	return func(c *Config) {
		c.Identity = src
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(write diagnosis.ClipboardWriter) Option {
	return func(c *Config) {
		c.Clipboard = write
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPageSize sets the number of table rows per page.
func WithPageSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.PageSize = size
		}
	}
}

// WithFetchLimit sets how many transactions are requested.
func WithFetchLimit(limit int) Option {
	return func(c *Config) {
		if limit > 0 {
			c.FetchLimit = limit
		}
	}
}

// WithExportDir sets where CSV exports are written.
func WithExportDir(dir string) Option {
	return func(c *Config) {
		c.ExportDir = dir
	}
}

// WithClock overrides the clock used for export file names.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}
