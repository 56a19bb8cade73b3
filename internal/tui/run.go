// Package tui implements the interactive failure triage dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/config"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Loader == nil {
		return fmt.Errorf("transaction loader is required")
	}
	if cfg.Diagnoser == nil {
		return fmt.Errorf("diagnoser is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		newModel(ctx, cfg),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

// RedirectLogs sends the default logger to path so log lines do not tear
// the alternate screen. The returned closer restores nothing; the process
// is expected to exit after the dashboard.
func RedirectLogs(path string, level slog.Level, format string) (io.Closer, error) {
	path = config.ExpandPath(path)
	if err := config.EnsureParent(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	if err := common.SetupLoggerTo(f, level, format); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
