package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/export"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// loadTimeout bounds a dashboard load. The HTTP client has its own timeout;
// this also covers the snapshot fallback.
const loadTimeout = 45 * time.Second

// loadTransactions fetches the list. The store never fails; degraded loads
// carry their cause in the result.
func (m Model) loadTransactions() tea.Cmd {
	loader := m.config.Loader
	limit := m.config.FetchLimit
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()
		return transactionsLoadedMsg{result: loader.Load(ctx, limit, "")}
	}
}

// loadSession resolves the permissions once per dashboard run.
func (m Model) loadSession() tea.Cmd {
	src := m.config.Identity
	parent := m.ctx
	return func() tea.Msg {
		if src == nil {
			return sessionLoadedMsg{session: permission.Fallback(fmt.Errorf("no identity configured"))}
		}
		return sessionLoadedMsg{session: permission.Load(parent, src)}
	}
}

// runDiagnosis performs req off the update loop.
func runDiagnosis(d diagnosis.Diagnoser, req diagnosis.Request) tea.Cmd {
	return func() tea.Msg {
		return diagnosisResultMsg{result: req.Run(d)}
	}
}

// stageTick schedules the next progress stage for generation.
func stageTick(generation uint64) tea.Cmd {
	return tea.Tick(diagnosis.StageInterval, func(time.Time) tea.Msg {
		return stageTickMsg{generation: generation}
	})
}

// exportCSV writes transactions to a dated file in dir.
func exportCSV(session permission.Session, dir string, now time.Time, transactions []model.Transaction) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, export.CSVFilename(now))
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: fmt.Errorf("failed to create %s: %w", path, err)}
		}

		if err := export.CSV(session, f, transactions, nil); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return exportedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return exportedMsg{err: fmt.Errorf("failed to close %s: %w", path, err)}
		}
		return exportedMsg{path: path, count: len(transactions)}
	}
}

// copyText writes text with write.
func copyText(write diagnosis.ClipboardWriter, text string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return copiedMsg{err: fmt.Errorf("failed to copy diagnosis: %w", err)}
		}
		return copiedMsg{}
	}
}

// expireToast dismisses toast id after it has been shown.
func expireToast(id int) tea.Cmd {
	return tea.Tick(components.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
