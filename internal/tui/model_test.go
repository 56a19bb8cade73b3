package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	result store.Result
	calls  int
}

func (f *fakeLoader) Load(_ context.Context, _ int, _ string) store.Result {
	f.calls++
	return f.result
}

type fakeDiagnoser struct {
	diagnosis *model.Diagnosis
	err       error
	calls     int
}

func (f *fakeDiagnoser) Diagnose(_ context.Context, _ model.Transaction) (*model.Diagnosis, error) {
	f.calls++
	return f.diagnosis, f.err
}

func testTransactions() []model.Transaction {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	txns := make([]model.Transaction, 0, 15)
	for i := 0; i < 15; i++ {
		txn := model.Transaction{
			ID:          fmt.Sprintf("TXN%03d", i),
			Amount:      float64(100 * (i + 1)),
			SenderVPA:   fmt.Sprintf("user%d@okaxis", i),
			ReceiverVPA: "shop@ybl",
			SenderBank:  "HDFC",
			Status:      model.StatusSuccess,
			Timestamp:   model.NewTimestamp(now.Add(-time.Duration(i) * time.Hour)),
		}
		if i%3 == 0 {
			txn.Status = "failed"
			txn.FailureType = model.FailureTimeout
			txn.FailureReason = "Bank did not respond"
		}
		txns = append(txns, txn)
	}
	return txns
}

func newTestModel(t *testing.T, role permission.Role, opts ...Option) (Model, *fakeDiagnoser) {
	t.Helper()

	diagnoser := &fakeDiagnoser{diagnosis: &model.Diagnosis{
		TransactionID:   "TXN000",
		FailureType:     model.FailureTimeout,
		Diagnosis:       "The remitter bank timed out",
		ResolutionSteps: []string{"Wait a few minutes", "Retry"},
		ConfidenceScore: 0.72,
	}}

	cfg := defaultConfig()
	cfg.Loader = &fakeLoader{result: store.Result{Source: store.SourceBackend, Transactions: testTransactions()}}
	cfg.Diagnoser = diagnoser
	cfg.Clipboard = func(string) error { return nil }
	cfg.Width = 140
	cfg.Height = 50
	for _, opt := range opts {
		opt(&cfg)
	}

	m := newModel(context.Background(), cfg)
	m = update(t, m, sessionLoadedMsg{session: permission.NewSession(role)})
	m = update(t, m, m.loadTransactions()())
	return m, diagnoser
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	result, ok := next.(Model)
	require.True(t, ok)
	return result
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	result, ok := next.(Model)
	require.True(t, ok)
	return result, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// diagnosisResult runs the batch returned when a diagnosis starts and
// returns its diagnosis message.
func diagnosisResult(t *testing.T, cmd tea.Cmd) diagnosisResultMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(diagnosisResultMsg); ok {
			return msg
		}
	}
	t.Fatal("no diagnosis result in batch")
	return diagnosisResultMsg{}
}

func TestModel_Loaded(t *testing.T) {
	m, _ := newTestModel(t, permission.Analyst)

	assert.True(t, m.ready)
	assert.False(t, m.loading)
	assert.Equal(t, 15, len(m.view.Source()))
	assert.Equal(t, 10, m.table.Len())
	assert.Equal(t, 15, m.report.Summary.Total)
	assert.Equal(t, 5, m.report.Summary.Failed)
	assert.Empty(t, m.toasts.Items())

	view := m.View()
	assert.Contains(t, view, "UPI Failure Triage")
	assert.Contains(t, view, "Total Transactions")
	assert.Contains(t, view, "Page 1 of 2")
}

func TestModel_DegradedLoadShowsToast(t *testing.T) {
	loader := &fakeLoader{result: store.Result{
		Source:       store.SourceFixtures,
		Cause:        errors.New("connection refused"),
		Transactions: testTransactions()[:3],
	}}
	m, _ := newTestModel(t, permission.Analyst, WithLoader(loader))

	require.Len(t, m.toasts.Items(), 1)
	assert.Contains(t, m.toasts.Items()[0].Message, "fixtures")
	// stats follow the list that was just returned
	assert.Equal(t, 3, m.report.Summary.Total)
}

func TestModel_StatsFollowRefresh(t *testing.T) {
	loader := &fakeLoader{result: store.Result{Source: store.SourceBackend, Transactions: testTransactions()}}
	m, _ := newTestModel(t, permission.Analyst, WithLoader(loader))
	require.Equal(t, 15, m.report.Summary.Total)

	m, cmd := updateCmd(t, m, runes("R"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	loader.result = store.Result{Source: store.SourceBackend, Transactions: testTransactions()[:4]}
	m = update(t, m, cmd())
	assert.Equal(t, 4, m.report.Summary.Total)
	assert.Equal(t, 4, m.table.Len())
	assert.Equal(t, 2, loader.calls)
}

func TestModel_Filters(t *testing.T) {
	m, _ := newTestModel(t, permission.Analyst)

	m = update(t, m, runes("n"))
	assert.Equal(t, 2, m.view.CurrentPage())
	assert.Equal(t, 5, m.table.Len())

	m = update(t, m, runes("s"))
	assert.Equal(t, "success", m.view.Criteria().Status)
	assert.Equal(t, 1, m.view.CurrentPage())
	assert.Equal(t, 10, m.view.Len())

	m = update(t, m, runes("s"))
	assert.Equal(t, "failed", m.view.Criteria().Status)
	assert.Equal(t, 5, m.view.Len())

	m = update(t, m, runes("f"))
	assert.Equal(t, string(model.FailureInsufficientFunds), m.view.Criteria().FailureType)
	assert.Equal(t, 0, m.view.Len())
	assert.Contains(t, m.View(), "No transactions match")

	m = update(t, m, runes("c"))
	assert.True(t, m.view.Criteria().IsZero())
	assert.Equal(t, 15, m.view.Len())
}

func TestModel_Search(t *testing.T) {
	m, _ := newTestModel(t, permission.Viewer)

	m = update(t, m, runes("/"))
	require.Equal(t, ModeSearch, m.mode)

	for _, r := range "user1" {
		m = update(t, m, runes(string(r)))
	}
	// user1, user10 .. user14
	assert.Equal(t, 6, m.view.Len())
	assert.Equal(t, "user1", m.view.Criteria().Search)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Equal(t, 6, m.view.Len())

	m = update(t, m, runes("/"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeBrowse, m.mode)
	assert.Equal(t, 15, m.view.Len())
}

func TestModel_DiagnoseFlow(t *testing.T) {
	m, diagnoser := newTestModel(t, permission.Analyst)

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeDiagnosis, m.mode)
	assert.True(t, m.flow.Loading())
	assert.Contains(t, m.View(), "Analyzing Transaction")

	result := diagnosisResult(t, cmd)
	m, cmd = updateCmd(t, m, result)
	require.NotNil(t, cmd)
	assert.Equal(t, diagnosis.StateReady, m.flow.State())
	assert.Equal(t, diagnosis.StageAIDiagnosis, m.flow.Stage())
	assert.Equal(t, 1, diagnoser.calls)

	gen := m.flow.Generation()
	m = update(t, m, stageTickMsg{generation: gen - 1})
	assert.Equal(t, diagnosis.StageAIDiagnosis, m.flow.Stage())

	m = update(t, m, stageTickMsg{generation: gen})
	m, cmd = updateCmd(t, m, stageTickMsg{generation: gen})
	assert.Nil(t, cmd)
	assert.Equal(t, diagnosis.StageComplete, m.flow.Stage())

	view := m.View()
	assert.Contains(t, view, "72% Medium confidence")
	assert.Contains(t, view, "1. Wait a few minutes")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeBrowse, m.mode)
	assert.False(t, m.flow.IsOpen())
}

func TestModel_StaleDiagnosisDropped(t *testing.T) {
	m, _ := newTestModel(t, permission.Analyst)

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	stale := diagnosisResult(t, cmd)

	m, cmd = updateCmd(t, m, runes("r"))
	fresh := diagnosisResult(t, cmd)

	m = update(t, m, stale)
	assert.True(t, m.flow.Loading())

	m = update(t, m, fresh)
	assert.Equal(t, diagnosis.StateReady, m.flow.State())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, fresh)
	assert.Equal(t, diagnosis.StateIdle, m.flow.State())
	assert.Nil(t, m.flow.Diagnosis())
}

func TestModel_DiagnosisError(t *testing.T) {
	m, diagnoser := newTestModel(t, permission.Analyst)
	diagnoser.diagnosis = nil
	diagnoser.err = &api.APIError{Message: "Network error - please check your connection"}

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, diagnosisResult(t, cmd))

	assert.Equal(t, diagnosis.StateFailed, m.flow.State())
	require.Len(t, m.toasts.Items(), 1)
	assert.Contains(t, m.View(), "Network error")
}

func TestModel_NonFailedSkipsRequest(t *testing.T) {
	m, diagnoser := newTestModel(t, permission.Analyst)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, diagnosis.StateNotNeeded, m.flow.State())
	assert.Equal(t, 0, diagnoser.calls)
	assert.Contains(t, m.View(), "No diagnosis needed")
}

func TestModel_Permissions(t *testing.T) {
	tests := []struct {
		name          string
		session       permission.Session
		wantDiagnose  bool
		wantAnalytics bool
	}{
		{name: "analyst", session: permission.NewSession(permission.Analyst), wantDiagnose: true, wantAnalytics: true},
		{name: "viewer", session: permission.NewSession(permission.Viewer), wantDiagnose: false, wantAnalytics: true},
		{name: "fallback", session: permission.Fallback(errors.New("boom")), wantDiagnose: false, wantAnalytics: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, diagnoser := newTestModel(t, permission.Admin)
			m = update(t, m, sessionLoadedMsg{session: tt.session})

			m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			if tt.wantDiagnose {
				assert.Equal(t, ModeDiagnosis, m.mode)
			} else {
				assert.Equal(t, ModeBrowse, m.mode)
				assert.Equal(t, 0, diagnoser.calls)
				assert.NotEmpty(t, m.toasts.Items())
			}

			if tt.wantAnalytics {
				m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
				assert.Contains(t, m.View(), "Total Transactions")
			} else {
				assert.NotContains(t, m.View(), "Total Transactions")
			}
		})
	}
}

func TestModel_PendingSessionDeniesActions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Loader = &fakeLoader{result: store.Result{Source: store.SourceBackend, Transactions: testTransactions()}}
	cfg.Diagnoser = &fakeDiagnoser{}
	m := newModel(context.Background(), cfg)
	m = update(t, m, m.loadTransactions()())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeBrowse, m.mode)
	assert.NotContains(t, m.View(), "Total Transactions")
}

func TestModel_ExportCSV(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	m, _ := newTestModel(t, permission.Analyst, WithExportDir(dir), WithClock(func() time.Time { return now }))

	m = update(t, m, runes("s"))
	m = update(t, m, runes("s"))
	m, cmd := updateCmd(t, m, runes("e"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(exportedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, 5, msg.count)
	assert.Equal(t, filepath.Join(dir, "upi-transactions-2024-03-09.csv"), msg.path)

	data, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "Transaction ID,Amount,Sender,Receiver,Status,Failure Reason,Timestamp", lines[0])

	m = update(t, m, msg)
	require.NotEmpty(t, m.toasts.Items())
	assert.Contains(t, m.toasts.Items()[0].Message, "Exported 5 transactions")
}

func TestModel_ExportDeniedForViewer(t *testing.T) {
	m, _ := newTestModel(t, permission.Viewer, WithExportDir(t.TempDir()))

	m, cmd := updateCmd(t, m, runes("e"))
	require.NotNil(t, cmd)
	require.Len(t, m.toasts.Items(), 1)
	assert.Contains(t, m.toasts.Items()[0].Message, "permission to export")
}

func TestModel_CopyDiagnosis(t *testing.T) {
	var copied string
	m, _ := newTestModel(t, permission.Analyst, WithClipboard(func(text string) error {
		copied = text
		return nil
	}))

	m, cmd := updateCmd(t, m, runes("y"))
	assert.Nil(t, cmd)

	m, cmd = updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, diagnosisResult(t, cmd))

	m, cmd = updateCmd(t, m, runes("y"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Contains(t, copied, `"transaction_id": "TXN000"`)
	assert.Contains(t, m.toasts.Items()[0].Message, "copied")
}

func TestModel_ToastExpires(t *testing.T) {
	m, _ := newTestModel(t, permission.Viewer)
	m = update(t, m, runes("e"))
	require.Len(t, m.toasts.Items(), 1)

	m = update(t, m, toastExpiredMsg{id: m.toasts.Items()[0].ID})
	assert.Empty(t, m.toasts.Items())
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t, permission.Viewer)

	m = update(t, m, runes("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Press ? or Esc to close help")

	m = update(t, m, runes("?"))
	assert.Equal(t, ModeBrowse, m.mode)

	m, cmd := updateCmd(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestRun_RequiresDependencies(t *testing.T) {
	err := Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader")

	err = Run(context.Background(), WithLoader(&fakeLoader{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diagnoser")
}
