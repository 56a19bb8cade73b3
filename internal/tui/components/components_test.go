package components

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/upi-triage/internal/analytics"
	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDiagnoser struct {
	diagnosis *model.Diagnosis
	err       error
}

func (s stubDiagnoser) Diagnose(_ context.Context, _ model.Transaction) (*model.Diagnosis, error) {
	return s.diagnosis, s.err
}

func failedTxn(id string) model.Transaction {
	return model.Transaction{
		ID:            id,
		Amount:        1500,
		SenderVPA:     "alice@okaxis",
		ReceiverVPA:   "shop@ybl",
		Status:        model.StatusFailed,
		FailureType:   model.FailureInsufficientFunds,
		FailureReason: "Insufficient balance",
		Timestamp:     model.NewTimestamp(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)),
	}
}

func TestTransactionTable_SetTransactions(t *testing.T) {
	table := NewTransactionTable(themes.Default)
	assert.Contains(t, table.View(), "No transactions")

	txns := []model.Transaction{
		failedTxn("TXN001"),
		{ID: "TXN002", Amount: 10, SenderVPA: "a@b", ReceiverVPA: "c@d", Status: "success"},
	}
	table.SetTransactions(txns)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 0, table.Cursor())

	selected, ok := table.Selected()
	require.True(t, ok)
	assert.Equal(t, "TXN001", selected.ID)

	table, _ = table.Update(tea.KeyMsg{Type: tea.KeyDown})
	selected, ok = table.Selected()
	require.True(t, ok)
	assert.Equal(t, "TXN002", selected.ID)

	table.SetTransactions(txns)
	assert.Equal(t, 0, table.Cursor())

	view := table.View()
	assert.Contains(t, view, "TXN001")
	assert.Contains(t, view, "SUCCESS")
	assert.Contains(t, view, "Insufficient")
}

func TestTransactionRow_HidesFailureForSuccess(t *testing.T) {
	txn := model.Transaction{
		ID:          "TXN009",
		Amount:      99.5,
		Status:      "success",
		FailureType: model.FailureTimeout,
	}
	row := transactionRow(txn)
	assert.Equal(t, "SUCCESS", row[4])
	assert.Empty(t, row[5])
	assert.Empty(t, row[6])
}

func TestSummaryCards(t *testing.T) {
	tests := []struct {
		name         string
		wantSeverity string
		summary      analytics.Summary
	}{
		{name: "empty list", summary: analytics.Summary{}, wantSeverity: "info"},
		{name: "healthy", summary: analytics.Summary{Total: 100, Failed: 2, SuccessRate: 98}, wantSeverity: "success"},
		{name: "degraded", summary: analytics.Summary{Total: 100, Failed: 10, SuccessRate: 90}, wantSeverity: "warning"},
		{name: "failing", summary: analytics.Summary{Total: 10, Failed: 5, SuccessRate: 50}, wantSeverity: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := SummaryCards(tt.summary)
			require.Len(t, cards, 4)
			assert.Equal(t, "Success Rate", cards[2].Title)
			assert.Equal(t, tt.wantSeverity, cards[2].Severity)
		})
	}
}

func TestRenderFailureChart(t *testing.T) {
	empty := RenderFailureChart(themes.Default, nil, 80)
	assert.Contains(t, empty, "No failures")

	chart := RenderFailureChart(themes.Default, []analytics.FailureTypeStat{
		{Type: model.FailureTimeout, Count: 3, Percentage: 75},
		{Type: model.FailureInvalidVPA, Count: 1, Percentage: 25},
	}, 80)
	assert.Contains(t, chart, "Timeout")
	assert.Contains(t, chart, "Invalid VPA")
	assert.Contains(t, chart, "75.0%")
}

func TestBar(t *testing.T) {
	tests := []struct {
		name   string
		filled int
		full   int
	}{
		{name: "half", filled: 5, full: 5},
		{name: "negative clamps", filled: -3, full: 0},
		{name: "overflow clamps", filled: 20, full: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := Bar(themes.Default, 10, tt.filled)
			assert.Equal(t, tt.full, strings.Count(bar, "█"))
			assert.Equal(t, 10-tt.full, strings.Count(bar, "░"))
		})
	}
}

func TestDiagnosisPanel_States(t *testing.T) {
	panel := NewDiagnosisPanel(themes.Default)
	panel.Resize(80)

	t.Run("not needed", func(t *testing.T) {
		flow := diagnosis.NewFlow(context.Background())
		_, ok := flow.Open(model.Transaction{ID: "TXN002", Status: model.StatusSuccess})
		require.False(t, ok)
		assert.Contains(t, panel.View(flow), "No diagnosis needed")
	})

	t.Run("loading", func(t *testing.T) {
		flow := diagnosis.NewFlow(context.Background())
		_, ok := flow.Open(failedTxn("TXN001"))
		require.True(t, ok)
		view := panel.View(flow)
		assert.Contains(t, view, "Analyzing Transaction")
		assert.Contains(t, view, "TXN001")
	})

	t.Run("ready", func(t *testing.T) {
		flow := diagnosis.NewFlow(context.Background())
		state := flow.Run(stubDiagnoser{diagnosis: &model.Diagnosis{
			TransactionID:    "TXN001",
			FailureType:      model.FailureInsufficientFunds,
			Diagnosis:        "Account balance too low",
			ResolutionSteps:  []string{"Add funds", "Retry payment"},
			ConfidenceScore:  0.8,
			RetryRecommended: true,
		}}, failedTxn("TXN001"))
		require.Equal(t, diagnosis.StateReady, state)

		view := panel.View(flow)
		assert.Contains(t, view, "80% High confidence")
		assert.Contains(t, view, "1. Add funds")
		assert.Contains(t, view, "2. Retry payment")
		assert.Contains(t, view, "Retry recommended")
	})

	t.Run("failed", func(t *testing.T) {
		flow := diagnosis.NewFlow(context.Background())
		state := flow.Run(stubDiagnoser{err: &api.APIError{Message: "Server error occurred", Status: 500}}, failedTxn("TXN001"))
		require.Equal(t, diagnosis.StateFailed, state)
		view := panel.View(flow)
		assert.Contains(t, view, "Diagnosis failed")
		assert.Contains(t, view, "Server error occurred")
	})
}

func TestToasts(t *testing.T) {
	var toasts Toasts
	assert.Empty(t, toasts.View(themes.Default))

	first := toasts.Push(ToastInfo, "one")
	toasts.Push(ToastSuccess, "two")
	toasts.Push(ToastError, "three")
	toasts.Push(ToastInfo, "four")

	items := toasts.Items()
	require.Len(t, items, maxToasts)
	assert.Equal(t, "two", items[0].Message)

	toasts.Dismiss(first)
	assert.Len(t, toasts.Items(), maxToasts)

	toasts.Dismiss(items[1].ID)
	assert.Len(t, toasts.Items(), 2)
	assert.Contains(t, toasts.View(themes.Default), "four")
	assert.NotContains(t, toasts.View(themes.Default), "three")
}

func TestGated(t *testing.T) {
	gate := permission.Require(permission.ExportTransactions)
	content := func() string { return "export" }

	tests := []struct {
		name     string
		session  permission.Session
		fallback func() string
		want     string
	}{
		{name: "pending renders nothing", session: permission.Pending(), want: ""},
		{name: "granted", session: permission.NewSession(permission.Analyst), want: "export"},
		{name: "denied with fallback", session: permission.NewSession(permission.Viewer), fallback: func() string { return "read only" }, want: "read only"},
		{name: "fallback session", session: permission.Fallback(errors.New("boom")), fallback: func() string { return "read only" }, want: "read only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Gated(themes.Default, tt.session, gate, content, tt.fallback))
		})
	}

	denied := Gated(themes.Default, permission.NewSession(permission.Viewer), gate, content, nil)
	assert.Contains(t, denied, "Access Restricted")
}
