package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/upi-triage/internal/analytics"
	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/filter"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/store"
	"github.com/Veraticus/upi-triage/internal/tui/components"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is what the dashboard keyboard currently drives.
type Mode int

// Dashboard modes.
const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeDiagnosis
	ModeHelp
)

// Gates protecting dashboard regions and actions.
var (
	diagnoseGate  = permission.Require(permission.DiagnoseTransactions)
	exportGate    = permission.Require(permission.ExportTransactions)
	analyticsGate = permission.RequireAny(permission.ViewAnalytics, permission.ViewDetailedAnalytics)
	detailGate    = permission.Require(permission.ViewDetailedAnalytics)
)

// Model holds the dashboard state.
type Model struct {
	ctx      context.Context
	theme    themes.Theme
	logger   *slog.Logger
	flow     *diagnosis.Flow
	view     *filter.View
	config   Config
	keymap   KeyMap
	session  permission.Session
	result   store.Result
	report   analytics.Report
	help     help.Model
	search   textinput.Model
	table    components.TransactionTable
	panel    components.DiagnosisPanel
	toasts   components.Toasts
	width    int
	height   int
	mode     Mode
	loading  bool
	ready    bool
	quitting bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	search := textinput.New()
	search.Placeholder = "ID, VPA or failure reason"
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		ctx:     ctx,
		theme:   cfg.Theme,
		logger:  slog.Default().With("component", "dashboard"),
		flow:    diagnosis.NewFlow(ctx),
		view:    filter.NewView(nil, cfg.PageSize),
		config:  cfg,
		keymap:  DefaultKeyMap(),
		session: permission.Pending(),
		help:    help.New(),
		search:  search,
		table:   components.NewTransactionTable(cfg.Theme),
		panel:   components.NewDiagnosisPanel(cfg.Theme),
		width:   cfg.Width,
		height:  cfg.Height,
		loading: true,
	}
	m.handleResize()
	return m
}

// Init loads the session and the first list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSession(), m.loadTransactions())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionLoadedMsg:
		m.session = msg.session
		if msg.session.LoadErr != nil {
			m.logger.Warn("Permission load failed, using fallback", "error", msg.session.LoadErr)
			cmd := m.toast(components.ToastError, "Permissions unavailable: read-only access")
			return m, cmd
		}
		return m, nil

	case transactionsLoadedMsg:
		cmd := m.handleLoaded(msg.result)
		return m, cmd

	case diagnosisResultMsg:
		if !m.flow.Resolve(msg.result) {
			return m, nil
		}
		if m.flow.State() == diagnosis.StateFailed {
			cmd := m.toast(components.ToastError, m.flow.Err().Message)
			return m, cmd
		}
		return m, stageTick(m.flow.Generation())

	case stageTickMsg:
		if msg.generation != m.flow.Generation() || !m.flow.AdvanceStage() {
			return m, nil
		}
		if m.flow.Stage() == diagnosis.StageComplete {
			return m, nil
		}
		return m, stageTick(msg.generation)

	case spinner.TickMsg:
		if !m.flow.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd

	case exportedMsg:
		if msg.err != nil {
			m.logger.Error("Export failed", "error", msg.err)
			cmd := m.toast(components.ToastError, common.UserMessage(msg.err))
			return m, cmd
		}
		cmd := m.toast(components.ToastSuccess, fmt.Sprintf("Exported %d transactions to %s", msg.count, msg.path))
		return m, cmd

	case copiedMsg:
		if msg.err != nil {
			cmd := m.toast(components.ToastError, msg.err.Error())
			return m, cmd
		}
		cmd := m.toast(components.ToastSuccess, "Diagnosis copied to clipboard")
		return m, cmd

	case toastExpiredMsg:
		m.toasts.Dismiss(msg.id)
		return m, nil
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeDiagnosis:
		return m.renderDiagnosis()
	default:
		return m.renderDashboard()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		m.flow.Close()
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeDiagnosis:
		return m.handleDiagnosisKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keymap.Help, m.keymap.Close) {
			m.mode = ModeBrowse
		}
		return m, nil
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	criteria := m.view.Criteria()

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.mode = ModeHelp

	case key.Matches(msg, m.keymap.Search):
		m.mode = ModeSearch
		m.table.Blur()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keymap.CycleStatus):
		criteria.Status = filter.NextStatus(criteria.Status)
		m.applyCriteria(criteria)

	case key.Matches(msg, m.keymap.CycleFailureType):
		criteria.FailureType = filter.NextFailureType(criteria.FailureType)
		m.applyCriteria(criteria)

	case key.Matches(msg, m.keymap.ClearFilters):
		m.search.SetValue("")
		m.applyCriteria(filter.Criteria{})

	case key.Matches(msg, m.keymap.NextPage):
		if m.view.NextPage() {
			m.syncTable()
		}

	case key.Matches(msg, m.keymap.PrevPage):
		if m.view.PrevPage() {
			m.syncTable()
		}

	case key.Matches(msg, m.keymap.Diagnose):
		return m.openDiagnosis()

	case key.Matches(msg, m.keymap.Export):
		if denied(m.session, exportGate) {
			cmd := m.toast(components.ToastError, "You don't have permission to export transactions")
			return m, cmd
		}
		return m, exportCSV(m.session, m.config.ExportDir, m.config.Now(), m.view.Filtered())

	case key.Matches(msg, m.keymap.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.loadTransactions()

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ConfirmSearch):
		m.mode = ModeBrowse
		m.search.Blur()
		m.table.Focus()
		return m, nil

	case key.Matches(msg, m.keymap.CancelSearch):
		m.mode = ModeBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.table.Focus()
		criteria := m.view.Criteria()
		criteria.Search = ""
		m.applyCriteria(criteria)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	criteria := m.view.Criteria()
	if criteria.Search != m.search.Value() {
		criteria.Search = m.search.Value()
		m.applyCriteria(criteria)
	}
	return m, cmd
}

func (m Model) handleDiagnosisKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Close):
		m.flow.Close()
		m.mode = ModeBrowse
		m.table.Focus()

	case key.Matches(msg, m.keymap.Quit):
		m.flow.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Reanalyze):
		req, ok := m.flow.Reanalyze()
		if !ok {
			return m, nil
		}
		return m, tea.Batch(runDiagnosis(m.config.Diagnoser, req), m.panel.Tick())

	case key.Matches(msg, m.keymap.Copy):
		text, err := m.flow.JSON()
		if err != nil {
			cmd := m.toast(components.ToastError, "No diagnosis to copy yet")
			return m, cmd
		}
		return m, copyText(m.config.Clipboard, text)
	}
	return m, nil
}

func (m Model) openDiagnosis() (tea.Model, tea.Cmd) {
	txn, ok := m.table.Selected()
	if !ok {
		return m, nil
	}
	if denied(m.session, diagnoseGate) {
		cmd := m.toast(components.ToastError, "You don't have permission to diagnose transactions")
		return m, cmd
	}

	m.mode = ModeDiagnosis
	m.table.Blur()
	req, ok := m.flow.Open(txn)
	if !ok {
		return m, nil
	}
	return m, tea.Batch(runDiagnosis(m.config.Diagnoser, req), m.panel.Tick())
}

func denied(session permission.Session, gate permission.Gate) bool {
	return gate.Evaluate(session) != permission.Granted
}

func (m *Model) handleLoaded(result store.Result) tea.Cmd {
	m.loading = false
	m.ready = true
	m.result = result
	m.view.SetSource(result.Transactions)
	m.report = analytics.Build(result.Transactions)
	m.syncTable()

	m.logger.Info("Loaded transactions",
		"source", result.Source,
		"count", len(result.Transactions))

	if result.Degraded() {
		return m.toast(components.ToastError,
			fmt.Sprintf("Backend unavailable, showing %s data", result.Source))
	}
	return nil
}

func (m *Model) applyCriteria(c filter.Criteria) {
	m.view.Apply(c)
	m.syncTable()
}

func (m *Model) syncTable() {
	m.table.SetTransactions(m.view.Current())
}

func (m *Model) toast(kind components.ToastKind, message string) tea.Cmd {
	return expireToast(m.toasts.Push(kind, message))
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	m.table.Resize(m.width-2, m.config.PageSize+2)
	m.panel.Resize(min(m.width-4, 100))
	m.help.Width = m.width
	m.search.Width = max(20, m.width/3)
}
