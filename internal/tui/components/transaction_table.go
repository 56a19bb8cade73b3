package components

import (
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const timeLayout = "02 Jan 15:04"

// TransactionTable shows one page of transactions.
type TransactionTable struct {
	theme        themes.Theme
	transactions []model.Transaction
	table        table.Model
	width        int
	height       int
}

// NewTransactionTable creates an empty table.
func NewTransactionTable(theme themes.Theme) TransactionTable {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	t.SetStyles(s)

	m := TransactionTable{
		theme: theme,
		table: t,
		width: 100,
	}
	m.updateColumnWidths()
	return m
}

// SetTransactions replaces the rows and moves the cursor to the top.
func (m *TransactionTable) SetTransactions(transactions []model.Transaction) {
	m.transactions = transactions
	rows := make([]table.Row, 0, len(transactions))
	for _, txn := range transactions {
		rows = append(rows, transactionRow(txn))
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func transactionRow(txn model.Transaction) table.Row {
	failure := ""
	if txn.IsFailed() {
		failure = txn.FailureType.Label()
	}
	timestamp := ""
	if !txn.Timestamp.IsZero() {
		timestamp = txn.Timestamp.Format(timeLayout)
	}
	return table.Row{
		txn.ID,
		txn.FormatAmount(),
		txn.SenderVPA,
		txn.ReceiverVPA,
		string(txn.Status.Normalize()),
		failure,
		timestamp,
	}
}

// Len returns the number of rows.
func (m TransactionTable) Len() int { return len(m.transactions) }

// Cursor returns the highlighted row index.
func (m TransactionTable) Cursor() int { return m.table.Cursor() }

// Selected returns the highlighted transaction.
func (m TransactionTable) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.transactions) {
		return model.Transaction{}, false
	}
	return m.transactions[i], true
}

// Focus enables keyboard navigation.
func (m *TransactionTable) Focus() { m.table.Focus() }

// Blur disables keyboard navigation.
func (m *TransactionTable) Blur() { m.table.Blur() }

// Update moves the cursor.
func (m TransactionTable) Update(msg tea.Msg) (TransactionTable, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Resize updates the component size.
func (m *TransactionTable) Resize(width, height int) {
	m.width = width
	m.height = height
	// header row and its border
	m.table.SetHeight(max(1, height-2))
	m.updateColumnWidths()
}

func (m *TransactionTable) updateColumnWidths() {
	availableWidth := max(m.width-4, 80)

	columns := []table.Column{
		{Title: "Transaction ID", Width: max(10, int(float64(availableWidth)*0.12))},
		{Title: "Amount", Width: max(10, int(float64(availableWidth)*0.11))},
		{Title: "Sender", Width: max(12, int(float64(availableWidth)*0.19))},
		{Title: "Receiver", Width: max(12, int(float64(availableWidth)*0.19))},
		{Title: "Status", Width: max(8, int(float64(availableWidth)*0.08))},
		{Title: "Failure Type", Width: max(12, int(float64(availableWidth)*0.17))},
		{Title: "Time", Width: max(12, int(float64(availableWidth)*0.10))},
	}
	m.table.SetColumns(columns)
}

// View renders the table, or a notice when it is empty.
func (m TransactionTable) View() string {
	if len(m.transactions) == 0 {
		return lipgloss.NewStyle().
			Foreground(m.theme.Muted).
			Padding(1, 2).
			Render("No transactions match the current filters")
	}
	return m.table.View()
}
