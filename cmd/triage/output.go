package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/cli"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const timeLayout = "2006-01-02 15:04"

// renderTransactions renders a compact table of transactions.
func renderTransactions(transactions []model.Transaction) string {
	rows := make([][]string, 0, len(transactions))
	for _, txn := range transactions {
		failure := ""
		if txn.IsFailed() {
			failure = txn.FailureType.Label()
		}
		when := ""
		if !txn.Timestamp.IsZero() {
			when = txn.Timestamp.Format(timeLayout)
		}
		rows = append(rows, []string{
			txn.ID,
			txn.FormatAmount(),
			txn.SenderVPA,
			txn.ReceiverVPA,
			string(txn.Status.Normalize()),
			failure,
			when,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers("ID", "AMOUNT", "SENDER", "RECEIVER", "STATUS", "FAILURE", "TIME").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			if col == 4 && row >= 0 && row < len(transactions) {
				return style.Inherit(statusStyle(transactions[row].Status))
			}
			return style
		}).
		Render()
}

func statusStyle(status model.Status) lipgloss.Style {
	switch {
	case status.Is(model.StatusSuccess):
		return cli.SuccessStyle
	case status.Is(model.StatusFailed):
		return cli.ErrorStyle
	default:
		return cli.WarningStyle
	}
}

// renderTransaction renders one transaction as key/value pairs.
func renderTransaction(txn model.Transaction) string {
	pairs := [][2]string{
		{"Transaction ID", txn.ID},
		{"Amount", txn.FormatAmount()},
		{"Sender", fmt.Sprintf("%s (%s)", txn.SenderVPA, orDash(txn.SenderBank))},
		{"Receiver", fmt.Sprintf("%s (%s)", txn.ReceiverVPA, orDash(txn.ReceiverBank))},
		{"Status", cli.FormatStatus(txn.Status)},
		{"Timestamp", orDash(txn.Timestamp.String())},
	}
	if txn.IsFailed() {
		pairs = append(pairs,
			[2]string{"Failure Type", txn.FailureType.Label()},
			[2]string{"Failure Reason", orDash(txn.FailureReason)},
			[2]string{"Error Code", orDash(txn.ErrorCode)},
			[2]string{"Retries", fmt.Sprintf("%d", txn.RetryCount)},
		)
	}
	return cli.RenderKeyValues(pairs)
}

// renderDiagnosis renders a diagnosis for the terminal.
func renderDiagnosis(d model.Diagnosis) string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Diagnosis for " + d.TransactionID))
	b.WriteString("\n")
	b.WriteString(cli.BoldStyle.Render(d.FailureType.Label()))
	b.WriteString("  ")
	b.WriteString(cli.FormatConfidence(d))
	b.WriteString("\n\n")
	b.WriteString(d.Diagnosis)
	b.WriteString("\n")

	if d.UserGuidance != "" {
		b.WriteString("\n" + cli.BoldStyle.Render("What to do") + "\n" + d.UserGuidance + "\n")
	}
	if len(d.ResolutionSteps) > 0 {
		b.WriteString("\n" + cli.BoldStyle.Render("Resolution steps") + "\n")
		for i, step := range d.ResolutionSteps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}
	if d.TechnicalDetails != "" {
		b.WriteString("\n" + cli.BoldStyle.Render("Technical details") + "\n" + cli.SubtleStyle.Render(d.TechnicalDetails) + "\n")
	}

	var flags []string
	if d.RetryRecommended {
		flags = append(flags, cli.SuccessStyle.Render("retry recommended"))
	}
	if d.ContactSupport {
		flags = append(flags, cli.WarningStyle.Render("contact support"))
	}
	if d.EstimatedResolutionTime != "" {
		flags = append(flags, "ETA "+d.EstimatedResolutionTime)
	}
	if len(flags) > 0 {
		b.WriteString("\n" + strings.Join(flags, " · ") + "\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
