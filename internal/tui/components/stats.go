package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/analytics"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// StatCard is one headline number.
type StatCard struct {
	Title    string
	Value    string
	Severity string
}

// SummaryCards returns the dashboard headline cards.
func SummaryCards(s analytics.Summary) []StatCard {
	rateSeverity := "success"
	switch {
	case s.Total == 0:
		rateSeverity = "info"
	case s.SuccessRate < 80:
		rateSeverity = "error"
	case s.SuccessRate < 95:
		rateSeverity = "warning"
	}

	return []StatCard{
		{Title: "Total Transactions", Value: fmt.Sprintf("%d", s.Total), Severity: "info"},
		{Title: "Failed", Value: fmt.Sprintf("%d", s.Failed), Severity: "error"},
		{Title: "Success Rate", Value: fmt.Sprintf("%.1f%%", s.SuccessRate), Severity: rateSeverity},
		{Title: "Total Volume", Value: model.FormatINR(s.TotalVolume), Severity: "info"},
	}
}

// RenderStatCards lays the cards out in a row across width.
func RenderStatCards(theme themes.Theme, cards []StatCard, width int) string {
	if len(cards) == 0 {
		return ""
	}
	cardWidth := max(16, width/len(cards)-2)

	rendered := make([]string, 0, len(cards))
	for _, card := range cards {
		body := lipgloss.JoinVertical(
			lipgloss.Left,
			theme.Subtitle.Render(card.Title),
			theme.Severity(card.Severity).Render(card.Value),
		)
		rendered = append(rendered, theme.Card.Width(cardWidth).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RenderFailureChart draws a horizontal bar per failure type.
func RenderFailureChart(theme themes.Theme, stats []analytics.FailureTypeStat, width int) string {
	title := theme.Title.Render("Failure Types")
	if len(stats) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(theme.Muted).Render("No failures in this list"))
	}

	labelWidth := 0
	maxCount := 0
	for _, stat := range stats {
		labelWidth = max(labelWidth, lipgloss.Width(stat.Type.Label())+3)
		maxCount = max(maxCount, stat.Count)
	}
	barWidth := max(10, width-labelWidth-14)

	lines := []string{title}
	for _, stat := range stats {
		label := fmt.Sprintf("%s %s", themes.FailureIcon(stat.Type), stat.Type.Label())
		filled := int(float64(barWidth) * float64(stat.Count) / float64(maxCount))
		line := fmt.Sprintf("%s %s %3d %5.1f%%",
			lipgloss.NewStyle().Width(labelWidth).Render(label),
			Bar(theme, barWidth, filled),
			stat.Count,
			stat.Percentage,
		)
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Bar renders filled cells out of width.
func Bar(theme themes.Theme, width, filled int) string {
	filled = min(max(filled, 0), width)
	return theme.ProgressFull.Render(strings.Repeat("█", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

// RenderRecentFailures lists the most recent failures.
func RenderRecentFailures(theme themes.Theme, failures []model.Transaction) string {
	title := theme.Title.Render("Recent Failures")
	if len(failures) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(theme.Muted).Render("None"))
	}
	lines := []string{title}
	for _, txn := range failures {
		lines = append(lines, fmt.Sprintf("%s %s  %s  %s",
			themes.FailureIcon(txn.FailureType),
			theme.Bold.Render(txn.ID),
			txn.FormatAmount(),
			lipgloss.NewStyle().Foreground(theme.Muted).Render(txn.FailureType.Label()),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
