package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/filter"
	"github.com/Veraticus/upi-triage/internal/tui/components"
	"github.com/charmbracelet/lipgloss"
)

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("UPI Failure Triage"),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading transactions..."),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderDashboard renders stats, filters and the transaction table.
func (m Model) renderDashboard() string {
	sections := []string{
		m.renderHeader(),
		components.Gated(m.theme, m.session, analyticsGate, m.renderAnalytics, func() string { return "" }),
		m.renderFilterBar(),
		m.table.View(),
		m.renderPager(),
	}
	if toasts := m.toasts.View(m.theme); toasts != "" {
		sections = append(sections, lipgloss.PlaceHorizontal(m.width-2, lipgloss.Right, toasts))
	}
	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("🩺 UPI Failure Triage")

	source := m.theme.StatusSuccess.Render("● live")
	if m.result.Degraded() {
		source = m.theme.StatusWarning.Render("● " + string(m.result.Source))
	}
	if m.loading {
		source = m.theme.StatusInfo.Render("● refreshing")
	}

	role := "loading permissions"
	if m.session.Loaded() {
		role = string(m.session.Role)
		if role == "" {
			role = "restricted"
		}
	}

	right := lipgloss.NewStyle().Foreground(m.theme.Muted).Render(role) + "  " + source
	gap := max(1, m.width-lipgloss.Width(title)-lipgloss.Width(right)-2)
	return title + strings.Repeat(" ", gap) + right
}

func (m Model) renderAnalytics() string {
	cards := components.RenderStatCards(m.theme, components.SummaryCards(m.report.Summary), m.width-2)

	chartWidth := (m.width - 4) * 3 / 5
	chart := components.Gated(m.theme, m.session, detailGate, func() string {
		return components.RenderFailureChart(m.theme, m.report.FailureTypes, chartWidth)
	}, nil)
	recent := components.RenderRecentFailures(m.theme, m.report.RecentFailures)

	detail := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Width(chartWidth).Render(chart),
		"  ",
		recent,
	)
	return lipgloss.JoinVertical(lipgloss.Left, cards, detail, "")
}

func (m Model) renderFilterBar() string {
	criteria := m.view.Criteria()

	search := m.search.View()
	if m.mode != ModeSearch && m.search.Value() == "" {
		search = lipgloss.NewStyle().Foreground(m.theme.Muted).Render("/ search")
	}

	chip := func(label, value string) string {
		if value == "" || value == filter.All {
			return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(label + ": all")
		}
		return m.theme.StatusInfo.Render(label + ": " + value)
	}

	return strings.Join([]string{
		search,
		chip("status", criteria.Status),
		chip("type", criteria.FailureType),
	}, "   ")
}

func (m Model) renderPager() string {
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(
		fmt.Sprintf("Page %d of %d · %d of %d transactions",
			m.view.CurrentPage(), max(1, m.view.TotalPages()), m.view.Len(), len(m.view.Source())))
}

// renderDiagnosis renders the panel over the dashboard header.
func (m Model) renderDiagnosis() string {
	panel := m.panel.View(m.flow)
	sections := []string{
		m.renderHeader(),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel),
	}
	if toasts := m.toasts.View(m.theme); toasts != "" {
		sections = append(sections, lipgloss.PlaceHorizontal(m.width-2, lipgloss.Right, toasts))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHelp renders the help screen.
func (m Model) renderHelp() string {
	full := m.help
	full.ShowAll = true
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("UPI Failure Triage - Help"),
		"",
		full.View(m.keymap),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press ? or Esc to close help"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.theme.BorderedBox.Render(content))
}

// renderStatusBar renders the bottom status bar.
func (m Model) renderStatusBar() string {
	var mode string
	switch m.mode {
	case ModeSearch:
		mode = "Search"
	case ModeDiagnosis:
		mode = "Diagnosis"
	default:
		mode = "Browse"
	}
	return m.theme.StatusInfo.Render(mode) + "  " + m.help.View(m.keymap)
}
