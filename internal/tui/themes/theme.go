// Package themes holds the dashboard palette.
package themes

import (
	"strings"

	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Selected      lipgloss.Style
	StatusPending lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Code          lipgloss.Style
	Card          lipgloss.Style
	RoundedBox    lipgloss.Style
	ProgressFull  lipgloss.Style
	ProgressEmpty lipgloss.Style
	Box           lipgloss.Style
	BorderedBox   lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Info          lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
}

// Default is the dashboard theme.
var Default = Theme{
	Primary:    lipgloss.Color("#7c3aed"),
	Success:    lipgloss.Color("#10b981"),
	Warning:    lipgloss.Color("#f59e0b"),
	Error:      lipgloss.Color("#ef4444"),
	Info:       lipgloss.Color("#3b82f6"),
	Foreground: lipgloss.Color("#fafafa"),
	Border:     lipgloss.Color("#404040"),
	Muted:      lipgloss.Color("#737373"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Code: lipgloss.NewStyle().
		Background(lipgloss.Color("#262626")).
		Foreground(lipgloss.Color("#e5e5e5")).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#7c3aed")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),

	Box: lipgloss.NewStyle().
		Padding(0, 1),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	RoundedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7c3aed")).
		Padding(1, 2),
	ProgressFull: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7c3aed")),
	ProgressEmpty: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#404040")),

	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusWarning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")).
		Bold(true),
	StatusPending: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
}

// Status returns the style for a transaction status.
func (t Theme) Status(status model.Status) lipgloss.Style {
	switch {
	case status.Is(model.StatusSuccess):
		return t.StatusSuccess
	case status.Is(model.StatusFailed):
		return t.StatusError
	case status.Is(model.StatusPending):
		return t.StatusWarning
	default:
		return t.StatusPending
	}
}

// Severity returns the style for a severity name: success, warning or error.
func (t Theme) Severity(name string) lipgloss.Style {
	switch strings.ToLower(name) {
	case "success":
		return t.StatusSuccess
	case "warning":
		return t.StatusWarning
	case "error":
		return t.StatusError
	default:
		return t.StatusInfo
	}
}

// FailureIcons maps failure types to icons.
var FailureIcons = map[model.FailureType]string{
	model.FailureInsufficientFunds:    "💸",
	model.FailureIncorrectDetails:     "📝",
	model.FailureNetworkIssue:         "📡",
	model.FailureBankServerError:      "🏦",
	model.FailureDailyLimitExceeded:   "⛔",
	model.FailureInvalidVPA:           "❓",
	model.FailureTimeout:              "⏱",
	model.FailureAuthenticationFailed: "🔒",
}

// FailureIcon returns an icon for a failure type.
func FailureIcon(t model.FailureType) string {
	if icon, ok := FailureIcons[t]; ok {
		return icon
	}
	return "•"
}
