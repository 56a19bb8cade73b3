// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#6C63FF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#2ECC71")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#F1C40F")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#E74C3C")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#3498DB")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SubtitleStyle is used for secondary headings.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	TriageIcon  = "🩺"
	ChartIcon   = "📊"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the triage icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(TriageIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// FormatStatus colors a transaction status by outcome.
func FormatStatus(status model.Status) string {
	normalized := status.Normalize()
	switch {
	case normalized.Is(model.StatusSuccess):
		return SuccessStyle.Render(string(normalized))
	case normalized.Is(model.StatusFailed):
		return ErrorStyle.Render(string(normalized))
	case normalized.Is(model.StatusPending):
		return WarningStyle.Render(string(normalized))
	default:
		return SubtleStyle.Render(string(normalized))
	}
}

// FormatConfidence renders a diagnosis confidence with its band color.
func FormatConfidence(d model.Diagnosis) string {
	band := d.Confidence()
	text := fmt.Sprintf("%d%% (%s)", d.ConfidencePercent(), band)
	switch band.Severity() {
	case "success":
		return SuccessStyle.Render(text)
	case "warning":
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// RenderKeyValues renders aligned "key: value" lines.
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, pair := range pairs {
		width = max(width, lipgloss.Width(pair[0]))
	}
	var b strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(BoldStyle.Render(fmt.Sprintf("%-*s", width, pair[0])))
		b.WriteString("  ")
		b.WriteString(pair[1])
	}
	return b.String()
}
