package components

import (
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// Gated renders content only when session passes gate. A denied gate
// shows fallback, or a styled restricted notice when fallback is nil.
func Gated(theme themes.Theme, session permission.Session, gate permission.Gate, content, fallback func() string) string {
	if fallback == nil {
		fallback = func() string {
			return RestrictedNotice(theme)
		}
	}
	return gate.Render(session, content, fallback)
}

// RestrictedNotice is the generic denial message.
func RestrictedNotice(theme themes.Theme) string {
	return lipgloss.NewStyle().
		Foreground(theme.Muted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render("🔒 " + permission.RestrictedNotice)
}
