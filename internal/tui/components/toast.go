package components

import (
	"time"

	"github.com/Veraticus/upi-triage/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// ToastDuration is how long a toast stays up.
const ToastDuration = 4 * time.Second

// maxToasts bounds the visible stack.
const maxToasts = 3

// ToastKind selects the toast color.
type ToastKind int

// Toast kinds.
const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// Toast is a transient notification.
type Toast struct {
	Message string
	ID      int
	Kind    ToastKind
}

// Toasts is a bounded stack of notifications, newest last.
type Toasts struct {
	items  []Toast
	nextID int
}

// Push adds a toast and returns its id. The oldest toast is dropped when
// the stack is full.
func (t *Toasts) Push(kind ToastKind, message string) int {
	t.nextID++
	t.items = append(t.items, Toast{ID: t.nextID, Kind: kind, Message: message})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
	return t.nextID
}

// Dismiss removes the toast with id.
func (t *Toasts) Dismiss(id int) {
	for i, toast := range t.items {
		if toast.ID == id {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return
		}
	}
}

// Items returns the visible toasts.
func (t Toasts) Items() []Toast {
	return t.items
}

// View renders the stack.
func (t Toasts) View(theme themes.Theme) string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, toast := range t.items {
		var style lipgloss.Style
		switch toast.Kind {
		case ToastSuccess:
			style = theme.StatusSuccess
		case ToastError:
			style = theme.StatusError
		default:
			style = theme.StatusInfo
		}
		lines = append(lines, theme.Card.BorderForeground(style.GetForeground()).Render(style.Render(toast.Message)))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}
