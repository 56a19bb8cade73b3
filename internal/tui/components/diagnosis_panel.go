package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/model"
	"github.com/Veraticus/upi-triage/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DiagnosisPanel renders the state of a diagnosis.Flow.
type DiagnosisPanel struct {
	theme    themes.Theme
	spinner  spinner.Model
	progress progress.Model
	width    int
}

// NewDiagnosisPanel creates a panel.
func NewDiagnosisPanel(theme themes.Theme) DiagnosisPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	prog := progress.New(progress.WithDefaultGradient())
	prog.ShowPercentage = false

	return DiagnosisPanel{
		theme:    theme,
		spinner:  s,
		progress: prog,
		width:    60,
	}
}

// Tick starts the loading spinner.
func (p DiagnosisPanel) Tick() tea.Cmd {
	return p.spinner.Tick
}

// Update advances the spinner.
func (p DiagnosisPanel) Update(msg tea.Msg) (DiagnosisPanel, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(tick)
		return p, cmd
	}
	return p, nil
}

// Resize sets the panel width.
func (p *DiagnosisPanel) Resize(width int) {
	p.width = max(width, 30)
	p.progress.Width = min(p.width-6, 40)
}

// View renders flow.
func (p DiagnosisPanel) View(flow *diagnosis.Flow) string {
	txn := flow.Transaction()
	header := lipgloss.JoinVertical(
		lipgloss.Left,
		p.theme.Title.Render("Diagnosis · "+txn.ID),
		p.theme.Subtitle.Render(fmt.Sprintf("%s  %s → %s", txn.FormatAmount(), txn.SenderVPA, txn.ReceiverVPA)),
		"",
	)

	var body string
	switch flow.State() {
	case diagnosis.StateNotNeeded:
		body = p.theme.StatusSuccess.Render("No diagnosis needed") + "\n" +
			p.muted(fmt.Sprintf("This transaction is %s.", txn.Status.Normalize()))
	case diagnosis.StateLoading:
		body = p.renderStages(flow.Stage(), true)
	case diagnosis.StateFailed:
		err := flow.Err()
		body = p.theme.StatusError.Render("Diagnosis failed") + "\n" + err.Message +
			"\n\n" + p.muted("Press r to try again.")
	case diagnosis.StateReady:
		body = p.renderStages(flow.Stage(), false) + "\n\n" + p.renderDiagnosis(*flow.Diagnosis())
	default:
		body = ""
	}

	footer := p.muted("r re-analyze · y copy JSON · esc close")
	return p.theme.RoundedBox.
		Width(p.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body, "", footer))
}

func (p DiagnosisPanel) renderStages(current diagnosis.Stage, loading bool) string {
	lines := make([]string, 0, len(diagnosis.Stages())+1)
	for _, stage := range diagnosis.Stages() {
		var marker string
		switch {
		case stage < current || current == diagnosis.StageComplete:
			marker = p.theme.StatusSuccess.Render("✓")
		case stage == current && loading:
			marker = p.spinner.View()
		case stage == current:
			marker = p.theme.StatusInfo.Render("›")
		default:
			marker = p.muted("·")
		}
		lines = append(lines, marker+" "+stage.Label())
	}
	lines = append(lines, p.progress.ViewAs(current.Progress()))
	return strings.Join(lines, "\n")
}

func (p DiagnosisPanel) renderDiagnosis(d model.Diagnosis) string {
	band := d.Confidence()
	confidence := p.theme.Severity(band.Severity()).
		Render(fmt.Sprintf("%d%% %s confidence", d.ConfidencePercent(), band))

	sections := []string{
		p.theme.Bold.Render(d.FailureType.Label()) + "  " + confidence,
		"",
		d.Diagnosis,
	}

	if d.UserGuidance != "" {
		sections = append(sections, "", p.theme.Bold.Render("What to do"), d.UserGuidance)
	}
	if len(d.ResolutionSteps) > 0 {
		sections = append(sections, "", p.theme.Bold.Render("Resolution steps"))
		for i, step := range d.ResolutionSteps {
			sections = append(sections, fmt.Sprintf("%d. %s", i+1, step))
		}
	}
	if d.TechnicalDetails != "" {
		sections = append(sections, "", p.theme.Bold.Render("Technical details"), p.muted(d.TechnicalDetails))
	}

	var flags []string
	if d.RetryRecommended {
		flags = append(flags, p.theme.StatusSuccess.Render("Retry recommended"))
	}
	if d.ContactSupport {
		flags = append(flags, p.theme.StatusWarning.Render("Contact support"))
	}
	if d.EstimatedResolutionTime != "" {
		flags = append(flags, p.muted("ETA "+d.EstimatedResolutionTime))
	}
	if len(flags) > 0 {
		sections = append(sections, "", strings.Join(flags, " · "))
	}

	return lipgloss.NewStyle().Width(p.width - 6).Render(strings.Join(sections, "\n"))
}

func (p DiagnosisPanel) muted(s string) string {
	return lipgloss.NewStyle().Foreground(p.theme.Muted).Render(s)
}
