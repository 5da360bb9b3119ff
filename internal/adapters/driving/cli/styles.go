package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// palette holds the styles used for command output.
// Styles render plain text when the writer is not a colour terminal.
type palette struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Label:   r.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// severity returns the style for a finding severity.
func (p palette) severity(s domain.Severity) lipgloss.Style {
	if s == domain.SeverityError {
		return p.Error
	}
	return p.Warning
}
