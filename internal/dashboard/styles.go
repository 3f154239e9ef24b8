package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/adminctl/internal/ui"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorMuted).
			Padding(0, 1).
			MarginRight(1)

	CardTitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)

	HintStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true)

	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorAccent).
			Padding(1, 2)
)

// Uptime and error-rate thresholds for the system card.
const (
	UptimeWarning    = 99.9
	UptimeCritical   = 99.0
	ErrorRateWarning = 1.0
	ErrorRateCrit    = 5.0
)

// uptimeColor is green at or above UptimeWarning and red below UptimeCritical.
func uptimeColor(p float64) lipgloss.Color {
	switch {
	case p < UptimeCritical:
		return ui.ColorError
	case p < UptimeWarning:
		return ui.ColorWarning
	default:
		return ui.ColorSuccess
	}
}

func errorRateColor(p float64) lipgloss.Color {
	switch {
	case p >= ErrorRateCrit:
		return ui.ColorError
	case p >= ErrorRateWarning:
		return ui.ColorWarning
	default:
		return ui.ColorSuccess
	}
}
