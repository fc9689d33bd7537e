package tui

import (
	"github.com/charmbracelet/lipgloss"

	"itlalogin/login"
)

// Palette follows the ITLA brand blue.
var (
	colorPrimary = lipgloss.Color("#003876")
	colorMuted   = lipgloss.Color("#6c757d")
	colorDanger  = lipgloss.Color("#dc3545")
	colorSuccess = lipgloss.Color("#198754")
	colorInfo    = lipgloss.Color("#0dcaf0")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorPrimary).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorPrimary).
			Padding(0, 3)

	buttonDisabledStyle = lipgloss.NewStyle().Foreground(colorMuted)

	spinnerStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted)

	alertBase = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func alertColor(kind login.AlertKind) lipgloss.Color {
	switch kind {
	case login.AlertSuccess:
		return colorSuccess
	case login.AlertInfo:
		return colorInfo
	default:
		return colorDanger
	}
}

func alertIcon(kind login.AlertKind) string {
	if kind == login.AlertSuccess {
		return "✔"
	}
	return "⚠"
}

// renderAlert draws a bordered banner coloured by kind.
func renderAlert(kind login.AlertKind, text string) string {
	c := alertColor(kind)
	return alertBase.
		BorderForeground(c).
		Foreground(c).
		Render(alertIcon(kind) + " " + text)
}
