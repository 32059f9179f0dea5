package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header     lipgloss.Style
	status     lipgloss.Style
	errorLine  lipgloss.Style
	user       lipgloss.Style
	assistant  lipgloss.Style
	live       lipgloss.Style
	panel      lipgloss.Style
	inputPanel lipgloss.Style
	help       lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("#7dd3fc")
	mint := lipgloss.Color("#6ee7b7")
	rose := lipgloss.Color("#fda4af")
	muted := lipgloss.Color("#94a3b8")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1),
		status:    lipgloss.NewStyle().Foreground(muted),
		errorLine: lipgloss.NewStyle().Foreground(rose).Bold(true),
		user:      lipgloss.NewStyle().Foreground(mint).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(accent).Bold(true),
		live:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(muted),
	}
}
