package result

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header  lipgloss.Style
	space   lipgloss.Style
	border  lipgloss.Style
	column  lipgloss.Style
	cell    lipgloss.Style
	null    lipgloss.Style
	empty   lipgloss.Style
	comment lipgloss.Style
	failure lipgloss.Style
}

func newStyles() styles {
	return styles{
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		space:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		border:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		column:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1),
		cell:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
		null:    lipgloss.NewStyle().Faint(true).Padding(0, 1),
		empty:   lipgloss.NewStyle().Faint(true),
		comment: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}
