package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // gray
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))             // yellow
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))             // red
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true) // dim
)
