package main

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))            // cyan
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
)
