// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Terminal styles

package ui

import "github.com/charmbracelet/lipgloss"

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("197"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	delStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)
