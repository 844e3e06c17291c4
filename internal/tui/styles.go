// ABOUTME: Shared lipgloss styles for the diary screens.
// ABOUTME: Colors match across the setup wizard and the entries screen.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	moodStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("108"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	selectedStyle = cardStyle.BorderForeground(lipgloss.Color("212"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	buttonStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("99")).Padding(0, 2)
)
