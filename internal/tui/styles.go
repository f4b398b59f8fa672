package tui

import "github.com/charmbracelet/lipgloss"

var (
	subtleFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	accentFg = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"}
	pausedFg = lipgloss.AdaptiveColor{Light: "#A67C00", Dark: "#ECFD65"}
	errorFg  = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1)

	playingStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(pausedFg).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(subtleFg)
	speedStyle   = lipgloss.NewStyle().Foreground(accentFg)
	textStyle    = lipgloss.NewStyle().Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorFg)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtleFg)
)
