package tui

import (
	"github.com/charmbracelet/lipgloss"

	"mpvglue/internal/mpv"
)

var (
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	statusStyles = map[statusKind]lipgloss.Style{
		statusIdle:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		statusWaiting:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		statusConnected: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		statusStopping:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		statusFailed:    errorStyle,
	}

	// Terminal renditions of the overlay colours.
	osdLevelStyles = map[string]lipgloss.Style{
		mpv.LevelFatal: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3232")).Bold(true),
		mpv.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#F2777A")),
		mpv.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC66")),
	}
)
