package tui

import "github.com/charmbracelet/lipgloss"

// Color constants: the speed view palette.
var (
	colorGreen = lipgloss.Color("#10b981")
	colorCyan  = lipgloss.Color("#06b6d4")
	colorGray  = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f8fafc")
)

// Fragment styles. In-progress figures draw attention; settled ones calm down.
var (
	StyleInProgress     = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSettledSpeed   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleSettledLatency = lipgloss.NewStyle().Foreground(colorWhite)
)

// Utility styles.
var (
	StyleDim     = lipgloss.NewStyle().Foreground(colorGray)
	StyleSpinner = lipgloss.NewStyle().Foreground(colorGray).Faint(true)
)
