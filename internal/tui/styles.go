package tui

import "github.com/charmbracelet/lipgloss"

// Palette
const (
	ColorBorder = "#3A3F55" // Grey-blue

	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7" // purple-tinted grey
	ColorDisabledText  = "#6D7383"
	ColorHelpText      = "240"

	ColorAccentMain   = "#7C3AED" // Logo, active borders
	ColorAccentBright = "#A78BFA" // Highlights, the big clock

	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentBright)).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Bold(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDisabledText))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Italic(true)

	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorAccentMain)).
			Padding(1, 2)
)

// logoLines is the block-letter banner shown in the menu and the timer.
var logoLines = []string{
	"████████╗ █████╗ ██╗     ██╗  ██╗   ██╗",
	"╚══██╔══╝██╔══██╗██║     ██║  ╚██╗ ██╔╝",
	"   ██║   ███████║██║     ██║   ╚████╔╝ ",
	"   ██║   ██╔══██║██║     ██║    ╚██╔╝  ",
	"   ██║   ██║  ██║███████╗███████╗██║   ",
	"   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝   ",
}
