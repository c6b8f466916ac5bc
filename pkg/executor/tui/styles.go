package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // Soft pastel salmon pink - primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // Lighter coral accent - secondary
	mintGreen   = lipgloss.Color("#A8E6CF") // Soft mint green - knowledge updates
	mutedGray   = lipgloss.Color("#6B7280") // Muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // Bright white - primary text
)

// Common Styles
var (
	// Text Styles
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	userStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	updateStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Italic(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	// Knowledge panel styles
	panelTitleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	panelCategoryStyle = lipgloss.NewStyle().
				Foreground(coralPink)

	panelEmptyStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	panelHighlightStyle = lipgloss.NewStyle().
				Foreground(mintGreen)

	// Container Styles
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)

	panelBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)
)
