package ui

import "github.com/charmbracelet/lipgloss"

// Palette and frames for both surfaces. The display mimics the original
// floating overlay: rounded panel, bold title, muted done rows, accented pin.
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	pinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Strikethrough(true)

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)
