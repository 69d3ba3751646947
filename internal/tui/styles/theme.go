package styles

import (
	"github.com/allbin/serialhost/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ContentBorderStyle separates the data view from the title row
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	// Modem line indicators in the status bar
	LineHighStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Green).
			Bold(true)

	LineLowStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)

	LineUnknownStyle = lipgloss.NewStyle().
				Foreground(colors.Surface2).
				Strikethrough(true)

	BreakStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Red).
			Bold(true).
			Padding(0, 1)
)

type StatusType int

const (
	StatusConnected StatusType = iota
	StatusConnecting
	StatusError
)

// StatusIndicator returns the one-character connection marker
func StatusIndicator(status StatusType) string {
	switch status {
	case StatusConnected:
		return lipgloss.NewStyle().Foreground(colors.Green).Render("●")
	case StatusConnecting:
		return lipgloss.NewStyle().Foreground(colors.Yellow).Render("○")
	default:
		return lipgloss.NewStyle().Foreground(colors.Red).Render("✗")
	}
}
