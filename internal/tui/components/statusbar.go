package components

import (
	"fmt"

	"github.com/allbin/serialhost"
	"github.com/allbin/serialhost/internal/tui/colors"
	"github.com/allbin/serialhost/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// PortState is what the status bar shows about the open port
type PortState struct {
	BaudRate    uint32
	Signals     serial.ModemSignals
	SignalsOK   bool // false until the first successful sample
	Breaking    bool
	InputQueue  uint32
	OutputQueue uint32
}

type StatusBar struct {
	portPath string
	status   styles.StatusType
	err      error
	width    int
	state    PortState
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		status:   styles.StatusConnecting,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnected(state PortState) {
	sb.status = styles.StatusConnected
	sb.err = nil
	sb.state = state
}

func (sb *StatusBar) SetError(err error) {
	sb.status = styles.StatusError
	sb.err = err
}

func (sb *StatusBar) Err() error {
	return sb.err
}

func (sb *StatusBar) State() PortState {
	return sb.state
}

// line renders one modem line as a lit or dimmed label
func (sb *StatusBar) line(name string, level bool) string {
	switch {
	case !sb.state.SignalsOK:
		return styles.LineUnknownStyle.Render(name)
	case level:
		return styles.LineHighStyle.Render(name)
	default:
		return styles.LineLowStyle.Render(name)
	}
}

// Lines renders the modem line indicators
func (sb *StatusBar) Lines() string {
	s := sb.state.Signals
	return lipgloss.JoinHorizontal(lipgloss.Left,
		sb.line("DTR", s.DTR), " ",
		sb.line("RTS", s.RTS), " ",
		sb.line("CTS", s.CTS), " ",
		sb.line("DSR", s.DSR), " ",
		sb.line("DCD", s.DCD), " ",
		sb.line("RI", s.RI),
	)
}

// View renders the bottom bar: mode, port, lines on the left and
// speed, queues and clock on the right
func (sb *StatusBar) View(insertMode bool, sendingMode, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeStyle := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(colors.Blue).
		Bold(true).
		Padding(0, 1)
	modeText := "NORMAL"
	if insertMode {
		modeStyle = modeStyle.Background(colors.Green)
		modeText = "INSERT"
	}
	mode := modeStyle.Render(modeText)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, port, styles.StatusIndicator(sb.status), divider, sb.Lines()}
	if sb.state.Breaking {
		left = append(left, " ", styles.BreakStyle.Render("BREAK"))
	}
	if insertMode {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	info := fmt.Sprintf("⚡ %d 8N1  in:%d out:%d", sb.state.BaudRate, sb.state.InputQueue, sb.state.OutputQueue)
	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(info)
	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

	spacerWidth := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
