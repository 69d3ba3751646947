/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/serialhost/internal/tui/components"
	"github.com/allbin/serialhost/internal/tui/keys"
	"github.com/allbin/serialhost/internal/tui/models"
	"github.com/allbin/serialhost/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Interactive terminal with modem line control",
	Long: `Open a serial port in an interactive terminal.

Incoming data is shown with timestamps in hex and ASCII, modem lines are
shown live in the status bar and input line changes are logged. Features:
- vim-like NORMAL/INSERT modes, ASCII or hex sending with history
- toggle DTR (d) and RTS (r), send a break (b), discard input (f)
- hex/ASCII display toggles (h/a), clear (c), help (?)

Example usage:
  serialctl monitor /dev/ttyUSB0
  serialctl monitor /dev/ttyUSB0 --baud 115200 --poll 20ms
  serialctl monitor /dev/ttyACM0 --line-ending crlf`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		poll, _ := cmd.Flags().GetDuration("poll")
		breakDuration, _ := cmd.Flags().GetDuration("break")
		ending, _ := cmd.Flags().GetString("line-ending")

		lineEnding, err := parseLineEnding(ending)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if poll <= 0 || breakDuration <= 0 {
			fmt.Fprintln(os.Stderr, "Error: --poll and --break must be positive")
			os.Exit(1)
		}

		if err := runMonitor(args[0], poll, breakDuration, lineEnding); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.ValidArgsFunction = completePorts(0)

	monitorCmd.Flags().Duration("poll", 50*time.Millisecond, "How often the port is sampled")
	monitorCmd.Flags().Duration("break", 250*time.Millisecond, "Length of a break sent with 'b'")
	monitorCmd.Flags().String("line-ending", "lf", "Appended to ASCII messages: none, lf, cr, crlf")
}

func parseLineEnding(name string) (string, error) {
	switch name {
	case "none", "":
		return "", nil
	case "lf":
		return "\n", nil
	case "cr":
		return "\r", nil
	case "crlf":
		return "\r\n", nil
	default:
		return "", fmt.Errorf("invalid line ending: %s (valid: none, lf, cr, crlf)", name)
	}
}

type breakDoneMsg struct{}

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	*models.SerialModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.MonitorKeys

	poll          time.Duration
	breakDuration time.Duration
}

func runMonitor(portPath string, poll, breakDuration time.Duration, lineEnding string) error {
	s, err := openSession(portPath)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	m := &monitorModel{
		SerialModel:   models.NewSerialModel(s.reg, s.id, portPath),
		terminal:      components.NewTerminal(0, 0),
		statusBar:     components.NewStatusBar(portPath),
		input:         components.NewInput(lineEnding),
		help:          help.New(),
		keys:          keys.NewMonitorKeys(),
		poll:          poll,
		breakDuration: breakDuration,
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()

	if m.Breaking() {
		m.EndBreak()
	}
	if closeErr := m.Close(); err == nil {
		err = closeErr
	}
	return err
}

// sample polls the port off the UI goroutine
func (m *monitorModel) sample() tea.Cmd {
	return func() tea.Msg { return m.Sample() }
}

func (m *monitorModel) Init() tea.Cmd {
	return m.sample()
}

func (m *monitorModel) logError(err error) {
	if err != nil {
		m.terminal.Append(m.AddEvent("error: %v", err))
	}
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// input box (3) + status bar (1) + content border (1) + help (1)
		m.terminal.SetSize(msg.Width, msg.Height-6)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.SetReady(true)
		cmds = append(cmds, m.terminal.Update(msg))

	case tea.MouseMsg:
		cmds = append(cmds, m.terminal.Update(msg))

	case models.SampleMsg:
		for _, e := range m.Apply(msg) {
			m.terminal.Append(e)
		}
		if msg.Err != nil {
			// The port is gone or broken; stop polling and keep the log visible
			m.statusBar.SetError(msg.Err)
			m.logError(msg.Err)
			return m, nil
		}
		m.statusBar.SetConnected(m.PortState(msg))
		cmds = append(cmds, tea.Tick(m.poll, func(time.Time) tea.Msg { return m.Sample() }))

	case models.WriteDoneMsg:
		m.FinishSend(msg)
		m.terminal.Render(m.Entries())
		if msg.Err != nil {
			m.logError(msg.Err)
		}

	case breakDoneMsg:
		m.logError(m.EndBreak())
		m.terminal.Render(m.Entries())

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			return m, m.updateInsert(msg)
		}
		return m, m.updateNormal(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *monitorModel) updateInsert(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.SetInputMode(models.InputModeNormal)
		m.input.Blur()
		return nil

	case key.Matches(msg, m.keys.Enter):
		if m.input.Value() == "" {
			return nil
		}
		data, err := m.input.Payload()
		if err != nil {
			m.logError(err)
			return nil
		}
		write := m.Send(data)
		m.terminal.Render(m.Entries())
		m.input.AddToHistory(m.input.Value())
		m.input.SetValue("")
		return func() tea.Msg { return write() }

	case key.Matches(msg, m.keys.HistoryUp):
		m.input.NavigateHistoryUp()
		return nil

	case key.Matches(msg, m.keys.HistoryDown):
		m.input.NavigateHistoryDown()
		return nil

	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *monitorModel) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.InsertMode):
		m.SetInputMode(models.InputModeInsert)
		m.input.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Clear):
		m.ClearEntries()
		m.terminal.Clear()

	case key.Matches(msg, m.keys.ToggleHex):
		m.terminal.ToggleHex()
		m.terminal.Render(m.Entries())

	case key.Matches(msg, m.keys.ToggleASCII):
		m.terminal.ToggleASCII()
		m.terminal.Render(m.Entries())

	case key.Matches(msg, m.keys.ToggleDTR):
		m.logError(m.ToggleDTR())
		m.terminal.Render(m.Entries())

	case key.Matches(msg, m.keys.ToggleRTS):
		m.logError(m.ToggleRTS())
		m.terminal.Render(m.Entries())

	case key.Matches(msg, m.keys.FlushInput):
		m.logError(m.DiscardInput())
		m.terminal.Render(m.Entries())

	case key.Matches(msg, m.keys.Break):
		if m.Breaking() {
			return nil
		}
		err := m.StartBreak()
		m.terminal.Render(m.Entries())
		if err != nil {
			m.logError(err)
			return nil
		}
		return tea.Tick(m.breakDuration, func(time.Time) tea.Msg { return breakDoneMsg{} })
	}
	return nil
}

func (m *monitorModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		content = m.terminal.View()
	}

	width := m.terminal.Width()
	if width <= 0 {
		width = 80
	}
	m.statusBar.SetWidth(width)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		m.input.View(m.IsInInsertMode()),
		m.statusBar.View(m.IsInInsertMode(), m.input.GetSendingMode().String(), time.Now().Format("15:04:05")),
		m.help.View(m.keys),
	)
}
