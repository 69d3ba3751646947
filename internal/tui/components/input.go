package components

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/allbin/serialhost/internal/tui/colors"
	"github.com/allbin/serialhost/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxHistory = 100

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

const (
	asciiPlaceholder = "Type message and press Enter to send..."
	hexPlaceholder   = "Enter hex (e.g. 48656C6C6F or 48 65 6C 6C 6F)..."
)

// Input is the send line with ASCII/hex modes and a history
type Input struct {
	textInput     textinput.Model
	sendingMode   SendingMode
	lineEnding    string
	history       []string
	historyIndex  int
	currentInput  string // kept while browsing history
	terminalWidth int
}

// NewInput returns an ASCII-mode input that appends lineEnding to each message
func NewInput(lineEnding string) *Input {
	ti := textinput.New()
	ti.Placeholder = asciiPlaceholder
	ti.CharLimit = 512
	ti.Prompt = ""

	return &Input{
		textInput:    ti,
		lineEnding:   lineEnding,
		historyIndex: -1,
	}
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(1) + space(1)
	usableWidth := width - 6
	if usableWidth < 20 {
		usableWidth = 20
	}
	i.textInput.Width = usableWidth
}

func (i *Input) Focus() { i.textInput.Focus() }

func (i *Input) Blur() { i.textInput.Blur() }

func (i *Input) Value() string { return i.textInput.Value() }

func (i *Input) SetValue(value string) { i.textInput.SetValue(value) }

func (i *Input) GetSendingMode() SendingMode { return i.sendingMode }

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeASCII {
		i.sendingMode = SendingModeHex
		i.textInput.Placeholder = hexPlaceholder
	} else {
		i.sendingMode = SendingModeASCII
		i.textInput.Placeholder = asciiPlaceholder
	}
}

// Payload converts the current value to the bytes to transmit
func (i *Input) Payload() ([]byte, error) {
	value := i.textInput.Value()
	if i.sendingMode == SendingModeHex {
		return ParseHex(value)
	}
	return []byte(value + i.lineEnding), nil
}

// ParseHex decodes space-separated or continuous hex digits. Each group may
// carry a 0x prefix.
func ParseHex(s string) ([]byte, error) {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
	}
	clean := strings.Join(fields, "")
	if clean == "" {
		return nil, fmt.Errorf("empty input")
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(clean))
	}
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

func (i *Input) View(insertMode bool) string {
	promptSymbol, promptColor := ">", colors.Green
	if i.sendingMode == SendingModeHex {
		promptSymbol, promptColor = "#", colors.Yellow
	}
	prompt := lipgloss.NewStyle().Foreground(promptColor).Bold(true).Render(promptSymbol)

	var content string
	if insertMode {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		hint := lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render("Press 'i' to enter insert mode")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	// RoundedBorder and horizontal padding take 4 columns
	width := i.terminalWidth - 4
	if width < 10 {
		width = 10
	}
	style := styles.InputStyle.
		Width(width).
		AlignHorizontal(lipgloss.Left)
	if insertMode {
		style = style.BorderForeground(colors.Green)
	}
	return style.Render(content)
}

// AddToHistory records command unless it is blank or repeats the last one
func (i *Input) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}
	if n := len(i.history); n > 0 && i.history[n-1] == command {
		return
	}

	i.history = append(i.history, command)
	if len(i.history) > maxHistory {
		i.history = i.history[1:]
	}
	i.historyIndex = -1
	i.currentInput = ""
}

func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}

	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

func (i *Input) NavigateHistoryDown() {
	if i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
		return
	}
	i.historyIndex = -1
	i.textInput.SetValue(i.currentInput)
	i.currentInput = ""
}
