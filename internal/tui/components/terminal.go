package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is a scrolling view over the formatted monitor log
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	lines     []string
}

func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(true, true),
	}
}

func (t *Terminal) SetSize(width, height int) {
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

// Append formats e and scrolls to it
func (t *Terminal) Append(e Entry) {
	t.lines = append(t.lines, t.formatter.FormatEntry(e))
	t.sync()
}

// Render replaces the view with entries, used after a display mode change
// or when a TX entry changes status
func (t *Terminal) Render(entries []Entry) {
	t.lines = t.formatter.FormatEntries(entries)
	t.sync()
}

func (t *Terminal) sync() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Terminal) Clear() {
	t.lines = nil
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
}

func (t *Terminal) GetDisplayMode() DisplayMode {
	return t.formatter.GetDisplayMode()
}

func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	// Only pass certain message types to viewport to prevent it from consuming our key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return cmd
	default:
		return nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
