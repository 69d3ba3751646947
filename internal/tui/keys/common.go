package keys

import "github.com/charmbracelet/bubbles/key"

// Common key bindings used across TUI commands
type CommonKeys struct {
	Quit       key.Binding
	Help       key.Binding
	InsertMode key.Binding
	Escape     key.Binding
}

func NewCommonKeys() CommonKeys {
	return CommonKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "normal mode"),
		),
	}
}

// MonitorKeys adds data display, line control and send bindings
type MonitorKeys struct {
	CommonKeys

	// Display
	Clear       key.Binding
	ToggleHex   key.Binding
	ToggleASCII key.Binding

	// Port control
	ToggleDTR  key.Binding
	ToggleRTS  key.Binding
	Break      key.Binding
	FlushInput key.Binding

	// Insert mode
	Enter          key.Binding
	ToggleSendMode key.Binding
	HistoryUp      key.Binding
	HistoryDown    key.Binding
}

func NewMonitorKeys() MonitorKeys {
	return MonitorKeys{
		CommonKeys: NewCommonKeys(),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear buffer"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		ToggleASCII: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle ascii"),
		),
		ToggleDTR: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle DTR"),
		),
		ToggleRTS: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle RTS"),
		),
		Break: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "send break"),
		),
		FlushInput: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "discard input"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "ascii/hex"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
	}
}

func (k MonitorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.ToggleDTR, k.ToggleRTS, k.Break, k.Quit}
}

func (k MonitorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode},
		{k.Clear, k.ToggleHex, k.ToggleASCII, k.FlushInput},
		{k.ToggleDTR, k.ToggleRTS, k.Break},
		{k.Help, k.Quit},
	}
}
