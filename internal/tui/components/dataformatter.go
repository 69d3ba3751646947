package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/serialhost/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// Direction tells where a log entry came from
type Direction int

const (
	DirectionRX Direction = iota
	DirectionTX
	DirectionEvent // line changes, breaks, local errors
)

// TXStatus tracks a transmitted entry
type TXStatus int

const (
	TXPending TXStatus = iota
	TXWritten
	TXFailed
)

// Entry is one line of the monitor log
type Entry struct {
	Timestamp time.Time
	Direction Direction
	Data      []byte
	Status    TXStatus // TX only
	Text      string   // event only
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) indicator(e Entry) string {
	style := lipgloss.NewStyle().Bold(true)
	switch e.Direction {
	case DirectionTX:
		switch e.Status {
		case TXPending:
			return style.Foreground(colors.Yellow).Render("↗ TX ○")
		case TXFailed:
			return style.Foreground(colors.Red).Render("↗ TX ✗")
		default:
			return style.Foreground(colors.Green).Render("↗ TX ✓")
		}
	case DirectionEvent:
		return style.Foreground(colors.Mauve).Render("◆ --")
	default:
		return style.Foreground(colors.Sky).Render("↙ RX")
	}
}

// Printable renders data with non-printable bytes replaced by dots
func Printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) FormatEntry(e Entry) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", e.Timestamp.Format("15:04:05.000")))

	if e.Direction == DirectionEvent {
		text := lipgloss.NewStyle().Foreground(colors.Teal).Render(e.Text)
		return fmt.Sprintf("%s %s: %s", timestamp, df.indicator(e), text)
	}

	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", e.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+Printable(e.Data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(e.Data)))
	}

	return fmt.Sprintf("%s %s: %s", timestamp, df.indicator(e), strings.Join(parts, "  "))
}

func (df *DataFormatter) FormatEntries(entries []Entry) []string {
	formatted := make([]string, len(entries))
	for i, e := range entries {
		formatted[i] = df.FormatEntry(e)
	}
	return formatted
}
