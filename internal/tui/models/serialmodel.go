package models

import (
	"fmt"
	"time"

	"github.com/allbin/serialhost"
	"github.com/allbin/serialhost/internal/tui/components"
	"github.com/allbin/serialhost/native"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// SampleMsg carries one poll of the port
type SampleMsg struct {
	At      time.Time
	Data    []byte
	Signals serial.ModemSignals
	In, Out uint32
	Err     error
}

// WriteDoneMsg reports the outcome of a transmit started by Send
type WriteDoneMsg struct {
	Index   int
	Written uint32
	Err     error
}

// SerialModel is the port-facing state of the monitor. Sample and Send may
// run off the UI goroutine; everything else must run on it.
type SerialModel struct {
	reg      *native.Registry
	id       native.HandleID
	portPath string

	entries   []components.Entry
	signals   serial.ModemSignals
	sampled   bool
	breaking  bool
	ready     bool
	inputMode InputMode
}

func NewSerialModel(reg *native.Registry, id native.HandleID, portPath string) *SerialModel {
	return &SerialModel{
		reg:      reg,
		id:       id,
		portPath: portPath,
	}
}

func (m *SerialModel) PortPath() string { return m.portPath }

func (m *SerialModel) IsReady() bool { return m.ready }

func (m *SerialModel) SetReady(ready bool) { m.ready = ready }

func (m *SerialModel) Entries() []components.Entry { return m.entries }

func (m *SerialModel) ClearEntries() { m.entries = nil }

func (m *SerialModel) InputMode() InputMode { return m.inputMode }

func (m *SerialModel) SetInputMode(mode InputMode) { m.inputMode = mode }

func (m *SerialModel) IsInInsertMode() bool { return m.inputMode == InputModeInsert }

func (m *SerialModel) Breaking() bool { return m.breaking }

// AddEntry appends e and returns its index
func (m *SerialModel) AddEntry(e components.Entry) int {
	m.entries = append(m.entries, e)
	return len(m.entries) - 1
}

// AddEvent appends a local event line
func (m *SerialModel) AddEvent(format string, args ...any) components.Entry {
	e := components.Entry{
		Timestamp: time.Now(),
		Direction: components.DirectionEvent,
		Text:      fmt.Sprintf(format, args...),
	}
	m.entries = append(m.entries, e)
	return e
}

// Sample reads whatever input is pending and the current line and queue
// state. It does not wait for data.
func (m *SerialModel) Sample() SampleMsg {
	msg := SampleMsg{At: time.Now()}

	if msg.Data, msg.Err = m.reg.ReadToEnd(m.id); msg.Err != nil {
		return msg
	}
	if msg.Signals, msg.Err = m.reg.ModemSignals(m.id); msg.Err != nil {
		return msg
	}
	if msg.In, msg.Err = m.reg.BytesToRead(m.id); msg.Err != nil {
		return msg
	}
	msg.Out, msg.Err = m.reg.BytesToWrite(m.id)
	return msg
}

// Apply folds a sample into the model and returns the log entries it
// produced: received data first, then input line changes
func (m *SerialModel) Apply(msg SampleMsg) []components.Entry {
	var added []components.Entry
	if len(msg.Data) > 0 {
		e := components.Entry{Timestamp: msg.At, Direction: components.DirectionRX, Data: msg.Data}
		m.entries = append(m.entries, e)
		added = append(added, e)
	}
	if msg.Err != nil {
		return added
	}

	if m.sampled {
		changed := msg.Signals.Changed(m.signals)
		for _, c := range []struct {
			mask  serial.SignalMask
			name  string
			level bool
		}{
			{serial.SignalCTS, "CTS", msg.Signals.CTS},
			{serial.SignalDSR, "DSR", msg.Signals.DSR},
			{serial.SignalRI, "RI", msg.Signals.RI},
			{serial.SignalDCD, "DCD", msg.Signals.DCD},
		} {
			if changed&c.mask == 0 {
				continue
			}
			e := components.Entry{
				Timestamp: msg.At,
				Direction: components.DirectionEvent,
				Text:      fmt.Sprintf("%s %s", c.name, levelName(c.level)),
			}
			m.entries = append(m.entries, e)
			added = append(added, e)
		}
	}

	m.signals = msg.Signals
	m.sampled = true
	return added
}

// PortState summarizes the last sample for the status bar
func (m *SerialModel) PortState(msg SampleMsg) components.PortState {
	baud, _ := m.reg.Baud(m.id)
	return components.PortState{
		BaudRate:    baud,
		Signals:     m.signals,
		SignalsOK:   m.sampled,
		Breaking:    m.breaking,
		InputQueue:  msg.In,
		OutputQueue: msg.Out,
	}
}

// Send queues data for transmission and returns a function that performs
// the write, suitable as a tea.Cmd
func (m *SerialModel) Send(data []byte) func() WriteDoneMsg {
	index := m.AddEntry(components.Entry{
		Timestamp: time.Now(),
		Direction: components.DirectionTX,
		Data:      data,
		Status:    components.TXPending,
	})
	return func() WriteDoneMsg {
		n, err := m.reg.WriteAll(m.id, data)
		return WriteDoneMsg{Index: index, Written: n, Err: err}
	}
}

// FinishSend marks the TX entry of msg written or failed
func (m *SerialModel) FinishSend(msg WriteDoneMsg) {
	if msg.Index < 0 || msg.Index >= len(m.entries) {
		return
	}
	if msg.Err != nil {
		m.entries[msg.Index].Status = components.TXFailed
		return
	}
	m.entries[msg.Index].Status = components.TXWritten
}

// ToggleDTR flips the DTR output relative to the last sample
func (m *SerialModel) ToggleDTR() error {
	level := !m.signals.DTR
	if err := m.reg.WriteDataTerminalReady(m.id, level); err != nil {
		return err
	}
	m.signals.DTR = level
	m.AddEvent("DTR %s", levelName(level))
	return nil
}

// ToggleRTS flips the RTS output relative to the last sample
func (m *SerialModel) ToggleRTS() error {
	level := !m.signals.RTS
	if err := m.reg.WriteRequestToSend(m.id, level); err != nil {
		return err
	}
	m.signals.RTS = level
	m.AddEvent("RTS %s", levelName(level))
	return nil
}

// StartBreak asserts break; EndBreak releases it
func (m *SerialModel) StartBreak() error {
	if m.breaking {
		return nil
	}
	if err := m.reg.SetBreak(m.id); err != nil {
		return err
	}
	m.breaking = true
	m.AddEvent("break on")
	return nil
}

func (m *SerialModel) EndBreak() error {
	if !m.breaking {
		return nil
	}
	m.breaking = false
	if err := m.reg.ClearBreak(m.id); err != nil {
		return err
	}
	m.AddEvent("break off")
	return nil
}

// DiscardInput drops everything queued in the input buffer
func (m *SerialModel) DiscardInput() error {
	if err := m.reg.Clear(m.id, serial.ClearInput); err != nil {
		return err
	}
	m.AddEvent("input buffer discarded")
	return nil
}

// Close releases the port
func (m *SerialModel) Close() error {
	return m.reg.Close(m.id)
}

func levelName(level bool) string {
	if level {
		return "HIGH"
	}
	return "LOW"
}
