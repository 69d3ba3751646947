package serial

import "io"

// Port represents an open serial device.
//
// There is exactly one implementation per target platform (port_unix.go,
// port_windows.go), chosen at build time. Read follows the configured read
// timeout: it returns whatever is pending, waits up to the timeout when nothing
// is, and reports (0, nil) if the timeout expires.
type Port interface {
	io.ReadWriteCloser

	// Buffer state
	InputWaiting() (int, error)
	OutputWaiting() (int, error)
	Clear(target ClearTarget) error
	Drain() error

	// Line configuration
	SetBaudRate(rate int) error
	SetBreak() error
	ClearBreak() error

	// Modem signal control and monitoring
	SetDTR(state bool) error
	SetRTS(state bool) error
	GetModemSignals() (ModemSignals, error)
}

// ClearTarget selects which OS buffer Clear discards
type ClearTarget int

const (
	ClearInput ClearTarget = iota
	ClearOutput
	ClearAll
)

func (t ClearTarget) String() string {
	switch t {
	case ClearInput:
		return "input"
	case ClearOutput:
		return "output"
	case ClearAll:
		return "all"
	default:
		return "unknown"
	}
}

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}

// SignalMask identifies a set of input signals
type SignalMask int

const (
	SignalCTS SignalMask = 1 << iota
	SignalDSR
	SignalRI
	SignalDCD
)

// SignalAll covers every input signal
const SignalAll = SignalCTS | SignalDSR | SignalRI | SignalDCD

// Changed reports which input signals differ between s and prev
func (s ModemSignals) Changed(prev ModemSignals) SignalMask {
	var changed SignalMask
	if s.CTS != prev.CTS {
		changed |= SignalCTS
	}
	if s.DSR != prev.DSR {
		changed |= SignalDSR
	}
	if s.RI != prev.RI {
		changed |= SignalRI
	}
	if s.DCD != prev.DCD {
		changed |= SignalDCD
	}
	return changed
}

// Open opens a serial port with the given device path and options.
// The port is always configured raw, 8N1.
func Open(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, newError(KindConfiguration, "open", device, err)
		}
	}

	p, err := openPort(device, config)
	if err != nil {
		return nil, err
	}
	return p, nil
}
