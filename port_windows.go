//go:build windows

package serial

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DCB flag bits
const (
	dcbBinary              = 0x00000001
	dcbDTRControlEnable    = 0x00000010
	dcbDTRControlMask      = 0x00000030
	dcbRTSControlEnable    = 0x00001000
	dcbRTSControlMask      = 0x00003000
	dcbAbortOnError        = 0x00004000
	dcbOutxCtsFlow         = 0x00000004
	dcbOutxDsrFlow         = 0x00000008
	dcbInX                 = 0x00000200
	dcbOutX                = 0x00000100
	dcbDsrSensitivity      = 0x00000040
	dcbFlowControlBitsMask = dcbOutxCtsFlow | dcbOutxDsrFlow | dcbInX | dcbOutX | dcbDsrSensitivity
)

// EscapeCommFunction codes
const (
	setRTS   = 3
	clrRTS   = 4
	setDTR   = 5
	clrDTR   = 6
	setBreak = 8
	clrBreak = 9
)

// GetCommModemStatus bits
const (
	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080
)

// PurgeComm flags
const (
	purgeTXClear = 0x0004
	purgeRXClear = 0x0008
)

const maxDWORD = 0xFFFFFFFF

// port is the Win32 communications implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	handle windows.Handle
	path   string
	config Config
	closed bool

	// Last levels requested; SetCommState re-applies them.
	dtr bool
	rts bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

func openPort(device string, config Config) (*port, error) {
	name := device
	if !strings.HasPrefix(name, `\\.\`) {
		name = `\\.\` + name
	}
	path, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, newError(KindOpen, "open", device, err)
	}

	handle, err := windows.CreateFile(
		path,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // exclusive
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, newError(KindOpen, "open", device, openCause(err))
	}

	p := &port{
		handle: handle,
		path:   device,
		config: config,
		dtr:    true,
		rts:    true,
	}
	if config.InitialDTR != nil {
		p.dtr = *config.InitialDTR
	}
	if config.InitialRTS != nil {
		p.rts = *config.InitialRTS
	}

	if err := p.applyState(config.BaudRate); err != nil {
		windows.CloseHandle(handle)
		return nil, newError(KindConfiguration, "open", device, err)
	}
	if err := p.applyTimeouts(); err != nil {
		windows.CloseHandle(handle)
		return nil, newError(KindConfiguration, "open", device, err)
	}
	if err := windows.PurgeComm(handle, purgeRXClear|purgeTXClear); err != nil {
		windows.CloseHandle(handle)
		return nil, newError(KindOpen, "open", device, err)
	}

	return p, nil
}

func openCause(err error) error {
	var cause error
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND), errors.Is(err, windows.ERROR_PATH_NOT_FOUND):
		cause = ErrDeviceNotFound
	case errors.Is(err, windows.ERROR_ACCESS_DENIED), errors.Is(err, windows.ERROR_SHARING_VIOLATION):
		// COM ports carry no per-user ACL; access denied means another handle holds it
		cause = ErrDeviceInUse
	default:
		return err
	}
	return fmt.Errorf("%w: %w", cause, err)
}

func baudRateSupported(rate int) bool {
	return rate > 0
}

func retryable(err error) bool {
	return false
}

// applyState writes a raw 8N1 DCB at rate, keeping the recorded DTR/RTS levels
func (p *port) applyState(rate int) error {
	var dcb windows.DCB
	dcb.DCBlength = uint32(unsafe.Sizeof(dcb))
	if err := windows.GetCommState(p.handle, &dcb); err != nil {
		return err
	}

	dcb.BaudRate = uint32(rate)
	dcb.ByteSize = 8
	dcb.Parity = windows.NOPARITY
	dcb.StopBits = windows.ONESTOPBIT

	dcb.Flags &^= dcbFlowControlBitsMask | dcbDTRControlMask | dcbRTSControlMask | dcbAbortOnError
	dcb.Flags |= dcbBinary
	if p.dtr {
		dcb.Flags |= dcbDTRControlEnable
	}
	if p.rts {
		dcb.Flags |= dcbRTSControlEnable
	}

	if err := windows.SetCommState(p.handle, &dcb); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaudRate, err)
	}
	return nil
}

// applyTimeouts maps the read timeout onto COMMTIMEOUTS: return pending bytes
// at once, otherwise wait up to the timeout for the first one.
func (p *port) applyTimeouts() error {
	timeouts := windows.CommTimeouts{
		ReadIntervalTimeout: maxDWORD,
	}
	if ms := uint32(p.config.ReadTimeout.Milliseconds()); ms > 0 {
		timeouts.ReadTotalTimeoutMultiplier = maxDWORD
		timeouts.ReadTotalTimeoutConstant = ms
	}
	return windows.SetCommTimeouts(p.handle, &timeouts)
}

func (p *port) comStat() (windows.ComStat, error) {
	var errs uint32
	var stat windows.ComStat
	err := windows.ClearCommError(p.handle, &errs, &stat)
	return stat, err
}

func (p *port) escape(op string, code uint32) error {
	if err := windows.EscapeCommFunction(p.handle, code); err != nil {
		return newError(KindIO, op, p.path, err)
	}
	return nil
}

// Close closes the serial port
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	err := windows.CloseHandle(p.handle)
	p.closed = true
	if err != nil {
		return newError(KindIO, "close", p.path, err)
	}
	return nil
}

func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if len(buf) == 0 {
		return 0, nil
	}

	var done uint32
	if err := windows.ReadFile(p.handle, buf, &done, nil); err != nil {
		return int(done), newError(KindIO, "read", p.path, err)
	}
	return int(done), nil
}

func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	var done uint32
	if err := windows.WriteFile(p.handle, data, &done, nil); err != nil {
		return int(done), newError(KindIO, "write", p.path, err)
	}
	return int(done), nil
}

func (p *port) InputWaiting() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	stat, err := p.comStat()
	if err != nil {
		return 0, newError(KindIO, "bytes to read", p.path, err)
	}
	return int(stat.CBInQue), nil
}

func (p *port) OutputWaiting() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	stat, err := p.comStat()
	if err != nil {
		return 0, newError(KindIO, "bytes to write", p.path, err)
	}
	return int(stat.CBOutQue), nil
}

func (p *port) Clear(target ClearTarget) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	flags := uint32(purgeRXClear | purgeTXClear)
	switch target {
	case ClearInput:
		flags = purgeRXClear
	case ClearOutput:
		flags = purgeTXClear
	}
	if err := windows.PurgeComm(p.handle, flags); err != nil {
		return newError(KindIO, "clear "+target.String(), p.path, err)
	}
	return nil
}

func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := windows.FlushFileBuffers(p.handle); err != nil {
		return newError(KindIO, "drain", p.path, err)
	}
	return nil
}

func (p *port) SetBaudRate(rate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	if !baudRateSupported(rate) {
		return newError(KindConfiguration, "set baud rate", p.path, ErrInvalidBaudRate)
	}

	if err := p.applyState(rate); err != nil {
		return newError(KindConfiguration, "set baud rate", p.path, err)
	}
	p.config.BaudRate = rate
	return nil
}

func (p *port) SetBreak() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	return p.escape("set break", setBreak)
}

func (p *port) ClearBreak() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	return p.escape("clear break", clrBreak)
}

func (p *port) SetDTR(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	code := uint32(clrDTR)
	if state {
		code = setDTR
	}
	if err := p.escape("set DTR", code); err != nil {
		return err
	}
	p.dtr = state
	return nil
}

func (p *port) SetRTS(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	code := uint32(clrRTS)
	if state {
		code = setRTS
	}
	if err := p.escape("set RTS", code); err != nil {
		return err
	}
	p.rts = state
	return nil
}

// GetModemSignals samples the input lines; DTR and RTS are the last levels set
func (p *port) GetModemSignals() (ModemSignals, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ModemSignals{}, ErrPortClosed
	}

	var status uint32
	if err := windows.GetCommModemStatus(p.handle, &status); err != nil {
		return ModemSignals{}, newError(KindIO, "modem status", p.path, err)
	}

	return ModemSignals{
		CTS: status&msCTSOn != 0,
		DSR: status&msDSROn != 0,
		RI:  status&msRingOn != 0,
		DCD: status&msRLSDOn != 0,
		RTS: p.rts,
		DTR: p.dtr,
	}, nil
}
