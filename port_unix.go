//go:build linux || darwin

package serial

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// port is the termios implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	fd     int
	path   string
	config Config
	closed bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

func openPort(device string, config Config) (*port, error) {
	// O_NONBLOCK keeps open from waiting on carrier detect; it is cleared
	// once CLOCAL is set.
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, newError(KindOpen, "open", device, openCause(err))
	}

	if err := configurePort(fd, device, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, newError(KindOpen, "open", device, err)
	}

	if config.Exclusive {
		if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
			unix.Close(fd)
			return nil, newError(KindOpen, "open", device, fmt.Errorf("%w: %w", ErrDeviceInUse, err))
		}
	}

	// Apply initial signal states if configured
	if config.InitialRTS != nil {
		if err := setModemBits(fd, unix.TIOCM_RTS, *config.InitialRTS); err != nil {
			unix.Close(fd)
			return nil, newError(KindOpen, "open", device, fmt.Errorf("failed to set initial RTS: %w", err))
		}
	}
	if config.InitialDTR != nil {
		if err := setModemBits(fd, unix.TIOCM_DTR, *config.InitialDTR); err != nil {
			unix.Close(fd)
			return nil, newError(KindOpen, "open", device, fmt.Errorf("failed to set initial DTR: %w", err))
		}
	}

	return &port{
		fd:     fd,
		path:   device,
		config: config,
	}, nil
}

// openCause attaches the matching cause sentinel to an open(2) failure
func openCause(err error) error {
	var cause error
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENODEV):
		cause = ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		cause = ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		cause = ErrDeviceInUse
	default:
		return err
	}
	return fmt.Errorf("%w: %w", cause, err)
}

// configurePort puts the line into raw 8N1 with VMIN=0 and VTIME from config
func configurePort(fd int, device string, config Config) error {
	termios, err := getTermios(fd)
	if err != nil {
		return newError(KindOpen, "open", device, fmt.Errorf("not a terminal device: %w", err))
	}

	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL | unix.HUPCL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = config.readTimeoutTenths()

	if err := setSpeed(termios, config.BaudRate); err != nil {
		return newError(KindConfiguration, "open", device, err)
	}

	if err := setTermios(fd, termios); err != nil {
		return newError(KindConfiguration, "open", device, fmt.Errorf("failed to set termios: %w", err))
	}
	return nil
}

func getModemStatus(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCMGET)
}

// setModemBits raises or drops the given TIOCM bits.
// TIOCMBIS and TIOCMBIC take a pointer to the mask.
func setModemBits(fd int, bits int, on bool) error {
	req := unix.TIOCMBIC
	if on {
		req = unix.TIOCMBIS
	}
	return unix.IoctlSetPointerInt(fd, uint(req), bits)
}

func retryable(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN)
}

// Close closes the serial port
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.Close(p.fd)
	p.closed = true
	if err != nil {
		return newError(KindIO, "close", p.path, err)
	}
	return nil
}

// Read reads data from the serial port.
// A timeout with nothing received returns (0, nil).
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if len(buf) == 0 {
		return 0, nil
	}

	for {
		n, err := unix.Read(p.fd, buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, newError(KindIO, "read", p.path, err)
		}
		return n, nil
	}
}

// Write performs a single write(2); the count may be short
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := unix.Write(p.fd, data)
	if n < 0 {
		n = 0
	}
	if err != nil {
		if retryable(err) {
			return n, err
		}
		return n, newError(KindIO, "write", p.path, err)
	}
	return n, nil
}

func (p *port) InputWaiting() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := inputWaiting(p.fd)
	if err != nil {
		return 0, newError(KindIO, "bytes to read", p.path, err)
	}
	return n, nil
}

func (p *port) OutputWaiting() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := outputWaiting(p.fd)
	if err != nil {
		return 0, newError(KindIO, "bytes to write", p.path, err)
	}
	return n, nil
}

// Clear discards data queued in the selected OS buffers
func (p *port) Clear(target ClearTarget) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := flushBuffers(p.fd, target); err != nil {
		return newError(KindIO, "clear "+target.String(), p.path, err)
	}
	return nil
}

// Drain waits until all output has been transmitted
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := drainOutput(p.fd); err != nil {
		return newError(KindIO, "drain", p.path, err)
	}
	return nil
}

// SetBaudRate changes the line speed in place without reopening
func (p *port) SetBaudRate(rate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	termios, err := getTermios(p.fd)
	if err != nil {
		return newError(KindIO, "set baud rate", p.path, err)
	}
	if err := setSpeed(termios, rate); err != nil {
		return newError(KindConfiguration, "set baud rate", p.path, err)
	}
	if err := setTermios(p.fd, termios); err != nil {
		return newError(KindConfiguration, "set baud rate", p.path, err)
	}

	p.config.BaudRate = rate
	return nil
}

// SetBreak holds the transmit line in the spacing state until ClearBreak
func (p *port) SetBreak() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := unix.IoctlSetInt(p.fd, unix.TIOCSBRK, 0); err != nil {
		return newError(KindIO, "set break", p.path, err)
	}
	return nil
}

func (p *port) ClearBreak() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := unix.IoctlSetInt(p.fd, unix.TIOCCBRK, 0); err != nil {
		return newError(KindIO, "clear break", p.path, err)
	}
	return nil
}

// SetDTR sets the DTR signal state
func (p *port) SetDTR(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := setModemBits(p.fd, unix.TIOCM_DTR, state); err != nil {
		return newError(KindIO, "set DTR", p.path, err)
	}
	return nil
}

// SetRTS manually sets the RTS signal state
// When true, asserts RTS (signals readiness to receive)
// When false, deasserts RTS (signals not ready)
func (p *port) SetRTS(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	if err := setModemBits(p.fd, unix.TIOCM_RTS, state); err != nil {
		return newError(KindIO, "set RTS", p.path, err)
	}
	return nil
}

// GetModemSignals returns current state of all modem control signals
func (p *port) GetModemSignals() (ModemSignals, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ModemSignals{}, ErrPortClosed
	}

	status, err := getModemStatus(p.fd)
	if err != nil {
		return ModemSignals{}, newError(KindIO, "modem status", p.path, err)
	}

	return ModemSignals{
		CTS: status&unix.TIOCM_CTS != 0,
		DSR: status&unix.TIOCM_DSR != 0,
		RI:  status&unix.TIOCM_RI != 0,
		DCD: status&unix.TIOCM_CAR != 0,
		RTS: status&unix.TIOCM_RTS != 0,
		DTR: status&unix.TIOCM_DTR != 0,
	}, nil
}
