package native

import (
	"sync"

	"github.com/allbin/serialhost"
)

// fakePort is an in-memory serial.Port. Written bytes land in tx; bytes
// queued in rx are what Read returns.
type fakePort struct {
	mu sync.Mutex

	rx   []byte
	tx   []byte
	outq int

	maxWrite   int   // bytes accepted per Write call, 0 = all
	zeroWrites int   // upcoming writes that accept nothing
	writeErr   error // returned by every Write when set
	partialErr bool  // with writeErr, accept maxWrite bytes before failing
	closeErr   error

	signals serial.ModemSignals
	baud    int
	breakOn bool
	closed  bool
	reads   int
}

var _ serial.Port = (*fakePort)(nil)

func (p *fakePort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, serial.ErrPortClosed
	}
	p.reads++
	n := copy(buf, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

func (p *fakePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, serial.ErrPortClosed
	}
	if p.writeErr != nil {
		if p.partialErr && p.maxWrite > 0 {
			n := min(len(data), p.maxWrite)
			p.tx = append(p.tx, data[:n]...)
			return n, p.writeErr
		}
		return 0, p.writeErr
	}
	if p.zeroWrites > 0 {
		p.zeroWrites--
		return 0, nil
	}
	n := len(data)
	if p.maxWrite > 0 && n > p.maxWrite {
		n = p.maxWrite
	}
	p.tx = append(p.tx, data[:n]...)
	return n, nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	p.closed = true
	return p.closeErr
}

func (p *fakePort) InputWaiting() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, serial.ErrPortClosed
	}
	return len(p.rx), nil
}

func (p *fakePort) OutputWaiting() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, serial.ErrPortClosed
	}
	return p.outq, nil
}

func (p *fakePort) Clear(target serial.ClearTarget) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	if target == serial.ClearInput || target == serial.ClearAll {
		p.rx = nil
	}
	if target == serial.ClearOutput || target == serial.ClearAll {
		p.outq = 0
	}
	return nil
}

func (p *fakePort) Drain() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	p.outq = 0
	return nil
}

func (p *fakePort) SetBaudRate(rate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	cfg := serial.DefaultConfig()
	if err := serial.WithBaudRate(rate)(&cfg); err != nil {
		return &serial.Error{Kind: serial.KindConfiguration, Op: "set baud rate", Err: err}
	}
	p.baud = rate
	return nil
}

func (p *fakePort) SetBreak() error   { return p.setBreak(true) }
func (p *fakePort) ClearBreak() error { return p.setBreak(false) }

func (p *fakePort) setBreak(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	p.breakOn = on
	return nil
}

func (p *fakePort) SetDTR(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	p.signals.DTR = state
	return nil
}

func (p *fakePort) SetRTS(state bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ErrPortClosed
	}
	p.signals.RTS = state
	return nil
}

func (p *fakePort) GetModemSignals() (serial.ModemSignals, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return serial.ModemSignals{}, serial.ErrPortClosed
	}
	return p.signals, nil
}

// fakeOpener opens ports from a fixed set, applying options the way
// serial.Open does
func fakeOpener(ports map[string]*fakePort) OpenFunc {
	return func(path string, opts ...serial.Option) (serial.Port, error) {
		cfg := serial.DefaultConfig()
		for _, opt := range opts {
			if err := opt(&cfg); err != nil {
				return nil, &serial.Error{Kind: serial.KindConfiguration, Op: "open", Path: path, Err: err}
			}
		}
		p, ok := ports[path]
		if !ok {
			return nil, &serial.Error{Kind: serial.KindOpen, Op: "open", Path: path, Err: serial.ErrDeviceNotFound}
		}
		p.mu.Lock()
		p.baud = cfg.BaudRate
		p.closed = false
		p.mu.Unlock()
		return p, nil
	}
}

// newTestRegistry returns a registry whose only device is /dev/ttyFAKE0
func newTestRegistry(opts ...RegistryOption) (*Registry, *fakePort) {
	port := &fakePort{}
	opts = append([]RegistryOption{WithOpener(fakeOpener(map[string]*fakePort{"/dev/ttyFAKE0": port}))}, opts...)
	return NewRegistry(opts...), port
}
