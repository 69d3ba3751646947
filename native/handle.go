package native

import (
	"fmt"
	"sync"

	"github.com/allbin/serialhost"
)

// HandleID is the opaque identifier handed across the boundary for an open
// port. It always fits a non-negative int32.
type HandleID uint32

// Handle is one open port owned by a Registry
type Handle struct {
	port serial.Port
	path string

	mu   sync.Mutex
	baud uint32
}

// Port returns the underlying device
func (h *Handle) Port() serial.Port { return h.port }

// Path returns the device path the handle was opened with
func (h *Handle) Path() string { return h.path }

// BaudRate returns the line speed last applied successfully
func (h *Handle) BaudRate() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.baud
}

func (h *Handle) setBaudRate(rate uint32) {
	h.mu.Lock()
	h.baud = rate
	h.mu.Unlock()
}

// invalidHandle is the error for an id that does not resolve
func invalidHandle(op string, id HandleID) error {
	return &serial.Error{
		Kind: serial.KindInvalidHandle,
		Op:   op,
		Err:  fmt.Errorf("no open port with id %d", id),
	}
}
