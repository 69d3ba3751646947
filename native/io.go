package native

import "github.com/allbin/serialhost"

// BytesToRead returns how many received bytes wait in the OS input buffer
func (r *Registry) BytesToRead(id HandleID) (uint32, error) {
	h, err := r.lookup("bytes to read", id)
	if err != nil {
		return 0, err
	}

	n, err := h.port.InputWaiting()
	if err != nil {
		return 0, portError("bytes to read", h, err)
	}
	return uint32(n), nil
}

// BytesToWrite returns how many bytes wait in the OS output buffer
func (r *Registry) BytesToWrite(id HandleID) (uint32, error) {
	h, err := r.lookup("bytes to write", id)
	if err != nil {
		return 0, err
	}

	n, err := h.port.OutputWaiting()
	if err != nil {
		return 0, portError("bytes to write", h, err)
	}
	return uint32(n), nil
}

// Read performs one read of at most maxLen bytes. When nothing arrives
// within the port's read timeout the result is empty, not an error.
func (r *Registry) Read(id HandleID, maxLen int) ([]byte, error) {
	h, err := r.lookup("read", id)
	if err != nil {
		return nil, err
	}

	data, err := serial.ReadUpTo(h.port, maxLen)
	if err != nil {
		return nil, portError("read", h, err)
	}
	return data, nil
}

// ReadToEnd returns the bytes pending at the time of the call
func (r *Registry) ReadToEnd(id HandleID) ([]byte, error) {
	h, err := r.lookup("read all", id)
	if err != nil {
		return nil, err
	}

	data, err := serial.ReadAvailable(h.port)
	if err != nil {
		return nil, portError("read all", h, err)
	}
	return data, nil
}

// Write performs one write and returns how many bytes the OS accepted.
// A failed write still reports the bytes that went out before the error.
func (r *Registry) Write(id HandleID, p []byte) (uint32, error) {
	h, err := r.lookup("write", id)
	if err != nil {
		return 0, err
	}

	n, err := h.port.Write(p)
	if n < 0 {
		n = 0
	}
	if err != nil {
		return uint32(n), portError("write", h, err)
	}
	return uint32(n), nil
}

// WriteAll writes p completely, retrying partial writes
func (r *Registry) WriteAll(id HandleID, p []byte) (uint32, error) {
	h, err := r.lookup("write all", id)
	if err != nil {
		return 0, err
	}

	n, err := serial.WriteAll(h.port, p)
	if err != nil {
		return uint32(n), portError("write all", h, err)
	}
	return uint32(n), nil
}

// Clear discards the selected OS buffers
func (r *Registry) Clear(id HandleID, target serial.ClearTarget) error {
	h, err := r.lookup("clear", id)
	if err != nil {
		return err
	}

	return portError("clear", h, h.port.Clear(target))
}

// Drain blocks until the OS output buffer has been transmitted
func (r *Registry) Drain(id HandleID) error {
	h, err := r.lookup("drain", id)
	if err != nil {
		return err
	}

	return portError("drain", h, h.port.Drain())
}
