package serial

import "io"

// maxWriteStalls bounds how many consecutive writes may make no progress
// before WriteAll gives up
const maxWriteStalls = 16

// maxReadChunk caps the buffer a single read allocates. Larger requests
// simply come back short.
const maxReadChunk = 64 * 1024

// ReadUpTo performs a single read of at most maxLen bytes.
// A short or empty result is not an error; maxLen <= 0 never touches the port.
func ReadUpTo(p Port, maxLen int) ([]byte, error) {
	if maxLen <= 0 {
		return []byte{}, nil
	}

	buf := make([]byte, min(maxLen, maxReadChunk))
	n, err := p.Read(buf)
	if err != nil {
		return buf[:0], wrapIO("read", err)
	}
	return buf[:n], nil
}

// ReadAvailable drains the bytes queued in the OS input buffer at the time of
// the call. It never waits for more data to arrive.
func ReadAvailable(p Port) ([]byte, error) {
	pending, err := p.InputWaiting()
	if err != nil {
		return nil, wrapIO("read", err)
	}

	buf := make([]byte, pending)
	got := 0
	for got < pending {
		n, err := p.Read(buf[got:])
		if err != nil {
			return buf[:got], wrapIO("read", err)
		}
		if n == 0 {
			break
		}
		got += n
	}
	return buf[:got], nil
}

// WriteAll keeps writing until every byte of data has been accepted.
// Interrupted writes are retried; only an OS error or a run of writes that
// make no progress fails the call.
func WriteAll(p Port, data []byte) (int, error) {
	written := 0
	stalls := 0
	for written < len(data) {
		n, err := p.Write(data[written:])
		if n > 0 {
			written += n
			stalls = 0
		}

		switch {
		case err != nil && !retryable(err):
			return written, wrapIO("write", err)
		case n <= 0:
			stalls++
			if stalls >= maxWriteStalls {
				return written, wrapIO("write", io.ErrShortWrite)
			}
		}
	}
	return written, nil
}
