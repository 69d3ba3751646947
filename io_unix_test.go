//go:build linux || darwin

package serial

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// scriptedPort replays a fixed sequence of write results
type scriptedPort struct {
	Port // unused methods panic

	writes  []writeResult
	written []byte
	rx      []byte
	reads   int
}

type writeResult struct {
	n   int
	err error
}

func (p *scriptedPort) Write(data []byte) (int, error) {
	if len(p.writes) == 0 {
		p.written = append(p.written, data...)
		return len(data), nil
	}
	r := p.writes[0]
	p.writes = p.writes[1:]
	if r.n > len(data) {
		r.n = len(data)
	}
	p.written = append(p.written, data[:r.n]...)
	return r.n, r.err
}

func (p *scriptedPort) Read(buf []byte) (int, error) {
	p.reads++
	n := copy(buf, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

func (p *scriptedPort) InputWaiting() (int, error) {
	return len(p.rx), nil
}

func TestWriteAll(t *testing.T) {
	payload := []byte("0123456789")

	tests := []struct {
		name   string
		writes []writeResult
	}{
		{"one shot", nil},
		{"partial writes", []writeResult{{3, nil}, {3, nil}, {3, nil}}},
		{"interrupted", []writeResult{{0, unix.EINTR}, {5, nil}}},
		{"would block", []writeResult{{2, unix.EAGAIN}, {0, unix.EAGAIN}, {4, nil}}},
		{"a few stalls", []writeResult{{0, nil}, {0, nil}, {0, nil}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPort{writes: tt.writes}
			n, err := WriteAll(p, payload)
			require.NoError(t, err)
			assert.Equal(t, len(payload), n)
			assert.Equal(t, payload, p.written)
		})
	}
}

func TestWriteAllStallsOut(t *testing.T) {
	writes := make([]writeResult, maxWriteStalls)
	writes[0] = writeResult{n: 2}
	for i := 1; i < len(writes); i++ {
		writes[i] = writeResult{n: 0}
	}
	writes = append(writes, writeResult{n: 0})

	p := &scriptedPort{writes: writes}
	n, err := WriteAll(p, []byte("abcdef"))
	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriteAllHardError(t *testing.T) {
	eio := errors.New("input/output error")
	p := &scriptedPort{writes: []writeResult{{1, nil}, {0, eio}}}

	n, err := WriteAll(p, []byte("abc"))
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, eio)
}

func TestWriteAllClosedPort(t *testing.T) {
	p := &scriptedPort{writes: []writeResult{{0, ErrPortClosed}}}
	_, err := WriteAll(p, []byte("abc"))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestReadUpTo(t *testing.T) {
	p := &scriptedPort{rx: []byte("abcdef")}

	data, err := ReadUpTo(p, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, 0, p.reads)

	data, err = ReadUpTo(p, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	data, err = ReadUpTo(p, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("ef"), data)
}

func TestReadAvailable(t *testing.T) {
	p := &scriptedPort{rx: []byte("snapshot")}

	data, err := ReadAvailable(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), data)

	data, err = ReadAvailable(p)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
	assert.Equal(t, 1, p.reads)
}

func TestModemSignalsChanged(t *testing.T) {
	tests := []struct {
		name string
		prev ModemSignals
		cur  ModemSignals
		want SignalMask
	}{
		{"no change", ModemSignals{CTS: true}, ModemSignals{CTS: true}, 0},
		{"CTS", ModemSignals{}, ModemSignals{CTS: true}, SignalCTS},
		{"DSR and DCD", ModemSignals{DSR: true}, ModemSignals{DCD: true}, SignalDSR | SignalDCD},
		{"all inputs", ModemSignals{}, ModemSignals{CTS: true, DSR: true, RI: true, DCD: true}, SignalAll},
		{"outputs ignored", ModemSignals{}, ModemSignals{RTS: true, DTR: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cur.Changed(tt.prev))
		})
	}
}
