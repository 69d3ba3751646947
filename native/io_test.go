package native

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/allbin/serialhost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFake(t *testing.T) (*Registry, *fakePort, HandleID) {
	t.Helper()
	reg, port := newTestRegistry()
	id, err := reg.Open(fakePath, 9600)
	require.NoError(t, err)
	return reg, port, id
}

func TestReadNonPositiveLengthSkipsDevice(t *testing.T) {
	reg, port, id := openFake(t)
	port.rx = []byte("pending")

	for _, n := range []int{0, -1} {
		data, err := reg.Read(id, n)
		require.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	}
	assert.Equal(t, 0, port.reads)
}

func TestReadReturnsShortData(t *testing.T) {
	reg, port, id := openFake(t)
	port.rx = []byte("abc")

	data, err := reg.Read(id, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	// Timeout with nothing pending is an empty result
	data, err = reg.Read(id, 10)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadHugeLengthIsCapped(t *testing.T) {
	reg, port, id := openFake(t)
	port.rx = []byte("abc")

	for _, n := range []int{math.MaxInt, math.MaxInt32, 1 << 34} {
		data, err := reg.Read(id, n)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(data), 64*1024)
	}
	assert.Equal(t, 3, port.reads)
}

func TestReadLargeLengthReturnsPending(t *testing.T) {
	reg, port, id := openFake(t)
	port.rx = make([]byte, 100*1024)

	data, err := reg.Read(id, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, data, 64*1024)

	// The rest stays queued for the next read
	in, err := reg.BytesToRead(id)
	require.NoError(t, err)
	assert.Equal(t, uint32(36*1024), in)
}

func TestReadToEndDrainsSnapshot(t *testing.T) {
	reg, port, id := openFake(t)
	port.rx = []byte("hello world")

	data, err := reg.ReadToEnd(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)

	data, err = reg.ReadToEnd(id)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWriteIsSingleCall(t *testing.T) {
	reg, port, id := openFake(t)
	port.maxWrite = 4

	n, err := reg.Write(id, []byte("abcdefgh"))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), n)
	assert.Equal(t, []byte("abcd"), port.tx)
}

func TestWriteReportsBytesSentBeforeError(t *testing.T) {
	reg, port, id := openFake(t)
	port.maxWrite = 3
	port.writeErr = errors.New("EIO")
	port.partialErr = true

	n, err := reg.Write(id, []byte("abcdefgh"))
	require.Error(t, err)
	assert.ErrorIs(t, err, serial.ErrIO)
	assert.Equal(t, uint32(3), n)
	assert.Equal(t, []byte("abc"), port.tx)
}

func TestWriteAllRetriesPartialWrites(t *testing.T) {
	tests := []struct {
		name       string
		maxWrite   int
		zeroWrites int
	}{
		{"single write", 0, 0},
		{"three bytes per call", 3, 0},
		{"one byte per call", 1, 0},
		{"some stalls", 2, 5},
	}

	payload := []byte("the quick brown fox")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, port, id := openFake(t)
			port.maxWrite = tt.maxWrite
			port.zeroWrites = tt.zeroWrites

			n, err := reg.WriteAll(id, payload)
			require.NoError(t, err)
			assert.Equal(t, uint32(len(payload)), n)
			assert.Equal(t, payload, port.tx)
		})
	}
}

func TestWriteAllGivesUpWithoutProgress(t *testing.T) {
	reg, port, id := openFake(t)
	port.zeroWrites = 1000

	_, err := reg.WriteAll(id, []byte("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, serial.ErrIO)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, CodeIO, ErrorCode(err))
}

func TestWriteAllFailsOnDeviceError(t *testing.T) {
	reg, port, id := openFake(t)
	port.writeErr = errors.New("EIO")

	_, err := reg.WriteAll(id, []byte("data"))
	assert.ErrorIs(t, err, serial.ErrIO)
}

func TestByteCountsAndClear(t *testing.T) {
	reg, port, id := openFake(t)
	port.rx = []byte("12345")
	port.outq = 7

	in, err := reg.BytesToRead(id)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), in)
	out, err := reg.BytesToWrite(id)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), out)

	require.NoError(t, reg.Clear(id, serial.ClearAll))

	in, err = reg.BytesToRead(id)
	require.NoError(t, err)
	assert.Zero(t, in)
	out, err = reg.BytesToWrite(id)
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestDrainEmptiesOutputQueue(t *testing.T) {
	reg, port, id := openFake(t)
	port.outq = 12

	require.NoError(t, reg.Drain(id))
	out, err := reg.BytesToWrite(id)
	require.NoError(t, err)
	assert.Zero(t, out)

	require.NoError(t, reg.Close(id))
	assert.ErrorIs(t, reg.Drain(id), serial.ErrInvalidHandle)
}

func TestClearTargets(t *testing.T) {
	tests := []struct {
		target  serial.ClearTarget
		wantIn  uint32
		wantOut uint32
	}{
		{serial.ClearInput, 0, 3},
		{serial.ClearOutput, 2, 0},
		{serial.ClearAll, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			reg, port, id := openFake(t)
			port.rx = []byte("ab")
			port.outq = 3

			require.NoError(t, reg.Clear(id, tt.target))
			in, _ := reg.BytesToRead(id)
			out, _ := reg.BytesToWrite(id)
			assert.Equal(t, tt.wantIn, in)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}
