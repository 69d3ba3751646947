package serial

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openLoopback opens the slave side of a fresh pty pair as a serial port.
// Bytes written to the returned master arrive as port input and vice versa.
func openLoopback(t *testing.T, opts ...Option) (Port, *os.File) {
	t.Helper()

	master, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	opts = append([]Option{WithReadTimeout(100 * time.Millisecond)}, opts...)
	port, err := Open(tty.Name(), opts...)
	tty.Close()
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })

	return port, master
}

// waitForInput polls until at least n bytes are queued; pty input goes
// through an asynchronous buffer
func waitForInput(t *testing.T, port Port, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		pending, err := port.InputWaiting()
		return err == nil && pending >= n
	}, 2*time.Second, 10*time.Millisecond)
}

// readMaster reads exactly n bytes from the master side
func readMaster(t *testing.T, master *os.File, n int) []byte {
	t.Helper()
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		buf := make([]byte, n)
		_, err := io.ReadFull(master, buf)
		ch <- result{buf, err}
	}()

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.data
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %d bytes on pty master", n)
		return nil
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/NONEXISTENT_PORT_9000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Contains(t, err.Error(), "/dev/NONEXISTENT_PORT_9000")
}

func TestOpenNonTerminal(t *testing.T) {
	_, err := Open("/dev/null")
	require.Error(t, err)
	assert.Equal(t, KindOpen, KindOf(err))
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(12345))
	require.Error(t, err)
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.ErrorIs(t, err, ErrInvalidBaudRate)

	_, err = Open("/dev/null", WithReadTimeout(150*time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGetBaudRate(t *testing.T) {
	for _, rate := range []int{50, 9600, 115200, 921600, 4000000} {
		_, err := getBaudRate(rate)
		assert.NoError(t, err, "rate %d", rate)
	}
	for _, rate := range []int{0, -1, 12345, 5000000} {
		_, err := getBaudRate(rate)
		assert.ErrorIs(t, err, ErrInvalidBaudRate, "rate %d", rate)
	}
}

func TestLoopbackRoundTrip(t *testing.T) {
	port, master := openLoopback(t)

	_, err := master.Write([]byte("hello"))
	require.NoError(t, err)
	waitForInput(t, port, 5)

	data, err := ReadAvailable(port)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	n, err := WriteAll(port, []byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("world"), readMaster(t, master, 5))

	out, err := port.OutputWaiting()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out, 0)
}

func TestReadTimesOutEmpty(t *testing.T) {
	port, _ := openLoopback(t)

	start := time.Now()
	data, err := ReadUpTo(port, 16)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestReadReturnsPartialData(t *testing.T) {
	port, master := openLoopback(t)

	_, err := master.Write([]byte("abc"))
	require.NoError(t, err)
	waitForInput(t, port, 3)

	data, err := ReadUpTo(port, 64)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestClearDiscardsInput(t *testing.T) {
	port, master := openLoopback(t)

	_, err := master.Write([]byte("stale data"))
	require.NoError(t, err)
	waitForInput(t, port, len("stale data"))

	require.NoError(t, port.Clear(ClearAll))

	pending, err := port.InputWaiting()
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestSetBaudRateInPlace(t *testing.T) {
	port, master := openLoopback(t, WithBaudRate(9600))

	require.NoError(t, port.SetBaudRate(9600))
	_, err := WriteAll(port, []byte("slow"))
	require.NoError(t, err)

	require.NoError(t, port.SetBaudRate(115200))
	_, err = WriteAll(port, []byte("fast"))
	require.NoError(t, err)

	assert.Equal(t, []byte("slowfast"), readMaster(t, master, 8))

	err = port.SetBaudRate(12345)
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestClosedPortOperations(t *testing.T) {
	port, _ := openLoopback(t)
	require.NoError(t, port.Close())

	ops := map[string]func() error{
		"Read":            func() error { _, err := port.Read(make([]byte, 1)); return err },
		"Write":           func() error { _, err := port.Write([]byte("x")); return err },
		"InputWaiting":    func() error { _, err := port.InputWaiting(); return err },
		"OutputWaiting":   func() error { _, err := port.OutputWaiting(); return err },
		"Clear":           func() error { return port.Clear(ClearInput) },
		"Drain":           func() error { return port.Drain() },
		"SetBaudRate":     func() error { return port.SetBaudRate(9600) },
		"SetBreak":        func() error { return port.SetBreak() },
		"ClearBreak":      func() error { return port.ClearBreak() },
		"SetDTR":          func() error { return port.SetDTR(true) },
		"SetRTS":          func() error { return port.SetRTS(true) },
		"GetModemSignals": func() error { _, err := port.GetModemSignals(); return err },
		"Close":           func() error { return port.Close() },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrPortClosed)
		})
	}
}

func TestExclusiveOpen(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("TIOCEXCL does not apply to root")
	}

	master, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	defer master.Close()
	defer tty.Close()

	first, err := Open(tty.Name())
	require.NoError(t, err)
	defer first.Close()

	_, err = Open(tty.Name())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, ErrDeviceInUse)
}
