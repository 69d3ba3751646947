package cmd

import (
	"errors"
	"testing"

	"github.com/allbin/serialhost"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignalState(t *testing.T) {
	for _, s := range []string{"high", "HIGH", "on", "true", "1"} {
		got, err := parseSignalState(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}
	for _, s := range []string{"low", "Off", "false", "0"} {
		got, err := parseSignalState(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}

	_, err := parseSignalState("maybe")
	assert.Error(t, err)
}

func TestParseSignalMask(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    serial.SignalMask
		wantErr bool
	}{
		{"default", nil, serial.SignalAll, false},
		{"single", []string{"cts"}, serial.SignalCTS, false},
		{"mixed case", []string{"DSR", " dcd "}, serial.SignalDSR | serial.SignalDCD, false},
		{"cd alias", []string{"cd", "ri"}, serial.SignalDCD | serial.SignalRI, false},
		{"unknown", []string{"cts", "rts"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSignalMask(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLineEnding(t *testing.T) {
	for name, want := range map[string]string{"none": "", "lf": "\n", "cr": "\r", "crlf": "\r\n"} {
		got, err := parseLineEnding(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := parseLineEnding("lfcr")
	assert.Error(t, err)
}

func TestFilterPorts(t *testing.T) {
	ports := []serial.PortDescriptor{
		{Name: "/dev/ttyS0", Type: serial.PortTypePCI},
		{Name: "/dev/ttyUSB0", Type: serial.PortTypeUSB},
		{Name: "/dev/rfcomm0", Type: serial.PortTypeBluetooth},
		{Name: "/dev/ttyAMA0", Type: serial.PortTypeUnknown},
	}

	all, err := filterPorts(ports, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	usb, err := filterPorts(ports, "USB")
	require.NoError(t, err)
	require.Len(t, usb, 1)
	assert.Equal(t, "/dev/ttyUSB0", usb[0].Name)

	bt, err := filterPorts(ports, "bt")
	require.NoError(t, err)
	require.Len(t, bt, 1)
	assert.Equal(t, "/dev/rfcomm0", bt[0].Name)

	_, err = filterPorts(ports, "arm")
	assert.Error(t, err)
}

func TestDescribeSignals(t *testing.T) {
	out := describeSignals("Signal change detected", serial.ModemSignals{CTS: true}, serial.SignalCTS|serial.SignalRI)
	assert.Contains(t, out, "Signal change detected:")
	assert.Contains(t, out, "CTS: HIGH")
	assert.Contains(t, out, "RI:  LOW")
	assert.NotContains(t, out, "DSR")
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "AT·", printable([]byte("AT\r"), 0))
	assert.Equal(t, "ab...", printable([]byte("abcdef"), 2))
}

func TestPortTable(t *testing.T) {
	view := portTable([]serial.PortDescriptor{
		{Name: "/dev/ttyUSB0", Type: serial.PortTypeUSB, Description: "FT232R USB UART",
			USB: &serial.USBInfo{VendorID: 0x0403, ProductID: 0x6001, SerialNumber: "A50285BI"}},
		{Name: "/dev/ttyS0", Type: serial.PortTypePCI, Description: "Standard Serial Port"},
	}).View()

	assert.Contains(t, view, "/dev/ttyUSB0")
	assert.Contains(t, view, "0403:6001")
	assert.Contains(t, view, "A50285BI")
	assert.Contains(t, view, "pci")
}

func TestPortCompletions(t *testing.T) {
	list := func() ([]string, error) {
		return []string{"/dev/ttyACM0", "/dev/ttyUSB0", "/dev/ttyUSB1"}, nil
	}

	got, directive := portCompletions(list, "/dev/ttyUSB")
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyUSB1"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	got, _ = portCompletions(list, "")
	assert.Len(t, got, 3)

	_, directive = portCompletions(func() ([]string, error) { return nil, errors.New("no sysfs") }, "")
	assert.Equal(t, cobra.ShellCompDirectiveError, directive)
}

func TestCompletePortsOnlyAtPosition(t *testing.T) {
	complete := completePorts(1)
	got, directive := complete(sendCmd, nil, "")
	assert.Nil(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveDefault, directive)

	got, directive = complete(sendCmd, []string{"AT", "/dev/ttyS0"}, "")
	assert.Nil(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveDefault, directive)
}
