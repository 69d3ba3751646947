package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortTypeCodes(t *testing.T) {
	assert.Equal(t, 1, int(PortTypePCI))
	assert.Equal(t, 2, int(PortTypeUSB))
	assert.Equal(t, 3, int(PortTypeBluetooth))
	assert.Equal(t, 4, int(PortTypeUnknown))
	assert.Equal(t, "usb", PortTypeUSB.String())
}

func TestParseHexID(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
	}{
		{"0403", 0x0403},
		{"0x6001", 0x6001},
		{"2341\n", 0x2341},
		{"FFFF", 0xFFFF},
		{"10000", 0},
		{"zz", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseHexID(tt.in))
		})
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"/dev/ttyACM0", "USB CDC/ACM Device"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttyS0", "Standard Serial Port"},
		{"rfcomm0", "Bluetooth RFCOMM Port"},
		{"COM3", "Serial Port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getPortDescription(tt.name))
		})
	}
}
