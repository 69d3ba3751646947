package native

import (
	"testing"

	"github.com/allbin/serialhost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBaudRateWithoutReopen(t *testing.T) {
	reg, port, id := openFake(t)

	require.NoError(t, reg.SetBaudRate(id, 9600))
	_, err := reg.WriteAll(id, []byte("slow"))
	require.NoError(t, err)

	require.NoError(t, reg.SetBaudRate(id, 115200))
	_, err = reg.WriteAll(id, []byte("fast"))
	require.NoError(t, err)

	assert.Equal(t, 115200, port.baud)
	assert.Equal(t, []byte("slowfast"), port.tx)
	baud, err := reg.Baud(id)
	require.NoError(t, err)
	assert.Equal(t, uint32(115200), baud)
	assert.Equal(t, 1, reg.Len())
}

func TestSetBaudRateRejectsInvalidRate(t *testing.T) {
	reg, _, id := openFake(t)

	err := reg.SetBaudRate(id, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, serial.ErrConfiguration)
	assert.Equal(t, CodeConfiguration, ErrorCode(err))

	baud, err := reg.Baud(id)
	require.NoError(t, err)
	assert.Equal(t, uint32(9600), baud, "failed change must keep the old rate")
}

func TestBreak(t *testing.T) {
	reg, port, id := openFake(t)

	require.NoError(t, reg.SetBreak(id))
	assert.True(t, port.breakOn)
	require.NoError(t, reg.ClearBreak(id))
	assert.False(t, port.breakOn)
}

func TestOutputLines(t *testing.T) {
	reg, port, id := openFake(t)

	require.NoError(t, reg.WriteDataTerminalReady(id, true))
	require.NoError(t, reg.WriteRequestToSend(id, false))
	assert.True(t, port.signals.DTR)
	assert.False(t, port.signals.RTS)

	require.NoError(t, reg.WriteDataTerminalReady(id, false))
	require.NoError(t, reg.WriteRequestToSend(id, true))

	signals, err := reg.ModemSignals(id)
	require.NoError(t, err)
	assert.False(t, signals.DTR)
	assert.True(t, signals.RTS)
}

func TestInputLines(t *testing.T) {
	tests := []struct {
		name string
		set  serial.ModemSignals
		read func(*Registry, HandleID) (bool, error)
	}{
		{"CTS", serial.ModemSignals{CTS: true}, (*Registry).ReadClearToSend},
		{"DSR", serial.ModemSignals{DSR: true}, (*Registry).ReadDataSetReady},
		{"RI", serial.ModemSignals{RI: true}, (*Registry).ReadRingIndicator},
		{"DCD", serial.ModemSignals{DCD: true}, (*Registry).ReadCarrierDetect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, port, id := openFake(t)

			level, err := tt.read(reg, id)
			require.NoError(t, err)
			assert.False(t, level)

			port.signals = tt.set
			level, err = tt.read(reg, id)
			require.NoError(t, err)
			assert.True(t, level)
		})
	}
}

func TestPath(t *testing.T) {
	reg, _, id := openFake(t)
	path, err := reg.Path(id)
	require.NoError(t, err)
	assert.Equal(t, fakePath, path)
}
