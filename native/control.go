package native

import (
	"fmt"
	"math"

	"github.com/allbin/serialhost"
)

// SetBreak starts transmitting a break condition
func (r *Registry) SetBreak(id HandleID) error {
	h, err := r.lookup("set break", id)
	if err != nil {
		return err
	}
	return portError("set break", h, h.port.SetBreak())
}

// ClearBreak stops transmitting a break condition
func (r *Registry) ClearBreak(id HandleID) error {
	h, err := r.lookup("clear break", id)
	if err != nil {
		return err
	}
	return portError("clear break", h, h.port.ClearBreak())
}

// SetBaudRate changes the line speed of an open port in place
func (r *Registry) SetBaudRate(id HandleID, rate uint32) error {
	h, err := r.lookup("set baud rate", id)
	if err != nil {
		return err
	}

	if rate == 0 || rate > math.MaxInt32 {
		return &serial.Error{
			Kind: serial.KindConfiguration,
			Op:   "set baud rate",
			Path: h.path,
			Err:  fmt.Errorf("%w: %d", serial.ErrInvalidBaudRate, rate),
		}
	}

	if err := h.port.SetBaudRate(int(rate)); err != nil {
		return portError("set baud rate", h, err)
	}
	h.setBaudRate(rate)
	return nil
}

// WriteDataTerminalReady drives the DTR output line
func (r *Registry) WriteDataTerminalReady(id HandleID, level bool) error {
	h, err := r.lookup("write DTR", id)
	if err != nil {
		return err
	}
	return portError("write DTR", h, h.port.SetDTR(level))
}

// WriteRequestToSend drives the RTS output line
func (r *Registry) WriteRequestToSend(id HandleID, level bool) error {
	h, err := r.lookup("write RTS", id)
	if err != nil {
		return err
	}
	return portError("write RTS", h, h.port.SetRTS(level))
}

// ModemSignals samples every modem line at once
func (r *Registry) ModemSignals(id HandleID) (serial.ModemSignals, error) {
	h, err := r.lookup("modem signals", id)
	if err != nil {
		return serial.ModemSignals{}, err
	}

	signals, err := h.port.GetModemSignals()
	if err != nil {
		return serial.ModemSignals{}, portError("modem signals", h, err)
	}
	return signals, nil
}

// ReadClearToSend samples the CTS input line
func (r *Registry) ReadClearToSend(id HandleID) (bool, error) {
	return r.readLine("read CTS", id, func(s serial.ModemSignals) bool { return s.CTS })
}

// ReadDataSetReady samples the DSR input line
func (r *Registry) ReadDataSetReady(id HandleID) (bool, error) {
	return r.readLine("read DSR", id, func(s serial.ModemSignals) bool { return s.DSR })
}

// ReadRingIndicator samples the RI input line
func (r *Registry) ReadRingIndicator(id HandleID) (bool, error) {
	return r.readLine("read RI", id, func(s serial.ModemSignals) bool { return s.RI })
}

// ReadCarrierDetect samples the DCD input line
func (r *Registry) ReadCarrierDetect(id HandleID) (bool, error) {
	return r.readLine("read DCD", id, func(s serial.ModemSignals) bool { return s.DCD })
}

func (r *Registry) readLine(op string, id HandleID, pick func(serial.ModemSignals) bool) (bool, error) {
	h, err := r.lookup(op, id)
	if err != nil {
		return false, err
	}

	signals, err := h.port.GetModemSignals()
	if err != nil {
		return false, portError(op, h, err)
	}
	return pick(signals), nil
}

// Baud returns the line speed recorded for id
func (r *Registry) Baud(id HandleID) (uint32, error) {
	h, err := r.lookup("baud", id)
	if err != nil {
		return 0, err
	}
	return h.BaudRate(), nil
}

// Path returns the device path of id
func (r *Registry) Path(id HandleID) (string, error) {
	h, err := r.lookup("path", id)
	if err != nil {
		return "", err
	}
	return h.path, nil
}
