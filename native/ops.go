package native

import (
	"encoding/json"
	"fmt"

	"github.com/allbin/serialhost"
)

// Code is the numeric error class reported across the boundary
type Code int

const (
	CodeOK            Code = 0
	CodeEnumeration   Code = 1
	CodeOpen          Code = 2
	CodeConfiguration Code = 3
	CodeInvalidHandle Code = 4
	CodeIO            Code = 5
	CodeUnknown       Code = 255
)

// ErrorCode classifies err for the proxy. Only nil maps to CodeOK.
func ErrorCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	switch serial.KindOf(err) {
	case serial.KindEnumeration:
		return CodeEnumeration
	case serial.KindOpen:
		return CodeOpen
	case serial.KindConfiguration:
		return CodeConfiguration
	case serial.KindInvalidHandle:
		return CodeInvalidHandle
	case serial.KindIO:
		return CodeIO
	default:
		return CodeUnknown
	}
}

// Ops is the flat call surface used by the scripting-side proxy. Arguments
// and results are primitives; ids are the registry's HandleIDs as uint32.
type Ops struct {
	reg *Registry
}

// NewOps exposes reg through the boundary surface
func NewOps(reg *Registry) *Ops {
	return &Ops{reg: reg}
}

// Registry returns the registry behind the surface
func (o *Ops) Registry() *Registry { return o.reg }

type portRecord struct {
	Name     string     `json:"name"`
	PortType int        `json:"port_type"`
	USBInfo  *usbRecord `json:"usb_info,omitempty"`
}

// Descriptor strings the device does not report encode as ""
type usbRecord struct {
	VID          uint16 `json:"vid"`
	PID          uint16 `json:"pid"`
	Manufacturer string `json:"manufacturer"`
	SerialNumber string `json:"serial_number"`
	Product      string `json:"product"`
}

// encodePorts renders descriptors as the JSON array the proxy parses
func encodePorts(ports []serial.PortDescriptor) ([]byte, error) {
	records := make([]portRecord, 0, len(ports))
	for _, p := range ports {
		rec := portRecord{Name: p.Name, PortType: int(p.Type)}
		if p.Type == serial.PortTypeUSB && p.USB != nil {
			rec.USBInfo = &usbRecord{
				VID:          p.USB.VendorID,
				PID:          p.USB.ProductID,
				Manufacturer: p.USB.Manufacturer,
				SerialNumber: p.USB.SerialNumber,
				Product:      p.USB.Product,
			}
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

// AvailablePorts returns the enumerated ports as JSON
func (o *Ops) AvailablePorts() ([]byte, error) {
	ports, err := serial.AvailablePorts()
	if err != nil {
		return nil, err
	}

	data, err := encodePorts(ports)
	if err != nil {
		return nil, &serial.Error{Kind: serial.KindEnumeration, Op: "list ports", Err: err}
	}
	return data, nil
}

// SerialNew opens path at baud and returns the new handle id
func (o *Ops) SerialNew(path string, baud uint32) (uint32, error) {
	id, err := o.reg.Open(path, baud)
	return uint32(id), err
}

// SerialClose releases the handle; the id never resolves again
func (o *Ops) SerialClose(id uint32) error {
	return o.reg.Close(HandleID(id))
}

// SerialRead reads at most n bytes. An empty result means the read timed out.
func (o *Ops) SerialRead(id uint32, n int) ([]byte, error) {
	return o.reg.Read(HandleID(id), n)
}

// SerialReadAll returns the bytes pending at the time of the call
func (o *Ops) SerialReadAll(id uint32) ([]byte, error) {
	return o.reg.ReadToEnd(HandleID(id))
}

// SerialWrite performs one write and returns the accepted byte count
func (o *Ops) SerialWrite(id uint32, p []byte) (uint32, error) {
	return o.reg.Write(HandleID(id), p)
}

// SerialWriteAll writes p completely or fails
func (o *Ops) SerialWriteAll(id uint32, p []byte) (uint32, error) {
	return o.reg.WriteAll(HandleID(id), p)
}

// SerialBytesToRead reports the input queue depth
func (o *Ops) SerialBytesToRead(id uint32) (uint32, error) {
	return o.reg.BytesToRead(HandleID(id))
}

// SerialBytesToWrite reports the output queue depth
func (o *Ops) SerialBytesToWrite(id uint32) (uint32, error) {
	return o.reg.BytesToWrite(HandleID(id))
}

// SerialClear takes 0 (input), 1 (output) or 2 (both)
func (o *Ops) SerialClear(id uint32, clearType uint32) error {
	if clearType > uint32(serial.ClearAll) {
		if _, err := o.reg.lookup("clear", HandleID(id)); err != nil {
			return err
		}
		return &serial.Error{
			Kind: serial.KindConfiguration,
			Op:   "clear",
			Err:  fmt.Errorf("%w: clear type %d", serial.ErrInvalidConfig, clearType),
		}
	}
	return o.reg.Clear(HandleID(id), serial.ClearTarget(clearType))
}

// SerialSetBreak starts a break condition
func (o *Ops) SerialSetBreak(id uint32) error {
	return o.reg.SetBreak(HandleID(id))
}

// SerialClearBreak ends a break condition
func (o *Ops) SerialClearBreak(id uint32) error {
	return o.reg.ClearBreak(HandleID(id))
}

// SerialSetBaudRate changes the line speed without reopening
func (o *Ops) SerialSetBaudRate(id uint32, rate uint32) error {
	return o.reg.SetBaudRate(HandleID(id), rate)
}

// SerialWriteDataTerminalReady drives DTR to level
func (o *Ops) SerialWriteDataTerminalReady(id uint32, level bool) error {
	return o.reg.WriteDataTerminalReady(HandleID(id), level)
}

// SerialWriteRequestToSend drives RTS to level
func (o *Ops) SerialWriteRequestToSend(id uint32, level bool) error {
	return o.reg.WriteRequestToSend(HandleID(id), level)
}

// SerialReadClearToSend samples CTS
func (o *Ops) SerialReadClearToSend(id uint32) (bool, error) {
	return o.reg.ReadClearToSend(HandleID(id))
}

// SerialReadDataSetReady samples DSR
func (o *Ops) SerialReadDataSetReady(id uint32) (bool, error) {
	return o.reg.ReadDataSetReady(HandleID(id))
}

// SerialReadRingIndicator samples RI
func (o *Ops) SerialReadRingIndicator(id uint32) (bool, error) {
	return o.reg.ReadRingIndicator(HandleID(id))
}

// SerialReadCarrierDetect samples DCD
func (o *Ops) SerialReadCarrierDetect(id uint32) (bool, error) {
	return o.reg.ReadCarrierDetect(HandleID(id))
}
