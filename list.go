package serial

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PortType classifies the bus a serial device hangs off.
// The numeric values are part of the wire format of the native boundary.
type PortType int

const (
	PortTypePCI PortType = iota + 1
	PortTypeUSB
	PortTypeBluetooth
	PortTypeUnknown
)

func (t PortType) String() string {
	switch t {
	case PortTypePCI:
		return "pci"
	case PortTypeUSB:
		return "usb"
	case PortTypeBluetooth:
		return "bluetooth"
	default:
		return "unknown"
	}
}

// USBInfo holds the USB descriptor strings of a USB serial adapter.
// BusNumber, DeviceNumber and InterfaceNumber are only filled on Linux.
type USBInfo struct {
	VendorID        uint16
	ProductID       uint16
	SerialNumber    string
	Manufacturer    string
	Product         string
	InterfaceNumber string
	BusNumber       string
	DeviceNumber    string
}

// PortDescriptor is a snapshot of one serial device found on the system
type PortDescriptor struct {
	Name        string // OS device path, usable with Open
	Type        PortType
	USB         *USBInfo // set only when Type is PortTypeUSB
	Description string
}

// AvailablePorts enumerates the serial devices currently present.
// An empty system yields an empty slice; only a failure of the enumeration
// mechanism itself is an error.
func AvailablePorts() ([]PortDescriptor, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, newError(KindEnumeration, "list ports", "", err)
	}
	if ports == nil {
		ports = []PortDescriptor{}
	}

	// Sort the ports for consistent ordering
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}

// ListPorts returns the device paths of all available serial ports
func ListPorts() ([]string, error) {
	ports, err := AvailablePorts()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(ports))
	for _, p := range ports {
		paths = append(paths, p.Name)
	}
	return paths, nil
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortDescriptor, error) {
	ports, err := AvailablePorts()
	if err != nil {
		return nil, err
	}

	for i := range ports {
		if ports[i].Name == portPath {
			return &ports[i], nil
		}
	}
	return nil, newError(KindEnumeration, "port info", portPath, ErrDeviceNotFound)
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	name = filepath.Base(name)
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "rfcomm"):
		return "Bluetooth RFCOMM Port"
	default:
		return "Serial Port"
	}
}

// parseHexID parses a USB vendor or product id such as "0403" or "0x0403".
// Malformed input yields 0.
func parseHexID(s string) uint16 {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}
