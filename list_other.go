//go:build !linux

package serial

import (
	"runtime"
	"strings"

	"go.bug.st/serial/enumerator"
)

func listPorts() ([]PortDescriptor, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	ports := make([]PortDescriptor, 0, len(details))
	for _, d := range details {
		desc := PortDescriptor{
			Name:        d.Name,
			Type:        PortTypeUnknown,
			Description: getPortDescription(d.Name),
		}

		switch {
		case d.IsUSB:
			desc.Type = PortTypeUSB
			desc.USB = &USBInfo{
				VendorID:     parseHexID(d.VID),
				ProductID:    parseHexID(d.PID),
				SerialNumber: d.SerialNumber,
				Product:      d.Product,
			}
			if d.Product != "" {
				desc.Description = d.Product
			}
		case strings.Contains(strings.ToLower(d.Name), "bluetooth"):
			desc.Type = PortTypeBluetooth
		}
		ports = append(ports, desc)
	}
	return ports, nil
}

// watchDir is where device nodes appear and disappear on hotplug.
// Windows has none, so watchers fall back to polling.
func watchDir() string {
	if runtime.GOOS == "darwin" {
		return "/dev"
	}
	return ""
}
