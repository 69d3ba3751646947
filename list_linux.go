//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Overridden by tests to point at a fake sysfs tree
var (
	sysfsTTYDir = "/sys/class/tty"
	devDir      = "/dev"
)

// Regular expressions for different types of serial devices
var serialNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
	regexp.MustCompile(`^rfcomm\d+$`), // Bluetooth RFCOMM
}

func isSerialName(name string) bool {
	for _, pattern := range serialNamePatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

func listPorts() ([]PortDescriptor, error) {
	entries, err := os.ReadDir(sysfsTTYDir)
	if err != nil {
		return nil, err
	}

	ports := make([]PortDescriptor, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !isSerialName(name) {
			continue
		}
		if desc, ok := describeTTY(name); ok {
			ports = append(ports, desc)
		}
	}
	return ports, nil
}

// describeTTY inspects /sys/class/tty/<name>. Entries without a backing
// device are skipped, except RFCOMM which is virtual by nature.
func describeTTY(name string) (PortDescriptor, bool) {
	ttyDir := filepath.Join(sysfsTTYDir, name)
	rfcomm := strings.HasPrefix(name, "rfcomm")

	deviceDir, err := filepath.EvalSymlinks(filepath.Join(ttyDir, "device"))
	if err != nil && !rfcomm {
		return PortDescriptor{}, false
	}

	// 8250 driver registers placeholder ttyS entries with no UART behind them
	if strings.HasPrefix(name, "ttyS") && readSysfsFile(filepath.Join(ttyDir, "type")) == "0" {
		return PortDescriptor{}, false
	}

	desc := PortDescriptor{
		Name:        filepath.Join(devDir, name),
		Type:        classifyDevice(name, deviceDir),
		Description: getPortDescription(name),
	}
	if desc.Type == PortTypeUSB {
		desc.USB = readUSBInfo(deviceDir)
		if desc.USB.Product != "" {
			desc.Description = desc.USB.Product
		}
	}
	return desc, true
}

// classifyDevice derives the bus from the resolved sysfs device path.
// USB is checked before PCI because USB host controllers sit on PCI.
func classifyDevice(name, deviceDir string) PortType {
	switch {
	case strings.Contains(deviceDir, "/usb"):
		return PortTypeUSB
	case strings.HasPrefix(name, "rfcomm"), strings.Contains(deviceDir, "/bluetooth"):
		return PortTypeBluetooth
	case strings.Contains(deviceDir, "/pci"):
		return PortTypePCI
	default:
		return PortTypeUnknown
	}
}

// readUSBInfo walks up from the tty's device directory to the USB device
// directory (the first one holding idVendor). The interface directory passed
// on the way supplies bInterfaceNumber.
func readUSBInfo(deviceDir string) *USBInfo {
	info := &USBInfo{}
	dir := deviceDir
	for dir != "/" && dir != "." && dir != "" {
		if info.InterfaceNumber == "" {
			info.InterfaceNumber = readSysfsFile(filepath.Join(dir, "bInterfaceNumber"))
		}
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			info.VendorID = parseHexID(readSysfsFile(filepath.Join(dir, "idVendor")))
			info.ProductID = parseHexID(readSysfsFile(filepath.Join(dir, "idProduct")))
			info.SerialNumber = readSysfsFile(filepath.Join(dir, "serial"))
			info.Manufacturer = readSysfsFile(filepath.Join(dir, "manufacturer"))
			info.Product = readSysfsFile(filepath.Join(dir, "product"))
			info.BusNumber = readSysfsFile(filepath.Join(dir, "busnum"))
			info.DeviceNumber = readSysfsFile(filepath.Join(dir, "devnum"))
			return info
		}
		dir = filepath.Dir(dir)
	}
	return info
}

// readSysfsFile returns the trimmed content of a sysfs attribute, or "" if it
// cannot be read
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// watchDir is where device nodes appear and disappear on hotplug
func watchDir() string {
	return devDir
}
