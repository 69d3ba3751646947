package serial

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// reenumerateDelay is how long a reset device usually needs to come back
const reenumerateDelay = 2 * time.Second

// ResetUSBDevice performs a USB-level reset of the device behind portPath.
// This can recover hardware that is in a hung/unresponsive state.
//
// Requires the usbreset utility (usbutils) and usually root. Returns
// ErrUSBResetNotAvailable when usbreset is missing and ErrUSBInfoNotAvailable
// when the port is not USB or sysfs lacks its bus/device numbers.
func ResetUSBDevice(portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	usbPath, err := usbResetPath(info)
	if err != nil {
		return err
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	cmd := exec.Command("usbreset", usbPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	time.Sleep(reenumerateDelay)
	return nil
}

// ResetUSBDeviceBySerial resets a USB device by its serial number.
// Useful when device paths change after reboot or when multiple devices are connected.
func ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := AvailablePorts()
	if err != nil {
		return err
	}

	if p := findBySerial(ports, serialNumber); p != nil {
		return ResetUSBDevice(p.Name)
	}
	return fmt.Errorf("device with serial %s not found: %w", serialNumber, ErrDeviceNotFound)
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}

// usbResetPath builds the zero-padded BBB/DDD argument usbreset expects
func usbResetPath(info *PortDescriptor) (string, error) {
	if info.USB == nil || info.USB.BusNumber == "" || info.USB.DeviceNumber == "" {
		return "", ErrUSBInfoNotAvailable
	}

	bus, err := strconv.Atoi(info.USB.BusNumber)
	if err != nil {
		return "", fmt.Errorf("%w: bus number %q", ErrUSBInfoNotAvailable, info.USB.BusNumber)
	}
	dev, err := strconv.Atoi(info.USB.DeviceNumber)
	if err != nil {
		return "", fmt.Errorf("%w: device number %q", ErrUSBInfoNotAvailable, info.USB.DeviceNumber)
	}
	return fmt.Sprintf("%03d/%03d", bus, dev), nil
}

func findBySerial(ports []PortDescriptor, serialNumber string) *PortDescriptor {
	for i := range ports {
		if ports[i].USB != nil && ports[i].USB.SerialNumber == serialNumber {
			return &ports[i]
		}
	}
	return nil
}
