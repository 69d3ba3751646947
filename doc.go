// Package serial provides cross-platform access to serial ports: discovery,
// raw 8N1 I/O, line speed, break and modem control lines.
//
// Linux and macOS are driven through termios and ioctl, Windows through the
// Win32 communications API (DCB, COMMTIMEOUTS, EscapeCommFunction).
//
// # Basic Usage
//
// Open a serial port with default configuration (9600 8N1, 1s read timeout):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	// Write everything, then drain whatever has arrived
//	_, err = serial.WriteAll(port, []byte("AT\r\n"))
//	reply, err := serial.ReadAvailable(port)
//
// Read follows the configured read timeout: pending bytes are returned at
// once, otherwise it waits up to the timeout and returns (0, nil).
//
// # Configuration Options
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(115200),
//	    serial.WithReadTimeout(200*time.Millisecond),
//	    serial.WithInitialDTR(false),
//	)
//
// The speed can be changed later without reopening:
//
//	err = port.SetBaudRate(9600)
//
// # Port Discovery
//
//	ports, err := serial.AvailablePorts()
//	for _, p := range ports {
//	    fmt.Printf("%s %s %s\n", p.Name, p.Type, p.Description)
//	    if p.USB != nil {
//	        fmt.Printf("  %04x:%04x %s\n", p.USB.VendorID, p.USB.ProductID, p.USB.SerialNumber)
//	    }
//	}
//
// WatchPorts delivers a fresh list whenever devices are plugged or unplugged.
//
// # Modem Signals
//
//	signals, err := port.GetModemSignals()
//	fmt.Printf("CTS=%v DSR=%v DCD=%v RI=%v\n",
//	    signals.CTS, signals.DSR, signals.DCD, signals.RI)
//
//	err = port.SetRTS(true)
//	err = port.SetDTR(false)
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind. errors.Is matches both the kind
// sentinel and the underlying cause:
//
//	_, err := serial.Open("/dev/ttyUSB9")
//	errors.Is(err, serial.ErrOpen)           // true
//	errors.Is(err, serial.ErrDeviceNotFound) // true
//
// # USB Device Management (Linux)
//
//	err := serial.ResetUSBDevice("/dev/ttyUSB0")
//	err = serial.ResetUSBDeviceBySerial("FT123456")
//
// Requires usbreset utility from usbutils package and root/sudo permissions.
package serial
