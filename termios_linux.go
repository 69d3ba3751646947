//go:build linux

package serial

import "golang.org/x/sys/unix"

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

func baudRateSupported(rate int) bool {
	_, err := getBaudRate(rate)
	return err == nil
}

func getTermios(fd int) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, unix.TCGETS)
}

func setTermios(fd int, termios *unix.Termios) error {
	return unix.IoctlSetTermios(fd, unix.TCSETS, termios)
}

// setSpeed writes the rate into CBAUD and both speed fields
func setSpeed(termios *unix.Termios, rate int) error {
	baudRate, err := getBaudRate(rate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate
	return nil
}

func inputWaiting(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCINQ)
}

func outputWaiting(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCOUTQ)
}

func flushBuffers(fd int, target ClearTarget) error {
	queue := unix.TCIOFLUSH
	switch target {
	case ClearInput:
		queue = unix.TCIFLUSH
	case ClearOutput:
		queue = unix.TCOFLUSH
	}
	return unix.IoctlSetInt(fd, unix.TCFLSH, queue)
}

func drainOutput(fd int) error {
	// TCSBRK with a non-zero argument waits for output without sending a break
	return unix.IoctlSetInt(fd, unix.TCSBRK, 1)
}
