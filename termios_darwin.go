//go:build darwin

package serial

import "golang.org/x/sys/unix"

// Darwin speed constants equal the numeric rate, so the table only guards
// which rates the generic termios interface accepts.
var baudRates = map[int]uint64{
	50:     unix.B50,
	75:     unix.B75,
	110:    unix.B110,
	134:    unix.B134,
	150:    unix.B150,
	200:    unix.B200,
	300:    unix.B300,
	600:    unix.B600,
	1200:   unix.B1200,
	1800:   unix.B1800,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

func baudRateSupported(rate int) bool {
	_, ok := baudRates[rate]
	return ok
}

func getTermios(fd int) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, unix.TIOCGETA)
}

func setTermios(fd int, termios *unix.Termios) error {
	return unix.IoctlSetTermios(fd, unix.TIOCSETA, termios)
}

func setSpeed(termios *unix.Termios, rate int) error {
	speed, ok := baudRates[rate]
	if !ok {
		return ErrInvalidBaudRate
	}
	termios.Ispeed = speed
	termios.Ospeed = speed
	return nil
}

func inputWaiting(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.FIONREAD)
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
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, queue)
}

func drainOutput(fd int) error {
	return unix.IoctlSetInt(fd, unix.TIOCDRAIN, 0)
}
