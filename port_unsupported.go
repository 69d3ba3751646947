//go:build !linux && !darwin && !windows

package serial

import (
	"errors"
	"runtime"
)

var errUnsupportedPlatform = errors.New("serial ports are not supported on " + runtime.GOOS)

func openPort(device string, config Config) (Port, error) {
	return nil, newError(KindOpen, "open", device, errUnsupportedPlatform)
}

func baudRateSupported(rate int) bool {
	return false
}

func retryable(err error) bool {
	return false
}
