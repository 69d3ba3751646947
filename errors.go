package serial

import "errors"

// Error kinds surfaced by every public operation
var (
	ErrEnumeration   = errors.New("serial port enumeration failed")
	ErrOpen          = errors.New("serial port open failed")
	ErrConfiguration = errors.New("unsupported serial configuration")
	ErrInvalidHandle = errors.New("invalid serial port handle")
	ErrIO            = errors.New("serial I/O failed")
)

// Predefined error causes for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// Kind classifies an error into the taxonomy callers branch on
type Kind int

const (
	KindNone Kind = iota
	KindEnumeration
	KindOpen
	KindConfiguration
	KindInvalidHandle
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindEnumeration:
		return "enumeration"
	case KindOpen:
		return "open"
	case KindConfiguration:
		return "configuration"
	case KindInvalidHandle:
		return "invalid handle"
	case KindIO:
		return "io"
	default:
		return "none"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindEnumeration:
		return ErrEnumeration
	case KindOpen:
		return ErrOpen
	case KindConfiguration:
		return ErrConfiguration
	case KindInvalidHandle:
		return ErrInvalidHandle
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// Error is returned by port, registry and enumeration operations.
// errors.Is matches both the kind sentinel (ErrOpen, ErrIO, ...) and
// whatever cause is wrapped in Err.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if s := e.Kind.sentinel(); s != nil {
		msg += ": " + s.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf reports the kind of err, or KindNone if err is nil or did not come
// from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// wrapIO tags err as an I/O failure unless it already carries a kind.
// ErrPortClosed means the handle is gone, which callers see as an invalid handle.
func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindNone {
		return err
	}
	if errors.Is(err, ErrPortClosed) {
		return newError(KindInvalidHandle, op, "", err)
	}
	return newError(KindIO, op, "", err)
}
