package serial

import "time"

// maxReadTimeout is the longest VTIME the termios layer can express
const maxReadTimeout = 255 * 100 * time.Millisecond

// Config holds the configuration for a serial port.
// Framing is always 8 data bits, no parity, one stop bit.
type Config struct {
	BaudRate    int
	ReadTimeout time.Duration // how long Read waits when no byte is pending (100ms steps)
	Exclusive   bool          // refuse further opens of the same device (TIOCEXCL)
	InitialDTR  *bool
	InitialRTS  *bool
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		ReadTimeout: time.Second,
		Exclusive:   true,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if !baudRateSupported(rate) {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithReadTimeout sets how long a read waits for the first byte.
// Zero makes reads return immediately with whatever is pending.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 || timeout > maxReadTimeout || timeout%(100*time.Millisecond) != 0 {
			return ErrInvalidConfig
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithExclusive controls exclusive access to the device
func WithExclusive(exclusive bool) Option {
	return func(c *Config) error {
		c.Exclusive = exclusive
		return nil
	}
}

// WithInitialDTR sets the DTR level applied right after open
func WithInitialDTR(state bool) Option {
	return func(c *Config) error {
		c.InitialDTR = &state
		return nil
	}
}

// WithInitialRTS sets the RTS level applied right after open
func WithInitialRTS(state bool) Option {
	return func(c *Config) error {
		c.InitialRTS = &state
		return nil
	}
}

// readTimeoutTenths converts the timeout into VTIME deciseconds
func (c Config) readTimeoutTenths() uint8 {
	return uint8(c.ReadTimeout / (100 * time.Millisecond))
}
