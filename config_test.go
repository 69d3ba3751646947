package serial

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}
	if config.ReadTimeout != time.Second {
		t.Errorf("Expected ReadTimeout 1s, got %v", config.ReadTimeout)
	}
	if !config.Exclusive {
		t.Error("Expected exclusive access by default")
	}
	if config.InitialDTR != nil || config.InitialRTS != nil {
		t.Error("Expected initial signal levels to be left alone by default")
	}
}

func TestWithReadTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"0ms (non-blocking)", 0, false},
		{"100ms (valid)", 100 * time.Millisecond, false},
		{"500ms (valid)", 500 * time.Millisecond, false},
		{"2500ms (valid)", 2500 * time.Millisecond, false},
		{"25500ms (max)", 25500 * time.Millisecond, false},
		{"150ms (not multiple of 100ms)", 150 * time.Millisecond, true},
		{"250ns (not multiple of 100ms)", 250 * time.Nanosecond, true},
		{"25600ms (exceeds max)", 25600 * time.Millisecond, true},
		{"-100ms (negative)", -100 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			opt := WithReadTimeout(tt.timeout)
			err := opt(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithReadTimeout(%v) error = %v, wantErr %v", tt.timeout, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("WithReadTimeout(%v) error = %v, want ErrInvalidConfig", tt.timeout, err)
			}
			if err == nil && config.ReadTimeout != tt.timeout {
				t.Errorf("ReadTimeout = %v, want %v", config.ReadTimeout, tt.timeout)
			}
		})
	}
}

func TestReadTimeoutTenths(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    uint8
	}{
		{0, 0},
		{100 * time.Millisecond, 1},
		{time.Second, 10},
		{25500 * time.Millisecond, 255},
	}

	for _, tt := range tests {
		config := Config{ReadTimeout: tt.timeout}
		if got := config.readTimeoutTenths(); got != tt.want {
			t.Errorf("readTimeoutTenths(%v) = %d, want %d", tt.timeout, got, tt.want)
		}
	}
}

func TestWithBaudRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    int
		wantErr bool
	}{
		{"9600", 9600, false},
		{"115200", 115200, false},
		{"zero", 0, true},
		{"negative", -9600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := WithBaudRate(tt.rate)(&config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WithBaudRate(%d) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidBaudRate) {
					t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
				}
				if config.BaudRate != 9600 {
					t.Errorf("Rejected rate must not change config, got %d", config.BaudRate)
				}
				return
			}
			if config.BaudRate != tt.rate {
				t.Errorf("BaudRate = %d, want %d", config.BaudRate, tt.rate)
			}
		})
	}
}

func TestWithInitialSignals(t *testing.T) {
	config := DefaultConfig()

	if err := WithInitialDTR(false)(&config); err != nil {
		t.Fatalf("WithInitialDTR failed: %v", err)
	}
	if err := WithInitialRTS(true)(&config); err != nil {
		t.Fatalf("WithInitialRTS failed: %v", err)
	}
	if err := WithExclusive(false)(&config); err != nil {
		t.Fatalf("WithExclusive failed: %v", err)
	}

	if config.InitialDTR == nil || *config.InitialDTR {
		t.Errorf("Expected InitialDTR=false, got %v", config.InitialDTR)
	}
	if config.InitialRTS == nil || !*config.InitialRTS {
		t.Errorf("Expected InitialRTS=true, got %v", config.InitialRTS)
	}
	if config.Exclusive {
		t.Error("Expected Exclusive=false")
	}
}
