// Package platform holds the hardware-facing glue: GPIO button sampling on
// the device and a single-instance guard. Off-device builds fall back to
// simulation, where presses come from the preview window instead.
package platform

import (
	"context"
	"errors"

	"cyfox/internal/input"
)

// ErrGPIOUnavailable indicates no GPIO hardware is present on this system.
var ErrGPIOUnavailable = errors.New("gpio unavailable")

// ButtonSource reads raw press edges from GPIO pins.
type ButtonSource interface {
	// Run polls the pins until ctx is done, calling offer for every raw
	// falling edge. Debouncing happens downstream in the input source.
	Run(ctx context.Context, offer func(input.Edge)) error
}

// NewButtonSource returns a ButtonSource for the configured pins, mapping
// logical button number to GPIO pin, or ErrGPIOUnavailable when the system
// has no GPIO.
func NewButtonSource(pins map[int]int) (ButtonSource, error) {
	return newButtonSource(pins)
}
