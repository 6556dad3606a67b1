package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cyfox/internal/input"
)

const (
	gpioRoot       = "/sys/class/gpio"
	gpioSampleTime = 5 * time.Millisecond
)

type sysfsButtonSource struct {
	pins map[input.ButtonID]string // button -> value file path
}

func newButtonSource(pins map[int]int) (ButtonSource, error) {
	if _, err := os.Stat(gpioRoot); err != nil {
		return nil, ErrGPIOUnavailable
	}

	source := &sysfsButtonSource{pins: make(map[input.ButtonID]string)}
	for button, pin := range pins {
		valuePath, err := exportPin(pin)
		if err != nil {
			return nil, fmt.Errorf("export gpio %d: %w", pin, err)
		}
		source.pins[input.ButtonID(button)] = valuePath
	}
	return source, nil
}

// Run samples the pins at a short fixed interval. Buttons are wired with
// pull-ups, so a press reads low; a high-to-low transition is one raw edge.
func (source *sysfsButtonSource) Run(ctx context.Context, offer func(input.Edge)) error {
	ticker := time.NewTicker(gpioSampleTime)
	defer ticker.Stop()

	last := make(map[input.ButtonID]bool, len(source.pins))
	for button := range source.pins {
		last[button] = true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for button, valuePath := range source.pins {
				high, err := readPin(valuePath)
				if err != nil {
					continue
				}
				if !high && last[button] {
					offer(input.Edge{Button: button, At: time.Now()})
				}
				last[button] = high
			}
		}
	}
}

func exportPin(pin int) (string, error) {
	pinDir := filepath.Join(gpioRoot, fmt.Sprintf("gpio%d", pin))
	if _, err := os.Stat(pinDir); err != nil {
		exportPath := filepath.Join(gpioRoot, "export")
		if err := os.WriteFile(exportPath, []byte(strconv.Itoa(pin)), 0o200); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(filepath.Join(pinDir, "direction"), []byte("in"), 0o200); err != nil {
		return "", err
	}
	return filepath.Join(pinDir, "value"), nil
}

func readPin(valuePath string) (bool, error) {
	raw, err := os.ReadFile(valuePath)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(raw)) != "0", nil
}
