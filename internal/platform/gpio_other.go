//go:build !linux

package platform

func newButtonSource(pins map[int]int) (ButtonSource, error) {
	return nil, ErrGPIOUnavailable
}
