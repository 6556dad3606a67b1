package input

import "time"

// ButtonID identifies one of the four physical buttons.
type ButtonID int

const (
	Button1 ButtonID = 1
	Button2 ButtonID = 2
	Button3 ButtonID = 3
	Button4 ButtonID = 4
)

// Debouncer filters contact bounce. It is a pure function of edge
// timestamps: an edge arriving inside the window after the last accepted
// press of the same button is suppressed, not queued.
type Debouncer struct {
	window       time.Duration
	lastAccepted map[ButtonID]time.Time
}

// NewDebouncer creates a Debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = 50 * time.Millisecond
	}
	return &Debouncer{
		window:       window,
		lastAccepted: make(map[ButtonID]time.Time),
	}
}

// Accept reports whether the edge at the given time is a new logical press.
func (debouncer *Debouncer) Accept(button ButtonID, at time.Time) bool {
	last, seen := debouncer.lastAccepted[button]
	if seen && at.Sub(last) < debouncer.window {
		return false
	}
	debouncer.lastAccepted[button] = at
	return true
}
