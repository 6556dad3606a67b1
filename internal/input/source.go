package input

import (
	"sync"
	"time"
)

// pendingCap bounds presses awaiting a Poll. Distinct buttons pressed in
// quick succession queue up to this depth; beyond it the oldest unserved
// press wins and newer ones are dropped.
const pendingCap = 8

// Edge is a raw hardware-level press edge, before debouncing.
type Edge struct {
	Button ButtonID
	At     time.Time
}

// Source converts raw edges into discrete logical presses. Edge producers
// (GPIO, the desktop preview keys) call Offer; a dedicated sampling loop
// calls Poll at a fixed short interval.
type Source struct {
	mu        sync.Mutex
	debouncer *Debouncer
	pending   []ButtonID
}

// NewSource creates a Source with the given debounce window.
func NewSource(window time.Duration) *Source {
	return &Source{debouncer: NewDebouncer(window)}
}

// Offer submits a raw edge. Bounce within the debounce window is dropped.
func (source *Source) Offer(edge Edge) {
	source.mu.Lock()
	defer source.mu.Unlock()
	if !source.debouncer.Accept(edge.Button, edge.At) {
		return
	}
	if len(source.pending) >= pendingCap {
		return
	}
	source.pending = append(source.pending, edge.Button)
}

// Poll returns the first new logical press since the last call, if any.
func (source *Source) Poll() (ButtonID, bool) {
	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.pending) == 0 {
		return 0, false
	}
	button := source.pending[0]
	source.pending = source.pending[1:]
	return button, true
}
