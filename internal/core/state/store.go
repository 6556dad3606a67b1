package state

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cyfox/internal/log"

	"github.com/petermattis/goid"
	"github.com/rs/zerolog"
)

// ErrInvalidTransition indicates the requested transition is not in the
// adjacency table for the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrReentrant indicates a commit was attempted from inside a subscriber
// callback. Nested mutation is refused rather than serialized so that the
// cause chain of every committed event stays traceable.
var ErrReentrant = errors.New("reentrant commit")

// Store holds the single authoritative (state, mode) pair. All mutation goes
// through Commit or CycleMode, which serialize writers and notify subscribers
// synchronously inside the critical section.
type Store struct {
	mu          sync.Mutex
	state       State
	mode        Mode
	pending     *PendingReminder
	subscribers []func(Event)

	// notifier holds the goroutine id currently delivering subscriber
	// callbacks, or zero. A commit from that goroutine is reentrant and is
	// rejected; commits from other goroutines block on mu as usual.
	notifier atomic.Int64

	now    func() time.Time
	logger zerolog.Logger
}

// New creates a Store starting in (idle, buddy).
func New() *Store {
	return &Store{
		state:  StateIdle,
		mode:   ModeBuddy,
		now:    time.Now,
		logger: log.WithComponent("state"),
	}
}

// Current returns the latest committed (state, mode) pair. Readers never
// observe a pair that did not exist as a committed step.
func (store *Store) Current() (State, Mode) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state, store.mode
}

// Pending returns a copy of the outstanding reminder, or nil.
func (store *Store) Pending() *PendingReminder {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.pending == nil {
		return nil
	}
	copied := *store.pending
	return &copied
}

// Subscribe registers an observer invoked synchronously, in registration
// order, after every committed transition. Subscribers must not call back
// into Commit or CycleMode.
func (store *Store) Subscribe(fn func(Event)) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.subscribers = append(store.subscribers, fn)
}

// Commit validates and applies a state transition. Committing the currently
// active state is an idempotent no-op success with no subscriber
// notification. An invalid transition is rejected without side effects.
func (store *Store) Commit(transition Transition) (Event, error) {
	if store.notifier.Load() == goid.Get() {
		return Event{}, ErrReentrant
	}

	store.mu.Lock()
	if transition.To == store.state {
		// Idempotent no-op, but a re-fired reminder still coalesces.
		store.applyReminderLocked(transition)
		event := Event{From: store.state, To: store.state, Mode: store.mode, Cause: transition.Cause, At: store.now()}
		store.mu.Unlock()
		return event, nil
	}
	if !allowed(store.state, transition.To) {
		from := store.state
		store.mu.Unlock()
		return Event{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, transition.To)
	}

	event := Event{
		From:  store.state,
		To:    transition.To,
		Mode:  store.mode,
		Cause: transition.Cause,
		At:    store.now(),
	}
	store.state = transition.To
	store.applyReminderLocked(transition)
	store.notifyLocked(event)
	store.mu.Unlock()
	return event, nil
}

// CycleMode rotates to the next mode as one committed step. Entering the
// reddit feature area goes straight to reading; leaving the scanner or
// reddit feature area returns the state to idle. Both happen in the same
// step, so readers never see a (state, mode) pair that was not committed
// together.
func (store *Store) CycleMode() (Event, error) {
	if store.notifier.Load() == goid.Get() {
		return Event{}, ErrReentrant
	}

	store.mu.Lock()
	event := Event{
		From:  store.state,
		To:    store.state,
		Mode:  store.mode.Next(),
		Cause: CauseModeSwitch,
		At:    store.now(),
	}
	switch {
	case event.Mode == ModeReddit:
		event.To = StateReading
	case store.state == StateScanning || store.state == StateReading:
		event.To = StateIdle
	}
	if isReminderState(event.From) && event.To != event.From {
		// The mode switch took the reminder off the screen.
		store.pending = nil
	}
	store.state = event.To
	store.mode = event.Mode
	store.notifyLocked(event)
	store.mu.Unlock()
	return event, nil
}

func (store *Store) applyReminderLocked(transition Transition) {
	switch {
	case transition.Reminder != nil && isReminderState(transition.To):
		// Latest wins: an outstanding reminder is replaced, never queued.
		raised := *transition.Reminder
		store.pending = &raised
	case transition.To == StateIdle:
		store.pending = nil
	}
}

func (store *Store) notifyLocked(event Event) {
	store.notifier.Store(goid.Get())
	defer store.notifier.Store(0)
	for _, fn := range store.subscribers {
		fn(event)
	}
	store.logger.Debug().
		Str("old_state", string(event.From)).
		Str("new_state", string(event.To)).
		Str("mode", string(event.Mode)).
		Str("cause", string(event.Cause)).
		Msg("transition committed")
}
