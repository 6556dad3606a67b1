package state

import "time"

// State represents the currently displayed behavioral mood of the companion.
type State string

const (
	StateIdle     State = "idle"
	StateEating   State = "eating"
	StateDrinking State = "drinking"
	StateResting  State = "resting"
	StateFocusing State = "focusing"
	StateScanning State = "scanning"
	StateReading  State = "reading"
	StateAlert    State = "alert"
)

// Mode represents the active top-level feature area.
type Mode string

const (
	ModeBuddy   Mode = "buddy"
	ModeScanner Mode = "scanner"
	ModeReddit  Mode = "reddit"
)

// Next returns the mode that follows in the fixed cycle
// buddy -> scanner -> reddit -> buddy.
func (mode Mode) Next() Mode {
	switch mode {
	case ModeBuddy:
		return ModeScanner
	case ModeScanner:
		return ModeReddit
	default:
		return ModeBuddy
	}
}

// Cause identifies what triggered a committed transition.
type Cause string

const (
	CauseButton     Cause = "button"
	CauseWorker     Cause = "worker"
	CauseTimeout    Cause = "timeout"
	CauseModeSwitch Cause = "mode_switch"
)

// ReminderKind identifies one of the health reminders.
type ReminderKind string

const (
	ReminderEat   ReminderKind = "eat"
	ReminderDrink ReminderKind = "drink"
	ReminderRest  ReminderKind = "rest"
	ReminderFocus ReminderKind = "focus"
)

// PendingReminder is the single outstanding, unacknowledged reminder.
// A newer reminder replaces it; reminders are never queued.
type PendingReminder struct {
	Kind     ReminderKind
	RaisedAt time.Time
}

// Transition is a request to move the companion to a new state.
type Transition struct {
	To    State
	Cause Cause

	// Reminder, when set, becomes the outstanding PendingReminder as part
	// of the same committed step.
	Reminder *PendingReminder
}

// Event describes one committed transition, delivered to subscribers in
// registration order before Commit returns.
type Event struct {
	From  State
	To    State
	Mode  Mode
	Cause Cause
	At    time.Time
}

// adjacency is the static transition table. A requested transition absent
// from this table is rejected without side effects.
var adjacency = map[State][]State{
	StateIdle:     {StateEating, StateDrinking, StateResting, StateFocusing, StateScanning, StateReading, StateAlert},
	StateEating:   {StateIdle, StateAlert},
	StateDrinking: {StateIdle, StateAlert},
	StateResting:  {StateIdle, StateAlert},
	StateFocusing: {StateIdle, StateAlert},
	StateScanning: {StateIdle, StateAlert},
	StateReading:  {StateIdle, StateAlert},
	StateAlert:    {StateIdle},
}

func allowed(from, to State) bool {
	for _, next := range adjacency[from] {
		if next == to {
			return true
		}
	}
	return false
}

// isReminderState reports whether s is one of the states that carry a
// PendingReminder.
func isReminderState(s State) bool {
	switch s {
	case StateEating, StateDrinking, StateResting, StateFocusing:
		return true
	}
	return false
}
