// Package reminder implements the health-break worker: it raises eat,
// drink, rest and focus reminders on their configured intervals and expires
// unacknowledged ones back to idle.
package reminder

import (
	"context"
	"errors"
	"time"

	"cyfox/internal/core/model"
	"cyfox/internal/core/state"
	"cyfox/internal/log"

	"github.com/rs/zerolog"
)

// kindOrder fixes which reminder wins when several come due on the same
// tick: the most urgent habit first.
var kindOrder = []state.ReminderKind{
	state.ReminderDrink,
	state.ReminderFocus,
	state.ReminderRest,
	state.ReminderEat,
}

var kindStates = map[state.ReminderKind]state.State{
	state.ReminderEat:   state.StateEating,
	state.ReminderDrink: state.StateDrinking,
	state.ReminderRest:  state.StateResting,
	state.ReminderFocus: state.StateFocusing,
}

var kindMessages = map[state.ReminderKind]string{
	state.ReminderEat:   "Time to eat! Take a break and fuel up!",
	state.ReminderDrink: "Stay hydrated! Time for a drink!",
	state.ReminderRest:  "Take a rest! Your eyes need a break!",
	state.ReminderFocus: "Focus time! Let's get things done!",
}

// Message returns the display text for a reminder kind.
func Message(kind state.ReminderKind) string {
	return kindMessages[kind]
}

// Module is the reminder worker.
type Module struct {
	config model.ReminderConfig
	store  *state.Store
	logger zerolog.Logger
	now    func() time.Time

	// lastFired is private scratch owned by this worker; only transitions
	// submitted through the store are visible outside.
	lastFired map[state.ReminderKind]time.Time
}

// New creates the reminder worker.
func New(config model.ReminderConfig, store *state.Store) *Module {
	return &Module{
		config:    config,
		store:     store,
		logger:    log.WithComponent("reminder"),
		now:       time.Now,
		lastFired: make(map[state.ReminderKind]time.Time),
	}
}

// Name implements worker.Module.
func (module *Module) Name() string { return "reminder" }

// Interval implements worker.Module.
func (module *Module) Interval() time.Duration { return module.config.CheckInterval }

// Tick expires a stale reminder and then fires the next due one, if any.
// Transitions rejected by the adjacency table (the companion is scanning or
// reading) are left to re-fire on a later tick.
func (module *Module) Tick(ctx context.Context) error {
	now := module.now()

	if pending := module.store.Pending(); pending != nil && now.Sub(pending.RaisedAt) >= module.config.AckTimeout {
		// Only expire while the reminder is still on screen; an alert that
		// interrupted it keeps the screen until acknowledged.
		if current, _ := module.store.Current(); onScreen(current) {
			if _, err := module.store.Commit(state.Transition{To: state.StateIdle, Cause: state.CauseTimeout}); err == nil {
				module.logger.Info().Str("kind", string(pending.Kind)).Msg("reminder expired unacknowledged")
			}
		}
	}

	for _, kind := range kindOrder {
		if !module.due(kind, now) {
			continue
		}
		raised := state.PendingReminder{Kind: kind, RaisedAt: now}
		_, err := module.store.Commit(state.Transition{
			To:       kindStates[kind],
			Cause:    state.CauseWorker,
			Reminder: &raised,
		})
		if errors.Is(err, state.ErrInvalidTransition) {
			module.logger.Debug().Str("kind", string(kind)).Msg("reminder suppressed by current state")
			return nil
		}
		if err != nil {
			return err
		}
		module.lastFired[kind] = now
		module.logger.Info().Str("kind", string(kind)).Msg("reminder raised")
		return nil
	}
	return nil
}

func onScreen(current state.State) bool {
	switch current {
	case state.StateEating, state.StateDrinking, state.StateResting, state.StateFocusing:
		return true
	}
	return false
}

func (module *Module) due(kind state.ReminderKind, now time.Time) bool {
	interval := module.interval(kind)
	if interval <= 0 {
		return false
	}
	last, fired := module.lastFired[kind]
	return !fired || now.Sub(last) >= interval
}

func (module *Module) interval(kind state.ReminderKind) time.Duration {
	switch kind {
	case state.ReminderEat:
		return module.config.EatInterval
	case state.ReminderDrink:
		return module.config.DrinkInterval
	case state.ReminderRest:
		return module.config.RestInterval
	case state.ReminderFocus:
		return module.config.FocusInterval
	}
	return 0
}
