// Package coordinator owns the worker lifecycles, routes button presses to
// state or mode transitions and exposes the render snapshot. It is the only
// component that starts or stops workers; all of its effects on shared state
// go through the store's commit path.
package coordinator

import (
	"context"
	"errors"
	"time"

	"cyfox/internal/core/model"
	"cyfox/internal/core/state"
	"cyfox/internal/core/worker"
	"cyfox/internal/input"
	"cyfox/internal/log"
	"cyfox/internal/modules/reddit"
	"cyfox/internal/modules/reminder"
	"cyfox/internal/modules/scanner"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Action is a semantic button action.
type Action string

const (
	ActionAcknowledge Action = "acknowledge"
	ActionNextItem    Action = "next_item"
	ActionStartScan   Action = "start_scan"
	ActionCycleMode   Action = "cycle_mode"
)

// Kind identifies one of the fixed set of workers.
type Kind string

const (
	KindReminder Kind = "reminder"
	KindScanner  Kind = "scanner"
	KindReddit   Kind = "reddit"
)

// Modules are the three workers, fixed at startup.
type Modules struct {
	Reminder *reminder.Module
	Scanner  *scanner.Module
	Reddit   *reddit.Module
}

// Snapshot is the pull-based, read-only view consumed once per frame by the
// renderer. The renderer never commits.
type Snapshot struct {
	State    state.State
	Mode     state.Mode
	Reminder *state.PendingReminder
	Scan     scanner.Summary
	Post     *reddit.Post
}

// Coordinator arbitrates which workers run, routes input and serializes all
// mutation into the store.
type Coordinator struct {
	store   *state.Store
	modules Modules
	runners map[Kind]*worker.Runner
	actions map[input.ButtonID]Action
	grace   time.Duration
	logger  zerolog.Logger
}

// New wires the coordinator. The button-to-action mapping comes from
// configuration; unknown action names are dropped with a warning.
func New(store *state.Store, config model.Config, modules Modules) *Coordinator {
	coordinator := &Coordinator{
		store:   store,
		modules: modules,
		runners: make(map[Kind]*worker.Runner),
		actions: make(map[input.ButtonID]Action),
		grace:   config.ShutdownGrace,
		logger:  log.WithComponent("coordinator"),
	}
	if coordinator.grace <= 0 {
		coordinator.grace = 5 * time.Second
	}

	coordinator.runners[KindReminder] = worker.NewRunner(modules.Reminder, coordinator.onFault)
	coordinator.runners[KindScanner] = worker.NewRunner(modules.Scanner, coordinator.onFault)
	coordinator.runners[KindReddit] = worker.NewRunner(modules.Reddit, coordinator.onFault)

	for button, name := range config.Input.Actions {
		switch action := Action(name); action {
		case ActionAcknowledge, ActionNextItem, ActionStartScan, ActionCycleMode:
			coordinator.actions[input.ButtonID(button)] = action
		default:
			coordinator.logger.Warn().Int("button", button).Str("action", name).Msg("unknown button action ignored")
		}
	}

	store.Subscribe(func(event state.Event) {
		coordinator.logger.Info().
			Str("old_state", string(event.From)).
			Str("new_state", string(event.To)).
			Str("mode", string(event.Mode)).
			Str("cause", string(event.Cause)).
			Msg("state changed")
	})
	return coordinator
}

// Start launches all workers. Workers outside the active mode keep ticking
// but their transitions are rejected by the adjacency table, so no explicit
// mutual exclusion is needed.
func (coordinator *Coordinator) Start() {
	for _, runner := range coordinator.runners {
		runner.Start()
	}
}

// Stop requests cooperative termination of every worker concurrently,
// bounded by the configured grace period. Stragglers are abandoned; Stop
// never blocks process exit beyond the grace period.
func (coordinator *Coordinator) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), coordinator.grace)
	defer cancel()

	group := new(errgroup.Group)
	for kind, runner := range coordinator.runners {
		kind, runner := kind, runner
		group.Go(func() error {
			if err := runner.Stop(ctx); errors.Is(err, worker.ErrShutdownTimeout) {
				coordinator.logger.Warn().Str("worker", string(kind)).Msg("shutdown grace period exceeded")
			}
			return nil
		})
	}
	_ = group.Wait()
}

// Handle returns the lifecycle record of one worker.
func (coordinator *Coordinator) Handle(kind Kind) (worker.Handle, bool) {
	runner, ok := coordinator.runners[kind]
	if !ok {
		return worker.Handle{}, false
	}
	return runner.Handle(), true
}

// RunInput samples the input source at a fixed interval until ctx is done,
// routing each logical press through HandlePress.
func (coordinator *Coordinator) RunInput(ctx context.Context, source *input.Source, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if button, ok := source.Poll(); ok {
				coordinator.HandlePress(button)
			}
		}
	}
}

// HandlePress routes one logical button press according to the action table
// and the current mode. Rejected transitions are logged and discarded; a
// button press never propagates a failure.
func (coordinator *Coordinator) HandlePress(button input.ButtonID) {
	action, ok := coordinator.actions[button]
	if !ok {
		coordinator.logger.Debug().Int("button", int(button)).Msg("unmapped button press")
		return
	}

	current, mode := coordinator.store.Current()
	switch action {
	case ActionAcknowledge:
		coordinator.acknowledge(current)
	case ActionNextItem:
		if mode == state.ModeReddit {
			coordinator.modules.Reddit.Next()
			coordinator.commit(state.Transition{To: state.StateReading, Cause: state.CauseButton})
		}
	case ActionStartScan:
		if mode == state.ModeScanner {
			coordinator.runners[KindScanner].Kick()
		}
	case ActionCycleMode:
		event, err := coordinator.store.CycleMode()
		if err != nil {
			coordinator.logger.Warn().Err(err).Msg("mode switch rejected")
			return
		}
		coordinator.kickActive(event.Mode)
	}
}

// acknowledge returns the companion to idle from an alert or an active
// reminder. Pressing acknowledge in any other state is a no-op.
func (coordinator *Coordinator) acknowledge(current state.State) {
	switch current {
	case state.StateAlert, state.StateEating, state.StateDrinking, state.StateResting, state.StateFocusing:
		coordinator.commit(state.Transition{To: state.StateIdle, Cause: state.CauseButton})
	}
}

// kickActive fires an immediate tick on the worker that just became
// relevant, so a fresh mode shows content without waiting a full cadence.
func (coordinator *Coordinator) kickActive(mode state.Mode) {
	switch mode {
	case state.ModeScanner:
		coordinator.runners[KindScanner].Kick()
	case state.ModeReddit:
		coordinator.runners[KindReddit].Kick()
	}
}

func (coordinator *Coordinator) commit(transition state.Transition) {
	if _, err := coordinator.store.Commit(transition); err != nil {
		coordinator.logger.Warn().Err(err).Str("target", string(transition.To)).Msg("transition rejected")
	}
}

func (coordinator *Coordinator) onFault(name string, err error) {
	coordinator.logger.Warn().Err(err).Str("worker", name).Msg("worker fault, cycle skipped")
}

// Snapshot composes the current pair with per-mode content for the
// renderer.
func (coordinator *Coordinator) Snapshot() Snapshot {
	current, mode := coordinator.store.Current()
	snapshot := Snapshot{
		State:    current,
		Mode:     mode,
		Reminder: coordinator.store.Pending(),
		Scan:     coordinator.modules.Scanner.Summarize(),
	}
	if mode == state.ModeReddit {
		snapshot.Post = coordinator.modules.Reddit.Current()
	}
	return snapshot
}
