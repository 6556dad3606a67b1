package worker

import (
	"context"
	"sync"
	"time"

	"cyfox/internal/log"

	"github.com/rs/zerolog"
)

// FaultFunc receives tick failures. The runner keeps its cadence after a
// fault; the hook exists for logging and supervision only.
type FaultFunc func(name string, err error)

// Runner drives one Module on its own cadence. The runner owns the
// lifecycle record; the module never mutates it.
type Runner struct {
	mu       sync.Mutex
	module   Module
	phase    Phase
	lastTick time.Time
	stopCh   chan struct{}
	kickCh   chan struct{}
	doneCh   chan struct{}
	cancel   context.CancelFunc

	onFault FaultFunc
	logger  zerolog.Logger
}

// NewRunner wraps a module. onFault may be nil.
func NewRunner(module Module, onFault FaultFunc) *Runner {
	return &Runner{
		module:  module,
		phase:   PhaseStopped,
		onFault: onFault,
		logger:  log.WithComponent("worker").With().Str("worker", module.Name()).Logger(),
	}
}

// Handle returns a snapshot of the lifecycle record.
func (runner *Runner) Handle() Handle {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	return Handle{Name: runner.module.Name(), Phase: runner.phase, LastTick: runner.lastTick}
}

// Start launches the cadence loop. Calling Start on a running worker is a
// no-op.
func (runner *Runner) Start() {
	runner.mu.Lock()
	if runner.phase != PhaseStopped {
		runner.mu.Unlock()
		return
	}
	runner.phase = PhaseStarting
	runner.stopCh = make(chan struct{})
	runner.kickCh = make(chan struct{}, 1)
	runner.doneCh = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	runner.cancel = cancel
	runner.phase = PhaseRunning
	runner.mu.Unlock()

	runner.logger.Info().Dur("interval", runner.module.Interval()).Msg("worker started")
	go runner.run(ctx, runner.stopCh, runner.kickCh, runner.doneCh)
}

// Kick requests an immediate tick ahead of the next cadence firing.
func (runner *Runner) Kick() {
	runner.mu.Lock()
	kickCh := runner.kickCh
	running := runner.phase == PhaseRunning
	runner.mu.Unlock()
	if !running {
		return
	}
	select {
	case kickCh <- struct{}{}:
	default:
	}
}

// Stop requests cooperative termination and waits until the loop exits or
// ctx expires. A worker still pending past the deadline is abandoned with
// ErrShutdownTimeout; it is never allowed to block process shutdown.
func (runner *Runner) Stop(ctx context.Context) error {
	runner.mu.Lock()
	if runner.phase != PhaseRunning {
		runner.mu.Unlock()
		return nil
	}
	runner.phase = PhaseStopping
	close(runner.stopCh)
	runner.cancel()
	doneCh := runner.doneCh
	runner.mu.Unlock()

	select {
	case <-doneCh:
		runner.setPhase(PhaseStopped)
		runner.logger.Info().Msg("worker stopped")
		return nil
	case <-ctx.Done():
		runner.setPhase(PhaseStopped)
		runner.logger.Warn().Msg("worker abandoned after shutdown grace period")
		return ErrShutdownTimeout
	}
}

func (runner *Runner) setPhase(phase Phase) {
	runner.mu.Lock()
	runner.phase = phase
	runner.mu.Unlock()
}

// run captures its channels so an abandoned loop from a previous
// generation cannot touch the channels of a restarted one.
func (runner *Runner) run(ctx context.Context, stopCh, kickCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(runner.module.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-kickCh:
			runner.tick(ctx)
		case <-ticker.C:
			runner.tick(ctx)
		}
	}
}

func (runner *Runner) tick(ctx context.Context) {
	runner.mu.Lock()
	runner.lastTick = time.Now()
	runner.mu.Unlock()

	if err := runner.module.Tick(ctx); err != nil {
		runner.logger.Warn().Err(err).Msg("worker cycle failed")
		if runner.onFault != nil {
			runner.onFault(runner.module.Name(), err)
		}
	}
}
