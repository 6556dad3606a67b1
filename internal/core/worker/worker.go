package worker

import (
	"context"
	"errors"
	"time"
)

// ErrShutdownTimeout indicates a worker did not stop within the grace
// period and was abandoned. Process exit is never blocked on it.
var ErrShutdownTimeout = errors.New("worker shutdown timeout")

// Phase is the lifecycle phase of a worker.
type Phase string

const (
	PhaseStopped  Phase = "stopped"
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseStopping Phase = "stopping"
)

// Module is one independently scheduled background unit. On each cadence
// tick it performs its own I/O and submits any resulting transitions through
// the state store; it never writes state directly. A tick error marks that
// single cycle as failed and does not disable future ticks.
type Module interface {
	Name() string
	Interval() time.Duration
	Tick(ctx context.Context) error
}

// Handle is a read-only snapshot of a worker's lifecycle record.
type Handle struct {
	Name     string
	Phase    Phase
	LastTick time.Time
}
