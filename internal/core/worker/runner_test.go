package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeModule struct {
	name     string
	interval time.Duration
	ticks    atomic.Int64
	fail     atomic.Bool
	block    chan struct{} // when non-nil, Tick blocks until closed, ignoring ctx
}

func (m *fakeModule) Name() string            { return m.name }
func (m *fakeModule) Interval() time.Duration { return m.interval }

func (m *fakeModule) Tick(ctx context.Context) error {
	m.ticks.Add(1)
	if m.block != nil {
		<-m.block
	}
	if m.fail.Load() {
		return errors.New("boom")
	}
	return nil
}

func waitForTicks(t *testing.T, module *fakeModule, want int64) {
	t.Helper()
	require.Eventually(t, func() bool {
		return module.ticks.Load() >= want
	}, 2*time.Second, time.Millisecond)
}

func stopRunner(t *testing.T, runner *Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, runner.Stop(ctx))
}

func TestStartIsIdempotent(t *testing.T) {
	module := &fakeModule{name: "fake", interval: time.Millisecond}
	runner := NewRunner(module, nil)

	runner.Start()
	runner.Start()
	runner.Start()

	assert.Equal(t, PhaseRunning, runner.Handle().Phase)
	waitForTicks(t, module, 1)
	stopRunner(t, runner)
	assert.Equal(t, PhaseStopped, runner.Handle().Phase)
}

func TestFaultKeepsWorkerRunning(t *testing.T) {
	module := &fakeModule{name: "fake", interval: time.Millisecond}
	module.fail.Store(true)

	var faults atomic.Int64
	runner := NewRunner(module, func(name string, err error) {
		assert.Equal(t, "fake", name)
		faults.Add(1)
	})
	runner.Start()

	waitForTicks(t, module, 2)
	assert.Equal(t, PhaseRunning, runner.Handle().Phase, "a failed cycle must not stop the worker")
	require.Eventually(t, func() bool { return faults.Load() >= 2 }, 2*time.Second, time.Millisecond)

	// One failed cycle never disables future cycles.
	module.fail.Store(false)
	before := module.ticks.Load()
	waitForTicks(t, module, before+1)

	stopRunner(t, runner)
}

func TestKickFiresImmediateTick(t *testing.T) {
	module := &fakeModule{name: "fake", interval: time.Hour}
	runner := NewRunner(module, nil)
	runner.Start()

	runner.Kick()
	waitForTicks(t, module, 1)

	stopRunner(t, runner)
}

func TestStopAbandonsStragglerAfterGracePeriod(t *testing.T) {
	block := make(chan struct{})
	module := &fakeModule{name: "fake", interval: time.Millisecond, block: block}
	runner := NewRunner(module, nil)
	runner.Start()
	waitForTicks(t, module, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := runner.Stop(ctx)
	require.ErrorIs(t, err, ErrShutdownTimeout)
	assert.Equal(t, PhaseStopped, runner.Handle().Phase)

	// Unblock the abandoned goroutine so the leak check stays clean.
	close(block)
	time.Sleep(10 * time.Millisecond)
}

func TestLastTickRecorded(t *testing.T) {
	module := &fakeModule{name: "fake", interval: time.Millisecond}
	runner := NewRunner(module, nil)
	require.True(t, runner.Handle().LastTick.IsZero())

	runner.Start()
	waitForTicks(t, module, 1)
	assert.False(t, runner.Handle().LastTick.IsZero())

	stopRunner(t, runner)
}
