package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"cyfox/internal/core/model"
	"cyfox/internal/core/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	findings []Finding
	err      error
	calls    int
}

func (backend *fakeBackend) Scan(ctx context.Context, network string, ports []int) ([]Finding, error) {
	backend.calls++
	return backend.findings, backend.err
}

func testConfig() model.ScannerConfig {
	return model.ScannerConfig{
		Interval:    time.Hour,
		Network:     "192.168.1.0/24",
		Ports:       []int{22, 445},
		DialTimeout: 100 * time.Millisecond,
		MaxHosts:    4,
	}
}

func scannerModeStore(t *testing.T) *state.Store {
	t.Helper()
	store := state.New()
	_, err := store.CycleMode() // buddy -> scanner
	require.NoError(t, err)
	return store
}

func TestTickSkippedOutsideScannerMode(t *testing.T) {
	store := state.New()
	backend := &fakeBackend{}
	module := New(testConfig(), store, backend)

	require.NoError(t, module.Tick(context.Background()))
	assert.Zero(t, backend.calls)

	current, _ := store.Current()
	assert.Equal(t, state.StateIdle, current)
}

func TestCleanScanReturnsToIdle(t *testing.T) {
	store := scannerModeStore(t)
	backend := &fakeBackend{findings: []Finding{
		{Host: "192.168.1.2", Port: 22, Service: "SSH"},
	}}
	module := New(testConfig(), store, backend)

	var events []state.Event
	store.Subscribe(func(event state.Event) { events = append(events, event) })

	require.NoError(t, module.Tick(context.Background()))

	current, _ := store.Current()
	assert.Equal(t, state.StateIdle, current)
	require.Len(t, events, 2)
	assert.Equal(t, state.StateScanning, events[0].To)
	assert.Equal(t, state.CauseWorker, events[0].Cause)
	assert.Equal(t, state.StateIdle, events[1].To)
}

func TestFlaggedFindingRaisesAlert(t *testing.T) {
	store := scannerModeStore(t)
	backend := &fakeBackend{findings: []Finding{
		{Host: "192.168.1.2", Port: 22, Service: "SSH"},
		{Host: "192.168.1.7", Port: 445, Service: "SMB", Flagged: true, Note: "SMB port exposed - check for EternalBlue vulnerability"},
	}}
	module := New(testConfig(), store, backend)

	var events []state.Event
	store.Subscribe(func(event state.Event) { events = append(events, event) })

	require.NoError(t, module.Tick(context.Background()))

	current, _ := store.Current()
	assert.Equal(t, state.StateAlert, current)
	last := events[len(events)-1]
	assert.Equal(t, state.CauseWorker, last.Cause)

	// Acknowledging the alert lands on idle, not back on scanning.
	_, err := store.Commit(state.Transition{To: state.StateIdle, Cause: state.CauseButton})
	require.NoError(t, err)
	current, mode := store.Current()
	assert.Equal(t, state.StateIdle, current)
	assert.Equal(t, state.ModeScanner, mode)
}

func TestBackendFailureAbortsCycleToIdle(t *testing.T) {
	store := scannerModeStore(t)
	backend := &fakeBackend{err: errors.New("network down")}
	module := New(testConfig(), store, backend)

	err := module.Tick(context.Background())
	require.Error(t, err)

	current, _ := store.Current()
	assert.Equal(t, state.StateIdle, current, "a failed cycle aborts the scan, it does not raise an alert")

	// The next cycle is a fresh attempt.
	backend.err = nil
	require.NoError(t, module.Tick(context.Background()))
	assert.Equal(t, 2, backend.calls)
}

func TestSummarizeCountsHostsAndFlags(t *testing.T) {
	store := scannerModeStore(t)
	backend := &fakeBackend{findings: []Finding{
		{Host: "192.168.1.2", Port: 22},
		{Host: "192.168.1.2", Port: 80},
		{Host: "192.168.1.9", Port: 445, Flagged: true},
	}}
	module := New(testConfig(), store, backend)
	require.NoError(t, module.Tick(context.Background()))

	summary := module.Summarize()
	assert.Equal(t, 2, summary.Hosts)
	assert.Equal(t, 3, summary.Open)
	assert.Equal(t, 1, summary.Flagged)
	assert.False(t, summary.LastScan.IsZero())
}

func TestExpandHostsSkipsNetworkAndLimits(t *testing.T) {
	hosts, err := expandHosts("10.0.0.0/29", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5", "10.0.0.6"}, hosts)

	limited, err := expandHosts("10.0.0.0/24", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, limited)

	_, err = expandHosts("not-a-network", 3)
	assert.Error(t, err)
}

func TestServiceNamesAndFlags(t *testing.T) {
	finding := newFinding("192.168.1.5", 3389)
	assert.Equal(t, "RDP", finding.Service)
	assert.True(t, finding.Flagged)
	assert.NotEmpty(t, finding.Note)

	unknown := newFinding("192.168.1.5", 8088)
	assert.Equal(t, "Unknown-8088", unknown.Service)
	assert.False(t, unknown.Flagged)
}
