package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitRejectsInvalidTransition(t *testing.T) {
	cases := []struct {
		name string
		path []State // walked from idle with cause worker
		to   State
	}{
		{name: "eating to drinking", path: []State{StateEating}, to: StateDrinking},
		{name: "alert to scanning", path: []State{StateAlert}, to: StateScanning},
		{name: "reading to eating", path: []State{StateReading}, to: StateEating},
		{name: "scanning to reading", path: []State{StateScanning}, to: StateReading},
		{name: "drinking to focusing", path: []State{StateDrinking}, to: StateFocusing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := New()
			for _, step := range tc.path {
				_, err := store.Commit(Transition{To: step, Cause: CauseWorker})
				require.NoError(t, err)
			}
			before, mode := store.Current()

			_, err := store.Commit(Transition{To: tc.to, Cause: CauseWorker})
			require.ErrorIs(t, err, ErrInvalidTransition)

			after, afterMode := store.Current()
			assert.Equal(t, before, after)
			assert.Equal(t, mode, afterMode)
		})
	}
}

func TestCommitIdempotentNoOp(t *testing.T) {
	store := New()
	var notified int
	store.Subscribe(func(Event) { notified++ })

	event, err := store.Commit(Transition{To: StateIdle, Cause: CauseButton})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, event.From)
	assert.Equal(t, StateIdle, event.To)
	assert.Zero(t, notified, "no-op commit must not notify subscribers")

	current, mode := store.Current()
	assert.Equal(t, StateIdle, current)
	assert.Equal(t, ModeBuddy, mode)
}

func TestSubscribersInvokedInRegistrationOrder(t *testing.T) {
	store := New()
	var order []string
	store.Subscribe(func(Event) { order = append(order, "first") })
	store.Subscribe(func(Event) { order = append(order, "second") })
	store.Subscribe(func(Event) { order = append(order, "third") })

	_, err := store.Commit(Transition{To: StateScanning, Cause: CauseWorker})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestReentrantCommitRejected(t *testing.T) {
	store := New()
	var nested error
	store.Subscribe(func(Event) {
		_, nested = store.Commit(Transition{To: StateAlert, Cause: CauseWorker})
	})

	_, err := store.Commit(Transition{To: StateEating, Cause: CauseWorker})
	require.NoError(t, err)
	require.ErrorIs(t, nested, ErrReentrant)

	current, _ := store.Current()
	assert.Equal(t, StateEating, current, "nested mutation must be dropped")
}

func TestConcurrentCommitsSingleHistory(t *testing.T) {
	store := New()
	var first, second []Event
	store.Subscribe(func(event Event) { first = append(first, event) })
	store.Subscribe(func(event Event) { second = append(second, event) })

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := store.Commit(Transition{To: StateEating, Cause: CauseWorker})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := store.Commit(Transition{To: StateIdle, Cause: CauseButton})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "every subscriber observes the same history")
	for i := 1; i < len(first); i++ {
		assert.Equal(t, first[i-1].To, first[i].From, "history must be a single chain")
	}
}

func TestReminderCoalescingLatestWins(t *testing.T) {
	store := New()
	earlier := time.Now().Add(-time.Minute)
	later := time.Now()

	_, err := store.Commit(Transition{
		To:       StateDrinking,
		Cause:    CauseWorker,
		Reminder: &PendingReminder{Kind: ReminderDrink, RaisedAt: earlier},
	})
	require.NoError(t, err)

	// Same state re-fired: idempotent, but the pending reminder coalesces.
	_, err = store.Commit(Transition{
		To:       StateDrinking,
		Cause:    CauseWorker,
		Reminder: &PendingReminder{Kind: ReminderDrink, RaisedAt: later},
	})
	require.NoError(t, err)

	pending := store.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, ReminderDrink, pending.Kind)
	assert.Equal(t, later, pending.RaisedAt)
}

func TestAcknowledgeClearsPendingReminder(t *testing.T) {
	store := New()
	_, err := store.Commit(Transition{
		To:       StateEating,
		Cause:    CauseWorker,
		Reminder: &PendingReminder{Kind: ReminderEat, RaisedAt: time.Now()},
	})
	require.NoError(t, err)
	require.NotNil(t, store.Pending())

	event, err := store.Commit(Transition{To: StateIdle, Cause: CauseButton})
	require.NoError(t, err)
	assert.Equal(t, CauseButton, event.Cause)
	assert.Nil(t, store.Pending())
}

func TestCycleModeClosure(t *testing.T) {
	store := New()
	var visited []Mode
	store.Subscribe(func(event Event) { visited = append(visited, event.Mode) })

	for i := 0; i < 3; i++ {
		_, err := store.CycleMode()
		require.NoError(t, err)
	}

	_, mode := store.Current()
	assert.Equal(t, ModeBuddy, mode)
	assert.Equal(t, []Mode{ModeScanner, ModeReddit, ModeBuddy}, visited)
}

func TestCycleModeLeavesFeatureState(t *testing.T) {
	store := New()
	_, err := store.CycleMode() // scanner
	require.NoError(t, err)
	_, err = store.Commit(Transition{To: StateScanning, Cause: CauseWorker})
	require.NoError(t, err)

	event, err := store.CycleMode() // reddit
	require.NoError(t, err)
	assert.Equal(t, StateScanning, event.From)
	assert.Equal(t, StateReading, event.To, "entering the feed goes straight to reading")
	assert.Equal(t, CauseModeSwitch, event.Cause)

	current, mode := store.Current()
	assert.Equal(t, StateReading, current)
	assert.Equal(t, ModeReddit, mode)

	event, err = store.CycleMode() // buddy
	require.NoError(t, err)
	assert.Equal(t, StateReading, event.From)
	assert.Equal(t, StateIdle, event.To)

	current, mode = store.Current()
	assert.Equal(t, StateIdle, current)
	assert.Equal(t, ModeBuddy, mode)
}

func TestCycleIntoRedditEntersReading(t *testing.T) {
	store := New()
	_, err := store.CycleMode() // scanner
	require.NoError(t, err)
	event, err := store.CycleMode() // reddit
	require.NoError(t, err)

	assert.Equal(t, StateIdle, event.From)
	assert.Equal(t, StateReading, event.To)
	assert.Equal(t, CauseModeSwitch, event.Cause)

	current, mode := store.Current()
	assert.Equal(t, StateReading, current)
	assert.Equal(t, ModeReddit, mode)
}

func TestCycleModeClearsDisplacedReminder(t *testing.T) {
	store := New()
	_, err := store.Commit(Transition{
		To:       StateDrinking,
		Cause:    CauseWorker,
		Reminder: &PendingReminder{Kind: ReminderDrink, RaisedAt: time.Now()},
	})
	require.NoError(t, err)

	_, err = store.CycleMode() // scanner, reminder still on screen
	require.NoError(t, err)
	current, _ := store.Current()
	assert.Equal(t, StateDrinking, current)
	assert.NotNil(t, store.Pending())

	_, err = store.CycleMode() // reddit takes the reminder off the screen
	require.NoError(t, err)
	current, _ = store.Current()
	assert.Equal(t, StateReading, current)
	assert.Nil(t, store.Pending())
}

func TestDrinkReminderWalkthrough(t *testing.T) {
	store := New()

	_, err := store.Commit(Transition{
		To:       StateDrinking,
		Cause:    CauseWorker,
		Reminder: &PendingReminder{Kind: ReminderDrink, RaisedAt: time.Now()},
	})
	require.NoError(t, err)

	current, mode := store.Current()
	assert.Equal(t, StateDrinking, current)
	assert.Equal(t, ModeBuddy, mode)

	_, err = store.Commit(Transition{To: StateIdle, Cause: CauseButton})
	require.NoError(t, err)

	current, mode = store.Current()
	assert.Equal(t, StateIdle, current)
	assert.Equal(t, ModeBuddy, mode)
}
