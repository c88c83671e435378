package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore(0)
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action:  ActionPostalLookup,
		Domain:  "postal_code",
		Code:    "97205",
		State:   "OR",
		Outcome: OutcomeResolved,
	})
	require.NoError(t, err)

	events, err := pub.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionPostalLookup, events[0].Action)
	assert.Equal(t, "97205", events[0].Code)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := NewInMemoryStore(0)
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{Action: ActionAreaCodeLookup, Code: "406"})
	require.NoError(t, err)

	// Wait for async processing
	require.Eventually(t, func() bool {
		return store.Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore(0)
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{Action: ActionPostalLookup})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	assert.Equal(t, 10, store.Len(), "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := NewInMemoryStore(0)
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	// Fill the buffer with concurrent writes
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), Event{Action: ActionPostalLookup})
		}()
	}
	wg.Wait()

	// Some events may have been dropped (buffer size 1).
	// Just verify no panic and the publisher still works.
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := NewInMemoryStore(0)
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	err := pub.Emit(context.Background(), Event{Action: ActionPhoneLookup})
	require.NoError(t, err)
	after := time.Now()

	events, err := pub.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, !events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.True(t, !events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := NewInMemoryStore(0)
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), Event{Action: ActionPhoneLookup, Timestamp: customTime})
	require.NoError(t, err)

	events, err := pub.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestFanout_DeliversToAllChildren(t *testing.T) {
	first := NewInMemoryStore(0)
	second := NewInMemoryStore(0)
	fanout := Fanout{NewPublisher(first), NewPublisher(second)}
	defer fanout.Close()

	err := fanout.Emit(context.Background(), Event{Action: ActionPostalLookup, Code: "80301"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}

func TestFanout_KeepsGoingAfterFailure(t *testing.T) {
	store := NewInMemoryStore(0)
	fanout := Fanout{failingPublisher{}, NewPublisher(store)}
	defer fanout.Close()

	err := fanout.Emit(context.Background(), Event{Action: ActionAreaCodeLookup, Code: "503"})

	assert.Error(t, err)
	assert.Equal(t, 1, store.Len(), "healthy children still receive the event")
}

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, Event) error { return assert.AnError }
func (failingPublisher) Close() error                      { return nil }

func TestInMemoryStore_ListRecentNewestFirst(t *testing.T) {
	store := NewInMemoryStore(0)
	for _, code := range []string{"100", "200", "300"} {
		require.NoError(t, store.Append(context.Background(), Event{Code: code}))
	}

	events, err := store.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "300", events[0].Code)
	assert.Equal(t, "200", events[1].Code)
}

func TestInMemoryStore_CapacityEvictsOldest(t *testing.T) {
	store := NewInMemoryStore(3)
	for _, code := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, store.Append(context.Background(), Event{Code: code}))
	}

	assert.Equal(t, 3, store.Len())

	events, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "5", events[0].Code)
	assert.Equal(t, "3", events[2].Code)
}
