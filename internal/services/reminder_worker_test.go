package services

import (
	"context"
	"testing"
	"time"

	"eaumembers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBatchSendsDueReminders(t *testing.T) {
	event := testEvent(time.Now().Add(time.Hour))
	store := newMemReminderStore()
	sender := &recordingSender{}
	dispatcher := newTestDispatcher(store, newMemEventFinder(event), sender)
	worker := NewReminderWorker(store, dispatcher, time.Minute, 50)

	store.add(dueReminder(event.ID, models.OneDayBefore))
	store.add(dueReminder(event.ID, models.ThirtyMinBefore))

	// A future row must be left alone.
	future := dueReminder(event.ID, models.EventLive)
	future.ScheduledAt = time.Now().Add(time.Hour)
	futureID := store.add(future)

	worker.processBatch(context.Background())

	assert.Equal(t, 2, sender.sentCount())
	assert.False(t, store.get(futureID).Sent)
}

func TestProcessBatchAdvancesPastFailures(t *testing.T) {
	event := testEvent(time.Now().Add(time.Hour))
	store := newMemReminderStore()
	sender := &recordingSender{}
	dispatcher := newTestDispatcher(store, newMemEventFinder(event), sender)
	worker := NewReminderWorker(store, dispatcher, time.Minute, 50)

	// First row references a missing event; the second must still go out.
	bad := dueReminder("missing-event", models.OneDayBefore)
	bad.ScheduledAt = time.Now().Add(-2 * time.Hour)
	badID := store.add(bad)
	goodID := store.add(dueReminder(event.ID, models.OneDayBefore))

	worker.processBatch(context.Background())

	assert.NotNil(t, store.get(badID).DeadAt)
	assert.True(t, store.get(goodID).Sent)
	assert.Equal(t, 1, sender.sentCount())
}

func TestProcessBatchAbandonsTickOnStoreError(t *testing.T) {
	store := newMemReminderStore()
	sender := &recordingSender{}
	dispatcher := newTestDispatcher(store, newMemEventFinder(), sender)
	worker := NewReminderWorker(store, dispatcher, time.Minute, 50)

	store.findDueErr = assert.AnError

	// Must not panic; the tick is simply skipped.
	worker.processBatch(context.Background())
	assert.Zero(t, sender.sentCount())
}

func TestWorkerProcessesImmediatelyOnStart(t *testing.T) {
	event := testEvent(time.Now().Add(time.Hour))
	store := newMemReminderStore()
	sender := &recordingSender{}
	dispatcher := newTestDispatcher(store, newMemEventFinder(event), sender)
	worker := NewReminderWorker(store, dispatcher, time.Hour, 50)

	id := store.add(dueReminder(event.ID, models.EventLive))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	// The interval is an hour, so delivery proves the startup batch ran.
	require.Eventually(t, func() bool {
		return store.get(id).Sent
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	worker.Wait()
}

func TestWorkerRetriesOnLaterTick(t *testing.T) {
	event := testEvent(time.Now().Add(time.Hour))
	store := newMemReminderStore()
	sender := &recordingSender{}
	sender.setFailure(assert.AnError)
	// Generous attempt budget: several ticks may fire before the provider
	// "recovers" below.
	dispatcher := NewDispatcher(store, newMemEventFinder(event), sender, DispatcherConfig{
		PortalURL:   "https://members.example.com",
		MaxAttempts: 1000,
	})
	worker := NewReminderWorker(store, dispatcher, 20*time.Millisecond, 50)

	id := store.add(dueReminder(event.ID, models.EventLive))

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	require.Eventually(t, func() bool {
		return store.get(id).Attempts >= 1 && !store.get(id).Sent
	}, 2*time.Second, 10*time.Millisecond)

	sender.setFailure(nil)

	require.Eventually(t, func() bool {
		return store.get(id).Sent
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	worker.Wait()
}

func TestWorkerStopDrains(t *testing.T) {
	store := newMemReminderStore()
	sender := &recordingSender{}
	dispatcher := newTestDispatcher(store, newMemEventFinder(), sender)
	worker := NewReminderWorker(store, dispatcher, 10*time.Millisecond, 50)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	cancel()

	done := make(chan struct{})
	go func() {
		worker.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorkerDefaults(t *testing.T) {
	worker := NewReminderWorker(newMemReminderStore(), nil, 0, 0)
	assert.Equal(t, time.Minute, worker.interval)
	assert.Equal(t, 50, worker.batchSize)
}
