package services

import (
	"context"
	"log"
	"time"
)

// ReminderWorker polls the store for due reminders on a fixed cadence and
// hands each one to the dispatcher. It runs as a single goroutine, so one
// tick never overlaps the previous one.
type ReminderWorker struct {
	store      ReminderStore
	dispatcher *Dispatcher
	interval   time.Duration
	batchSize  int
	clock      func() time.Time
	done       chan struct{}
}

func NewReminderWorker(store ReminderStore, dispatcher *Dispatcher, interval time.Duration, batchSize int) *ReminderWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ReminderWorker{
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		batchSize:  batchSize,
		clock:      time.Now,
		done:       make(chan struct{}),
	}
}

// Start launches the polling loop. Cancel ctx to stop it; the loop finishes
// the batch it is processing before exiting.
func (w *ReminderWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Wait blocks until the polling loop has fully drained and exited.
func (w *ReminderWorker) Wait() {
	<-w.done
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer close(w.done)

	log.Printf("Reminder worker started (interval %s, batch size %d)", w.interval, w.batchSize)

	// Batches run against their own context: cancelling ctx stops the
	// loop between batches but never aborts a send already in flight.
	opCtx := context.Background()

	// Process whatever is already due before the first tick.
	w.processBatch(opCtx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder worker stopped")
			return
		case <-ticker.C:
			w.processBatch(opCtx)
		}
	}
}

// processBatch drains one batch of due reminders. Errors are logged and the
// tick is abandoned or the loop advances; a bad tick never takes the process
// down with it.
func (w *ReminderWorker) processBatch(ctx context.Context) {
	due, err := w.store.FindDue(ctx, w.clock(), w.batchSize)
	if err != nil {
		log.Printf("Failed to query due reminders, skipping tick: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("Found %d due reminders to process", len(due))

	for _, reminder := range due {
		if err := w.dispatcher.Dispatch(ctx, reminder); err != nil {
			log.Printf("Failed to dispatch reminder %s (will retry): %v", reminder.ID, err)
		}
	}
}
