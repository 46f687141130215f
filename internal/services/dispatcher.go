package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eaumembers/internal/models"
)

// DispatcherConfig is passed in at construction; dispatch behaviour never
// depends on ambient state.
type DispatcherConfig struct {
	PortalURL   string
	MaxAttempts int
}

// Dispatcher renders and delivers a single due reminder, then records the
// outcome. The sent flag is committed only after the provider accepts the
// send, so a crash in between can cause a duplicate send but never a lost one.
type Dispatcher struct {
	store  ReminderStore
	events EventFinder
	sender EmailSender
	cfg    DispatcherConfig
	clock  func() time.Time
}

func NewDispatcher(store ReminderStore, events EventFinder, sender EmailSender, cfg DispatcherConfig) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Dispatcher{
		store:  store,
		events: events,
		sender: sender,
		cfg:    cfg,
		clock:  time.Now,
	}
}

// Dispatch processes one due reminder. A nil return means the row needs no
// further work this tick: sent, dead-lettered, or claimed by someone else.
// A non-nil return is a transient failure; the row was released and stays
// due for the next tick.
func (d *Dispatcher) Dispatch(ctx context.Context, reminder models.Reminder) error {
	if reminder.Attempts >= d.cfg.MaxAttempts {
		if err := d.store.MarkDead(ctx, reminder.ID, fmt.Sprintf("delivery attempts exhausted (%d)", reminder.Attempts)); err != nil {
			return fmt.Errorf("failed to dead-letter reminder %s: %w", reminder.ID, err)
		}
		log.Printf("Dead-lettered reminder %s after %d attempts", reminder.ID, reminder.Attempts)
		return nil
	}

	claimed, err := d.store.Claim(ctx, reminder.ID, d.clock())
	if err != nil {
		return fmt.Errorf("failed to claim reminder %s: %w", reminder.ID, err)
	}
	if !claimed {
		// Another poller owns this row, or it was sent since FindDue.
		return nil
	}

	event, err := d.events.GetEvent(ctx, reminder.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			// Permanent: retrying against a missing event never succeeds.
			if deadErr := d.store.MarkDead(ctx, reminder.ID, "event not found"); deadErr != nil {
				return fmt.Errorf("failed to dead-letter reminder %s: %w", reminder.ID, deadErr)
			}
			log.Printf("Dead-lettered reminder %s: event %s no longer exists", reminder.ID, reminder.EventID)
			return nil
		}
		if releaseErr := d.store.Release(ctx, reminder.ID, err.Error()); releaseErr != nil {
			log.Printf("Failed to release reminder %s: %v", reminder.ID, releaseErr)
		}
		return fmt.Errorf("failed to load event for reminder %s: %w", reminder.ID, err)
	}

	email := RenderReminderEmail(reminder.Kind, event, reminder.RecipientEmail, "", d.cfg.PortalURL)

	if err := d.sender.Send(ctx, email); err != nil {
		if releaseErr := d.store.Release(ctx, reminder.ID, err.Error()); releaseErr != nil {
			log.Printf("Failed to release reminder %s: %v", reminder.ID, releaseErr)
		}
		return fmt.Errorf("failed to send %s reminder to %s: %w", reminder.Kind, reminder.RecipientEmail, err)
	}

	if err := d.store.MarkSent(ctx, reminder.ID, d.clock(), email.Subject); err != nil {
		// The email went out but the row is still pending; the next tick
		// will resend. Duplicate over drop, by the commit-after-send rule.
		return fmt.Errorf("sent reminder %s but failed to mark it: %w", reminder.ID, err)
	}

	log.Printf("Sent %s reminder to %s for event %s", reminder.Kind, reminder.RecipientEmail, reminder.EventID)
	return nil
}
