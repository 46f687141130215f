package services

import (
	"time"

	"eaumembers/internal/models"
)

// ComputeReminders builds the unsaved reminder rows for a registration. For
// each entry in the fixed schedule the delivery time is eventStart minus the
// offset; entries whose delivery time is not strictly in the future are
// skipped rather than created past-due. An empty result is a normal outcome
// for an event that has already started.
func ComputeReminders(eventID, userID, registrationID, recipientEmail string, eventStart, now time.Time) []models.Reminder {
	reminders := make([]models.Reminder, 0, len(models.ReminderSchedule))

	for _, entry := range models.ReminderSchedule {
		scheduledAt := eventStart.Add(-entry.Offset)
		if !scheduledAt.After(now) {
			continue
		}
		reminders = append(reminders, models.Reminder{
			EventID:        eventID,
			RegistrationID: registrationID,
			UserID:         userID,
			Kind:           entry.Kind,
			ScheduledAt:    scheduledAt,
			RecipientEmail: recipientEmail,
		})
	}

	return reminders
}
