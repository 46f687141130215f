package services

import (
	"testing"
	"time"

	"eaumembers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRemindersFullSchedule(t *testing.T) {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	now := start.Add(-8 * 24 * time.Hour)

	reminders := ComputeReminders("event-1", "user-1", "reg-1", "member@example.com", start, now)
	require.Len(t, reminders, 5)

	expected := map[models.ReminderKind]time.Time{
		models.SevenDaysBefore: start.Add(-7 * 24 * time.Hour),
		models.ThreeDaysBefore: start.Add(-3 * 24 * time.Hour),
		models.OneDayBefore:    start.Add(-24 * time.Hour),
		models.ThirtyMinBefore: start.Add(-30 * time.Minute),
		models.EventLive:       start,
	}

	for _, r := range reminders {
		want, ok := expected[r.Kind]
		require.True(t, ok, "unexpected kind %s", r.Kind)
		assert.True(t, r.ScheduledAt.Equal(want), "kind %s: got %v, want %v", r.Kind, r.ScheduledAt, want)
		assert.Equal(t, "event-1", r.EventID)
		assert.Equal(t, "user-1", r.UserID)
		assert.Equal(t, "reg-1", r.RegistrationID)
		assert.Equal(t, "member@example.com", r.RecipientEmail)
		assert.False(t, r.Sent)
	}
}

func TestComputeRemindersSkipsPastOffsets(t *testing.T) {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	// Ten minutes before start only the event-live reminder is still ahead.
	reminders := ComputeReminders("event-1", "user-1", "reg-1", "member@example.com", start, start.Add(-10*time.Minute))
	require.Len(t, reminders, 1)
	assert.Equal(t, models.EventLive, reminders[0].Kind)
	assert.True(t, reminders[0].ScheduledAt.Equal(start))
}

func TestComputeRemindersNearEvent(t *testing.T) {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	// Two hours out: only the 30-minute and live reminders qualify.
	reminders := ComputeReminders("event-1", "user-1", "reg-1", "member@example.com", start, start.Add(-2*time.Hour))
	require.Len(t, reminders, 2)
	assert.Equal(t, models.ThirtyMinBefore, reminders[0].Kind)
	assert.Equal(t, models.EventLive, reminders[1].Kind)
}

func TestComputeRemindersEventAlreadyStarted(t *testing.T) {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	reminders := ComputeReminders("event-1", "user-1", "reg-1", "member@example.com", start, start.Add(time.Second))
	assert.Empty(t, reminders)
}

func TestComputeRemindersExactStartIsNotFuture(t *testing.T) {
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	// scheduledAt must be strictly in the future; at now == start even the
	// live reminder is skipped.
	reminders := ComputeReminders("event-1", "user-1", "reg-1", "member@example.com", start, start)
	assert.Empty(t, reminders)
}
