package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderKind identifies a fixed offset before the event start.
type ReminderKind string

const (
	SevenDaysBefore ReminderKind = "7_days_before"
	ThreeDaysBefore ReminderKind = "3_days_before"
	OneDayBefore    ReminderKind = "1_day_before"
	ThirtyMinBefore ReminderKind = "30_min_before"
	EventLive       ReminderKind = "event_live"
)

// ReminderScheduleEntry pairs a kind with its offset before event start.
type ReminderScheduleEntry struct {
	Kind   ReminderKind
	Offset time.Duration
}

// ReminderSchedule is the fixed delivery schedule, farthest offset first.
var ReminderSchedule = []ReminderScheduleEntry{
	{SevenDaysBefore, 7 * 24 * time.Hour},
	{ThreeDaysBefore, 3 * 24 * time.Hour},
	{OneDayBefore, 24 * time.Hour},
	{ThirtyMinBefore, 30 * time.Minute},
	{EventLive, 0},
}

// Reminder is a scheduled, one-time email notification tied to an event
// registration. ScheduledAt is computed once at creation and never updated;
// a later change to the event start does not reschedule existing rows.
type Reminder struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	EventID        string       `gorm:"size:36;not null;index;uniqueIndex:idx_reminder_event_user_kind" json:"event_id"`
	RegistrationID string       `gorm:"size:36" json:"registration_id,omitempty"`
	UserID         string       `gorm:"size:36;not null;uniqueIndex:idx_reminder_event_user_kind" json:"user_id"`
	Kind           ReminderKind `gorm:"column:reminder_type;size:20;not null;uniqueIndex:idx_reminder_event_user_kind" json:"reminder_type"`
	ScheduledAt    time.Time    `gorm:"not null;index" json:"scheduled_at"`
	RecipientEmail string       `gorm:"size:255;not null" json:"recipient_email"`
	Subject        string       `gorm:"size:255" json:"subject,omitempty"`
	Sent           bool         `gorm:"not null;default:false;index" json:"sent"`
	SentAt         *time.Time   `json:"sent_at,omitempty"`
	ClaimedAt      *time.Time   `json:"-"`
	Attempts       int          `gorm:"not null;default:0" json:"attempts"`
	LastError      string       `gorm:"size:500" json:"last_error,omitempty"`
	DeadAt         *time.Time   `json:"dead_at,omitempty"`
	DeadReason     string       `gorm:"size:255" json:"dead_reason,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook is called before creating a new reminder
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the Reminder model
func (Reminder) TableName() string {
	return "event_reminder"
}
