package services

import (
	"context"
	"time"

	"eaumembers/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// claimTTL is how long a dispatch claim is honoured. A claim older than this
// belongs to a poller that crashed mid-send; the row becomes claimable again,
// accepting at most one duplicate send after a restart.
const claimTTL = 5 * time.Minute

// ReminderStore is the persistence surface the scheduler and dispatcher
// depend on.
type ReminderStore interface {
	// InsertMany bulk-creates reminder rows. Rows that collide on the
	// (event_id, user_id, reminder_type) key are silently skipped, so
	// re-running the policy for the same registration is a no-op. Returns
	// the number of rows actually created.
	InsertMany(ctx context.Context, reminders []models.Reminder) (int64, error)

	// FindDue returns unsent, unclaimed, non-dead reminders with
	// scheduled_at <= now, oldest-due first, capped at limit.
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)

	// Claim attempts to take ownership of a row for dispatch. Exactly one
	// of any number of racing claimants succeeds. Claiming counts as a
	// delivery attempt.
	Claim(ctx context.Context, id string, now time.Time) (bool, error)

	// Release gives up a claim after a transient failure; the row stays
	// due and is retried on a later tick.
	Release(ctx context.Context, id string, reason string) error

	// MarkSent transitions a row to sent, recording when and under what
	// subject it went out. Idempotent: a second call is a no-op and
	// leaves the original sent_at untouched.
	MarkSent(ctx context.Context, id string, sentAt time.Time, subject string) error

	// MarkDead moves a row to the dead-letter state; FindDue never
	// returns it again.
	MarkDead(ctx context.Context, id string, reason string) error

	DeleteByEvent(ctx context.Context, eventID string) error
	DeleteByEventAndUser(ctx context.Context, eventID, userID string) error

	ListPending(ctx context.Context, limit int) ([]models.Reminder, error)
	ListDead(ctx context.Context, limit int) ([]models.Reminder, error)
}

// GormReminderStore implements ReminderStore on a GORM connection.
type GormReminderStore struct {
	db *gorm.DB
}

func NewGormReminderStore(db *gorm.DB) *GormReminderStore {
	return &GormReminderStore{db: db}
}

func (s *GormReminderStore) InsertMany(ctx context.Context, reminders []models.Reminder) (int64, error) {
	if len(reminders) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "event_id"},
			{Name: "user_id"},
			{Name: "reminder_type"},
		},
		DoNothing: true,
	}).Create(&reminders)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *GormReminderStore) FindDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	staleBefore := now.Add(-claimTTL)
	err := s.db.WithContext(ctx).
		Where("sent = ? AND dead_at IS NULL AND scheduled_at <= ?", false, now).
		Where("claimed_at IS NULL OR claimed_at <= ?", staleBefore).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}
	return reminders, nil
}

func (s *GormReminderStore) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	staleBefore := now.Add(-claimTTL)
	result := s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ? AND sent = ? AND dead_at IS NULL", id, false).
		Where("claimed_at IS NULL OR claimed_at <= ?", staleBefore).
		Updates(map[string]interface{}{
			"claimed_at": now,
			"attempts":   gorm.Expr("attempts + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *GormReminderStore) Release(ctx context.Context, id string, reason string) error {
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"claimed_at": nil,
			"last_error": truncateReason(reason, 500),
		}).Error
}

func (s *GormReminderStore) MarkSent(ctx context.Context, id string, sentAt time.Time, subject string) error {
	// Guarded by sent = false so a repeated call never overwrites the
	// original sent_at.
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]interface{}{
			"sent":       true,
			"sent_at":    sentAt,
			"subject":    subject,
			"claimed_at": nil,
		}).Error
}

func (s *GormReminderStore) MarkDead(ctx context.Context, id string, reason string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ? AND dead_at IS NULL", id).
		Updates(map[string]interface{}{
			"dead_at":     now,
			"dead_reason": truncateReason(reason, 255),
			"claimed_at":  nil,
		}).Error
}

func (s *GormReminderStore) DeleteByEvent(ctx context.Context, eventID string) error {
	return s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&models.Reminder{}).Error
}

func (s *GormReminderStore) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	return s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.Reminder{}).Error
}

func (s *GormReminderStore) ListPending(ctx context.Context, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.db.WithContext(ctx).
		Where("sent = ? AND dead_at IS NULL", false).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

func (s *GormReminderStore) ListDead(ctx context.Context, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.db.WithContext(ctx).
		Where("dead_at IS NOT NULL").
		Order("dead_at DESC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

func truncateReason(reason string, max int) string {
	if len(reason) > max {
		return reason[:max]
	}
	return reason
}
