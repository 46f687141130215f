package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Registration represents a user's registration for an event. A confirmed
// registration is the trigger that schedules that user's reminders.
type Registration struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	EventID   string         `gorm:"size:36;not null;index:idx_registration_event_user" json:"event_id"`
	UserID    string         `gorm:"size:36;not null;index:idx_registration_event_user" json:"user_id"`
	FullName  string         `gorm:"size:255" json:"full_name"`
	Email     string         `gorm:"size:255;not null" json:"email"`
	Status    string         `gorm:"size:20;not null;default:'confirmed'" json:"status"` // "confirmed", "cancelled"
	Responses datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"responses"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before creating a new registration
func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	if r.Status == "" {
		r.Status = "confirmed"
	}
	return nil
}

// TableName specifies the table name for the Registration model
func (Registration) TableName() string {
	return "event_registration"
}

// CreateRegistrationRequest represents the data needed to register for an event
type CreateRegistrationRequest struct {
	UserID    string            `json:"user_id" binding:"required"`
	Email     string            `json:"email" binding:"required,email"`
	FullName  string            `json:"full_name"`
	Responses map[string]string `json:"responses"`
}
