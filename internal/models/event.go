package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationType represents how an event is delivered
type LocationType string

const (
	VirtualLocation  LocationType = "virtual"
	InPersonLocation LocationType = "in_person"
)

// Event represents an event in the catalog
type Event struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Slug         string       `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	StartAt      time.Time    `gorm:"not null;index" json:"start_at"`
	EndAt        time.Time    `json:"end_at"`
	LocationType LocationType `gorm:"size:20;not null;default:'in_person'" json:"location_type"`
	VenueName    string       `gorm:"size:255" json:"venue_name"`
	VirtualLink  string       `gorm:"size:500" json:"virtual_link"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// Location returns the human-readable location used in reminder emails.
func (e *Event) Location() string {
	if e.LocationType == VirtualLocation {
		return "Online Event"
	}
	if e.VenueName == "" {
		return "TBA"
	}
	return e.VenueName
}

// BeforeCreate hook is called before creating a new event
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	return nil
}

// TableName specifies the table name for the Event model
func (Event) TableName() string {
	return "event"
}

// CreateEventRequest represents the data needed to create a new event
type CreateEventRequest struct {
	Slug         string       `json:"slug" binding:"required"`
	Title        string       `json:"title" binding:"required"`
	Description  string       `json:"description"`
	StartAt      time.Time    `json:"start_at" binding:"required"`
	EndAt        time.Time    `json:"end_at"`
	LocationType LocationType `json:"location_type" binding:"required,oneof=virtual in_person"`
	VenueName    string       `json:"venue_name"`
	VirtualLink  string       `json:"virtual_link"`
}
