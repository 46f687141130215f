package services

import (
	"context"
	"errors"
	"fmt"

	"eaumembers/internal/models"

	"gorm.io/gorm"
)

// ErrEventNotFound is returned when the referenced event no longer exists.
var ErrEventNotFound = errors.New("event not found")

// EventFinder resolves the event a reminder refers to.
type EventFinder interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

// EventService implements EventFinder on the events table.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}
	return &event, nil
}
