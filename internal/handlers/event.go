package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"eaumembers/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EventHandler serves the event catalog endpoints
type EventHandler struct {
	db *gorm.DB
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

// CreateEvent handles the creation of a new event
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var request models.CreateEventRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), err)
		return
	}

	if request.StartAt.Before(time.Now()) {
		handleError(c, http.StatusBadRequest, "Event start must be in the future", fmt.Errorf("start_at %v is in the past", request.StartAt))
		return
	}

	event := models.Event{
		Slug:         request.Slug,
		Title:        request.Title,
		Description:  request.Description,
		StartAt:      request.StartAt,
		EndAt:        request.EndAt,
		LocationType: request.LocationType,
		VenueName:    request.VenueName,
		VirtualLink:  request.VirtualLink,
	}

	if err := h.db.Create(&event).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create event", err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent returns a single event by id
func (h *EventHandler) GetEvent(c *gin.Context) {
	var event models.Event
	if err := h.db.Where("id = ?", c.Param("id")).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Event not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to load event", err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListEvents returns events, optionally restricted to upcoming ones
func (h *EventHandler) ListEvents(c *gin.Context) {
	query := h.db.Order("start_at ASC")

	if c.Query("upcoming") == "true" {
		query = query.Where("start_at > ?", time.Now())
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}
