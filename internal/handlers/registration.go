package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"eaumembers/internal/models"
	"eaumembers/internal/services"
	"eaumembers/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegistrationHandler serves event registration endpoints. Registering is the
// single point where reminder rows are created.
type RegistrationHandler struct {
	db    *gorm.DB
	store services.ReminderStore
}

func NewRegistrationHandler(db *gorm.DB, store services.ReminderStore) *RegistrationHandler {
	return &RegistrationHandler{db: db, store: store}
}

// RegisterForEvent confirms a registration and schedules its reminders.
// A reminder-store failure fails the whole request; reminders are never
// silently dropped.
func (h *RegistrationHandler) RegisterForEvent(c *gin.Context) {
	var request models.CreateRegistrationRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		handleError(c, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), err)
		return
	}

	eventID := c.Param("id")

	var event models.Event
	if err := h.db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Event not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to load event", err)
		return
	}

	if event.StartAt.Before(time.Now()) {
		handleError(c, http.StatusBadRequest, "Event has already started", fmt.Errorf("event %s started at %v", event.ID, event.StartAt))
		return
	}

	responses := datatypes.JSON([]byte("{}"))
	if len(request.Responses) > 0 {
		raw, err := json.Marshal(request.Responses)
		if err != nil {
			handleError(c, http.StatusBadRequest, "Invalid responses payload", err)
			return
		}
		responses = datatypes.JSON(raw)
	}

	registration := models.Registration{
		EventID:   event.ID,
		UserID:    request.UserID,
		FullName:  request.FullName,
		Email:     request.Email,
		Status:    "confirmed",
		Responses: responses,
	}

	if err := h.db.Create(&registration).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create registration", err)
		return
	}

	now := time.Now()
	reminders := services.ComputeReminders(event.ID, request.UserID, registration.ID, request.Email, event.StartAt, now)

	created, err := h.store.InsertMany(c.Request.Context(), reminders)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Registration saved but reminders could not be scheduled", err)
		return
	}

	log.Printf("Registered %s for event %s from %s, scheduled %d reminders",
		request.UserID, event.ID, utils.GetRealClientIP(c), created)

	c.JSON(http.StatusCreated, gin.H{
		"registration":        registration,
		"reminders_scheduled": created,
	})
}

// CancelRegistration marks a registration cancelled and removes that user's
// pending reminders for the event.
func (h *RegistrationHandler) CancelRegistration(c *gin.Context) {
	registrationID := c.Param("id")

	var registration models.Registration
	if err := h.db.Where("id = ?", registrationID).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			handleError(c, http.StatusNotFound, "Registration not found", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to load registration", err)
		return
	}

	if err := h.db.Model(&registration).Updates(map[string]interface{}{
		"status":     "cancelled",
		"updated_at": time.Now(),
	}).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to cancel registration", err)
		return
	}

	if err := h.store.DeleteByEventAndUser(c.Request.Context(), registration.EventID, registration.UserID); err != nil {
		handleError(c, http.StatusInternalServerError, "Cancelled but failed to remove pending reminders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
