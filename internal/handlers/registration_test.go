package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"eaumembers/internal/models"
	"eaumembers/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *services.GormReminderStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "handlers.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Event{}, &models.Registration{}, &models.Reminder{}))

	store := services.NewGormReminderStore(db)

	router := gin.New()
	eventHandler := NewEventHandler(db)
	registrationHandler := NewRegistrationHandler(db, store)
	adminHandler := NewReminderAdminHandler(store)

	router.POST("/events", eventHandler.CreateEvent)
	router.GET("/events/:id", eventHandler.GetEvent)
	router.POST("/events/:id/registrations", registrationHandler.RegisterForEvent)
	router.DELETE("/registrations/:id", registrationHandler.CancelRegistration)
	router.GET("/admin/reminders/pending", adminHandler.ListPending)
	router.DELETE("/admin/events/:id/reminders", adminHandler.DeleteForEvent)

	return router, db, store
}

func createTestEvent(t *testing.T, db *gorm.DB, start time.Time) models.Event {
	t.Helper()
	event := models.Event{
		Slug:         "pd-day",
		Title:        "PD Day",
		StartAt:      start,
		LocationType: models.InPersonLocation,
		VenueName:    "Brisbane",
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterForEventSchedulesReminders(t *testing.T) {
	router, db, store := newTestRouter(t)
	event := createTestEvent(t, db, time.Now().Add(8*24*time.Hour))

	w := doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", models.CreateRegistrationRequest{
		UserID:   "user-1",
		Email:    "member@example.com",
		FullName: "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		RemindersScheduled int `json:"reminders_scheduled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.RemindersScheduled)

	pending, err := store.ListPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, pending, 5)
	for _, r := range pending {
		assert.Equal(t, event.ID, r.EventID)
		assert.Equal(t, "member@example.com", r.RecipientEmail)
	}
}

func TestRegisterTwiceDoesNotDuplicateReminders(t *testing.T) {
	router, db, store := newTestRouter(t)
	event := createTestEvent(t, db, time.Now().Add(8*24*time.Hour))

	req := models.CreateRegistrationRequest{UserID: "user-1", Email: "member@example.com"}

	w := doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", req)
	require.Equal(t, http.StatusCreated, w.Code)

	pending, err := store.ListPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, pending, 5, "second registration must not duplicate reminder rows")
}

func TestRegisterForNearEventSchedulesOnlyFutureKinds(t *testing.T) {
	router, db, store := newTestRouter(t)
	event := createTestEvent(t, db, time.Now().Add(2*time.Hour))

	w := doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", models.CreateRegistrationRequest{
		UserID: "user-1",
		Email:  "member@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	pending, err := store.ListPending(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ThirtyMinBefore, pending[0].Kind)
	assert.Equal(t, models.EventLive, pending[1].Kind)
}

func TestRegisterForUnknownEventFails(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/events/nope/registrations", models.CreateRegistrationRequest{
		UserID: "user-1",
		Email:  "member@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterForStartedEventFails(t *testing.T) {
	router, db, _ := newTestRouter(t)
	event := createTestEvent(t, db, time.Now().Add(-time.Minute))

	w := doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", models.CreateRegistrationRequest{
		UserID: "user-1",
		Email:  "member@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelRegistrationRemovesPendingReminders(t *testing.T) {
	router, db, store := newTestRouter(t)
	event := createTestEvent(t, db, time.Now().Add(8*24*time.Hour))

	w := doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", models.CreateRegistrationRequest{
		UserID: "user-1",
		Email:  "member@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Registration models.Registration `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(router, http.MethodDelete, "/registrations/"+resp.Registration.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	pending, err := store.ListPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, pending)

	var registration models.Registration
	require.NoError(t, db.Where("id = ?", resp.Registration.ID).First(&registration).Error)
	assert.Equal(t, "cancelled", registration.Status)
}

func TestAdminDeleteForEvent(t *testing.T) {
	router, db, store := newTestRouter(t)
	event := createTestEvent(t, db, time.Now().Add(8*24*time.Hour))

	w := doJSON(router, http.MethodPost, "/events/"+event.ID+"/registrations", models.CreateRegistrationRequest{
		UserID: "user-1",
		Email:  "member@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodDelete, "/admin/events/"+event.ID+"/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	pending, err := store.ListPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
