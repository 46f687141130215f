package handlers

import (
	"net/http"
	"strconv"

	"eaumembers/internal/services"

	"github.com/gin-gonic/gin"
)

// ReminderAdminHandler exposes monitoring and cleanup over the reminder table.
type ReminderAdminHandler struct {
	store services.ReminderStore
}

func NewReminderAdminHandler(store services.ReminderStore) *ReminderAdminHandler {
	return &ReminderAdminHandler{store: store}
}

func listLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		return 100
	}
	return limit
}

// ListPending returns unsent reminders, soonest first
func (h *ReminderAdminHandler) ListPending(c *gin.Context) {
	reminders, err := h.store.ListPending(c.Request.Context(), listLimit(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list pending reminders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(reminders), "reminders": reminders})
}

// ListDead returns dead-lettered reminders, most recent first
func (h *ReminderAdminHandler) ListDead(c *gin.Context) {
	reminders, err := h.store.ListDead(c.Request.Context(), listLimit(c))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to list dead reminders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(reminders), "reminders": reminders})
}

// DeleteForEvent removes every reminder row for an event
func (h *ReminderAdminHandler) DeleteForEvent(c *gin.Context) {
	if err := h.store.DeleteByEvent(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete reminders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
