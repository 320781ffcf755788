package handler

import (
	"net/http"

	"quickcart/internal/model"
	"quickcart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NotificationHandler handles push token registration and dispatch.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

// StoreToken handles POST /api/admin/notifications/store-token.
func (h *NotificationHandler) StoreToken(c *gin.Context) {
	var req model.StoreTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.StoreToken(c.Request.Context(), &req); err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "Token stored successfully", nil)
}

// Broadcast handles POST /api/admin/notifications/send. A future
// triggerTime answers 202 with the scheduled time.
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req model.BroadcastRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Broadcast(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	if result.ScheduledAt != nil {
		respond(c, http.StatusAccepted, "Notification scheduled", result)
		return
	}
	respond(c, http.StatusOK, "Notifications sent successfully", result)
}

// SendToUser handles POST /api/admin/notifications/send-to-user.
func (h *NotificationHandler) SendToUser(c *gin.Context) {
	var req model.SendToUserRequest
	if !bindJSON(c, &req) {
		return
	}

	tickets, err := h.service.SendToUser(c.Request.Context(), req.UserID, req.Title, req.Body)
	if err != nil {
		respondError(c, err, h.logger)
		return
	}

	respond(c, http.StatusOK, "Notification sent successfully", tickets)
}
