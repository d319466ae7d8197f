package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/peerfeed/internal/middleware"
	"github.com/charlesng35/peerfeed/internal/realtime"
	"github.com/charlesng35/peerfeed/internal/services"
	"github.com/charlesng35/peerfeed/pkg/errors"
	"github.com/charlesng35/peerfeed/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for notifications.
type NotificationHandler struct {
	service *services.NotificationService
	hub     *realtime.Hub
	allowed map[string]struct{}
}

// NewNotificationHandler constructs a notification handler. hub may be nil when realtime
// delivery is disabled; the stream endpoint then answers 404.
func NewNotificationHandler(service *services.NotificationService, hub *realtime.Hub) *NotificationHandler {
	allowed := make(map[string]struct{}, len(realtime.DefaultStreams))
	for _, stream := range realtime.DefaultStreams {
		allowed[stream] = struct{}{}
	}
	return &NotificationHandler{service: service, hub: hub, allowed: allowed}
}

type createNotificationRequest struct {
	UserID  uint   `json:"user_id"`
	Title   string `json:"title" validate:"max=200"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// List returns notifications newest first. ?user_id and ?unread=true narrow the result.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := parseOptionalUintQuery(c, "user_id")
	if !ok {
		return
	}

	items, err := h.service.List(requestContext(c), services.ListNotificationsInput{
		UserID:     userID,
		UnreadOnly: parseBoolQuery(c, "unread"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// MarkRead flags a notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Notification")
	if !ok {
		return
	}

	notification, err := h.service.MarkRead(requestContext(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Acknowledge(c, http.StatusOK, notification.ID, "Notification marked as read")
}

// Create stores a general purpose notification.
func (h *NotificationHandler) Create(c *gin.Context) {
	var body createNotificationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	notification, err := h.service.Create(requestContext(c), services.CreateNotificationInput{
		UserID:  body.UserID,
		Title:   body.Title,
		Message: body.Message,
		Type:    body.Type,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Acknowledge(c, http.StatusCreated, notification.ID, "Notification created successfully")
}

// Stream upgrades the connection to a WebSocket carrying the caller's notifications.
// Clients may pick streams with ?streams=notifications,feedback.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, errors.NewNotFound("Realtime stream disabled"))
		return
	}

	userID := middleware.UserID(c)
	if userID == 0 {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	streams := realtime.DefaultStreams
	if raw := strings.TrimSpace(c.Query("streams")); raw != "" {
		streams = strings.Split(raw, ",")
	}

	h.hub.Serve(userID, streams, h.allowed, c.Writer, c.Request)
}
