package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/Julius14h/FlyNext/internal/repository"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the polling endpoints the UI reads; the booking
// core only ever writes notification rows.
type NotificationHandler struct {
	notifications repository.NotificationRepository
}

func NewNotificationHandler(notifications repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.GET("/notifications", h.list)
	router.GET("/notifications/unread", h.unreadCount)
	router.PATCH("/notifications/:id/read", h.markRead)
}

type notificationResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	BookingID int64  `json:"bookingId,omitempty"`
	Message   string `json:"message"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

func (h *NotificationHandler) list(c *gin.Context) {
	user := currentUser(c)
	notifications, err := h.notifications.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	resp := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) unreadCount(c *gin.Context) {
	user := currentUser(c)
	count, err := h.notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID."})
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		BookingID: n.BookingID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
