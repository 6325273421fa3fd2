package controllers

import (
	"net/http"

	"job-board-api/realtime"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notifications *services.NotificationService
	hub           *realtime.Hub
}

func NewNotificationController(notifications *services.NotificationService, hub *realtime.Hub) *NotificationController {
	return &NotificationController{notifications: notifications, hub: hub}
}

// GetNotifications supports ?page=, ?limit= and ?unreadOnly=true
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, err := nc.notifications.List(c.Request.Context(), id.UserID,
		queryInt(c, "page", 1),
		queryInt(c, "limit", 0),
		queryBool(c, "unreadOnly"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	n, err := nc.notifications.UnreadCount(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	notifID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	n, err := nc.notifications.MarkRead(c.Request.Context(), id.UserID, notifID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notification": n})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	updated, err := nc.notifications.MarkAllRead(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": updated})
}

func (nc *NotificationController) Delete(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	notifID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := nc.notifications.Delete(c.Request.Context(), id.UserID, notifID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Stream upgrades to a websocket that receives new notifications as they are stored
func (nc *NotificationController) Stream(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	if nc.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime notifications are disabled"})
		return
	}
	nc.hub.ServeUser(c.Writer, c.Request, id.UserID)
}
