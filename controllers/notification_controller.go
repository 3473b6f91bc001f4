package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vee4/vee4-order-api/config"
	"github.com/vee4/vee4-order-api/services"
)

// ListNotifications handles GET /api/v1/notifications - the current user's
// notifications, newest first
func ListNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	notificationService := services.NewNotificationService(config.GetDB())
	notifications, err := notificationService.List(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read.
// Marking an already-read notification succeeds without change.
func MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notificationService := services.NewNotificationService(config.GetDB())
	notification, err := notificationService.MarkRead(notificationID, user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"notification": notification,
	})
}

// MarkAllNotificationsRead handles PUT /api/v1/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	notificationService := services.NewNotificationService(config.GetDB())
	if err := notificationService.MarkAllRead(user.ID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
	})
}
