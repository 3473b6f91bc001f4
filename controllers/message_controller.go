package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vee4/vee4-order-api/config"
	"github.com/vee4/vee4-order-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage handles POST /api/v1/orders/:id/messages and
// POST /api/v1/admin/orders/:id/messages - posts a message on an order.
// Customers may only message on their own orders; an admin message also
// notifies the order's customer.
func SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	messageService := services.NewMessageService(config.GetDB())
	message, err := messageService.PostMessage(user, orderID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": gin.H{
			"id":        message.ID,
			"content":   message.Content,
			"createdAt": message.CreatedAt,
		},
	})
}
