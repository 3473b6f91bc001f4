package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vee4/vee4-order-api/config"
	"github.com/vee4/vee4-order-api/middleware"
	"github.com/vee4/vee4-order-api/models"
	"github.com/vee4/vee4-order-api/services"
	"github.com/vee4/vee4-order-api/utils"
)

// currentUser resolves the authenticated principal to its users row. On
// failure it writes the error response and returns false.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// requireAdmin resolves the principal and rejects non-admin callers.
func requireAdmin(c *gin.Context) (*models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Access forbidden: Admin role required",
			},
		})
		return nil, false
	}
	return user, true
}

// RequireAdmin guards a route group so only admin principals reach its
// handlers. Shared handlers mounted under the admin surface rely on this
// for their role check.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			c.Abort()
			return
		}
		c.Next()
	}
}

// parseIDParam parses a numeric URL parameter, writing the error response
// when it is missing or malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// handleServiceError maps service-layer errors onto the response envelope.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var uploadErr *utils.FileUploadError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Resource not found",
			},
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to perform this action",
			},
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "Order status does not permit this operation",
			},
		})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Invalid status",
			},
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFLICT",
				"message": "Order was modified concurrently, please retry",
			},
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validationErr.Error(),
			},
		})
	case errors.As(err, &uploadErr):
		status := http.StatusBadRequest
		if uploadErr.Code == "FILE_TOO_LARGE" {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    uploadErr.Code,
				"message": uploadErr.Message,
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Something went wrong",
			},
		})
	}
}

// orderSummary is the shape used by listing endpoints.
func orderSummary(order *models.Order) gin.H {
	return gin.H{
		"id":          order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
		"createdAt":   order.CreatedAt,
	}
}

// transitionResult is the shape returned by approve/reject/status updates.
func transitionResult(order *models.Order) gin.H {
	return gin.H{
		"id":                   order.ID,
		"orderNumber":          order.OrderNumber,
		"status":               order.Status,
		"expectedDeliveryDate": order.ExpectedDeliveryDate,
		"updatedAt":            order.UpdatedAt,
	}
}

// formatMessages shapes an order's thread for responses. Admin senders are
// presented under the shop name rather than the staff member's own.
func formatMessages(messages []models.Message) []gin.H {
	formatted := make([]gin.H, 0, len(messages))
	for _, message := range messages {
		senderName := message.Sender.Name
		if message.Sender.IsAdmin() {
			senderName = "Vee4 Admin"
		}
		formatted = append(formatted, gin.H{
			"id": message.ID,
			"sender": gin.H{
				"id":   message.SenderID,
				"name": senderName,
			},
			"content":   message.Content,
			"createdAt": message.CreatedAt,
		})
	}
	return formatted
}

// parseDateParam accepts a date-only or RFC3339 timestamp query value.
// A date-only value parses to midnight, so an endDate filter excludes
// orders created later that same day.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
