package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vee4/vee4-order-api/config"
	"github.com/vee4/vee4-order-api/services"
	"github.com/vee4/vee4-order-api/utils"
)

// ListOrders handles GET /api/v1/admin/orders - all orders with optional
// status, customer and creation-date filters
func ListOrders(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}

	filters := services.OrderFilters{
		Status:   c.Query("status"),
		Customer: c.Query("customer"),
	}

	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &filters.StartDate},
		{"endDate", &filters.EndDate},
	} {
		parsed, err := parseDateParam(c.Query(q.name))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": q.name + " must be a date (YYYY-MM-DD)",
				},
			})
			return
		}
		*q.dst = parsed
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	orders, err := orderService.ListAll(admin, filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	formatted := make([]gin.H, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		formatted = append(formatted, gin.H{
			"id":          order.ID,
			"orderNumber": order.OrderNumber,
			"customer": gin.H{
				"id":      order.Customer.ID,
				"name":    order.Customer.Name,
				"company": order.Customer.Company,
			},
			"status":    order.Status,
			"createdAt": order.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  formatted,
	})
}

// GetOrderAdmin handles GET /api/v1/admin/orders/:id - full order detail
// including customer contact information
func GetOrderAdmin(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	detail, err := orderService.Detail(admin, orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	order := detail.Order
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":          order.ID,
			"orderNumber": order.OrderNumber,
			"customer": gin.H{
				"id":      order.Customer.ID,
				"name":    order.Customer.Name,
				"company": order.Customer.Company,
				"email":   order.Customer.Email,
				"phone":   order.Customer.Phone,
			},
			"status":                 order.Status,
			"createdAt":              order.CreatedAt,
			"productType":            order.ProductType,
			"metalType":              order.MetalType,
			"thickness":              order.Thickness,
			"width":                  order.Width,
			"height":                 order.Height,
			"quantity":               order.Quantity,
			"color":                  order.Color,
			"additionalRequirements": order.AdditionalRequirements,
			"designFile":             order.DesignFile,
			"testReport":             order.TestReport,
			"invoice":                order.Invoice,
			"expectedDeliveryDate":   order.ExpectedDeliveryDate,
			"messages":               formatMessages(detail.Messages),
			"progress":               detail.Progress,
		},
	})
}

// TransitionRequest represents the request body shared by the approve,
// reject and status-update endpoints.
type TransitionRequest struct {
	Status               string `json:"status"`
	ExpectedDeliveryDate string `json:"expectedDeliveryDate"`
	NotifyCustomer       bool   `json:"notifyCustomer"`
	Message              string `json:"message"`
}

func (r *TransitionRequest) options(c *gin.Context) (services.TransitionOptions, bool) {
	opts := services.TransitionOptions{
		NotifyCustomer: r.NotifyCustomer,
		Message:        r.Message,
	}
	parsed, err := parseDateParam(r.ExpectedDeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "expectedDeliveryDate must be a date (YYYY-MM-DD)",
			},
		})
		return opts, false
	}
	opts.ExpectedDeliveryDate = parsed
	return opts, true
}

// ApproveOrder handles PUT /api/v1/admin/orders/:id/approve
func ApproveOrder(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
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
	opts, ok := req.options(c)
	if !ok {
		return
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	order, err := orderService.Approve(admin, orderID, opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   transitionResult(order),
	})
}

// RejectOrder handles PUT /api/v1/admin/orders/:id/reject
func RejectOrder(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
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

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	order, err := orderService.Reject(admin, orderID, services.TransitionOptions{
		NotifyCustomer: req.NotifyCustomer,
		Message:        req.Message,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   transitionResult(order),
	})
}

// UpdateOrderStatus handles PUT /api/v1/admin/orders/:id/status - the
// generic transition for pipeline steps after approval
func UpdateOrderStatus(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TransitionRequest
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
	opts, ok := req.options(c)
	if !ok {
		return
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	order, err := orderService.UpdateStatus(admin, orderID, req.Status, opts)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   transitionResult(order),
	})
}

// UploadDocument handles POST /api/v1/admin/orders/:id/documents/:documentType
// - uploads a test report or invoice PDF and attaches it to the order
func UploadDocument(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	documentType := c.Param("documentType")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Please upload a file",
			},
		})
		return
	}

	if err := utils.ValidateDocumentFile(fileHeader); err != nil {
		handleServiceError(c, err)
		return
	}

	storage := services.GetDocumentStorage()
	key, err := storage.Store(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store document",
			},
		})
		return
	}

	notify := c.PostForm("notifyCustomer") == "true"

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	_, err = orderService.AttachDocument(admin, orderID, documentType, key, notify)
	if err != nil {
		var partial *services.PartialFanoutError
		if errors.As(err, &partial) {
			// The document is attached; report the failed notification
			// instead of pretending the whole operation failed.
			c.JSON(http.StatusCreated, gin.H{
				"success": true,
				"document": gin.H{
					"type":       documentType,
					"url":        key,
					"uploadedAt": time.Now(),
				},
				"warning": gin.H{
					"code":    "PARTIAL_FAILURE",
					"message": "Document attached but customer notification failed",
				},
			})
			return
		}

		// The attach never happened; clean up the orphaned upload.
		if deleteErr := storage.Delete(key); deleteErr != nil {
			log.Printf("warning: failed to delete orphaned document %s: %v", key, deleteErr)
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"document": gin.H{
			"type":       documentType,
			"url":        key,
			"uploadedAt": time.Now(),
		},
	})
}

// ListCustomers handles GET /api/v1/admin/customers - every customer with
// their order count
func ListCustomers(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	customers, err := orderService.ListCustomers(admin)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"customers": customers,
	})
}
