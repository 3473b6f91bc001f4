package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vee4/vee4-order-api/config"
	"github.com/vee4/vee4-order-api/services"
	"github.com/vee4/vee4-order-api/utils"
)

// CreateOrder handles POST /api/v1/orders - places a new order (customers only).
// The request is multipart: the product specification fields plus the
// designFile PDF.
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	spec, ok := parseOrderSpec(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("designFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Please upload a design file",
			},
		})
		return
	}

	if err := utils.ValidateDocumentFile(fileHeader); err != nil {
		handleServiceError(c, err)
		return
	}

	key, err := services.GetDocumentStorage().Store(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store design file",
			},
		})
		return
	}
	spec.DesignFile = key

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	order, err := orderService.Create(user, spec)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   orderSummary(order),
	})
}

// parseOrderSpec reads the product specification out of the multipart form,
// writing the error response on malformed numeric fields.
func parseOrderSpec(c *gin.Context) (services.CreateOrderInput, bool) {
	spec := services.CreateOrderInput{
		ProductType:            c.PostForm("productType"),
		MetalType:              c.PostForm("metalType"),
		Color:                  c.PostForm("color"),
		AdditionalRequirements: c.PostForm("additionalRequirements"),
	}

	numeric := []struct {
		field string
		dst   *float64
	}{
		{"thickness", &spec.Thickness},
		{"width", &spec.Width},
		{"height", &spec.Height},
	}
	for _, n := range numeric {
		raw := c.PostForm(n.field)
		if raw == "" {
			continue // required-field validation happens in the service
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": n.field + " must be a number",
				},
			})
			return spec, false
		}
		*n.dst = value
	}

	if raw := c.PostForm("quantity"); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "quantity must be a whole number",
				},
			})
			return spec, false
		}
		spec.Quantity = quantity
	}

	return spec, true
}

// ListMyOrders handles GET /api/v1/orders - lists the current customer's orders
func ListMyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	orders, err := orderService.ListForCustomer(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	summaries := make([]gin.H, 0, len(orders))
	for i := range orders {
		summaries = append(summaries, orderSummary(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  summaries,
	})
}

// GetOrder handles GET /api/v1/orders/:id - order detail with the message
// thread and the derived production progress view
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	detail, err := orderService.Detail(user, orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	order := detail.Order
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":                     order.ID,
			"orderNumber":            order.OrderNumber,
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

// DownloadDocument handles document downloads for both the customer and
// admin routes; ownership is enforced by the service.
func DownloadDocument(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	documentType := c.Param("documentType")

	orderService := services.NewOrderService(config.GetDB(), config.GetConfig().StrictTransitions)
	key, order, err := orderService.DocumentKey(user, orderID, documentType)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	reader, err := services.GetDocumentStorage().Open(key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to retrieve document",
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", utils.PDFContentType)
	c.Header("Content-Disposition", "attachment; filename="+documentType+"-"+order.OrderNumber+".pdf")
	c.DataFromReader(http.StatusOK, -1, utils.PDFContentType, reader, nil)
}
