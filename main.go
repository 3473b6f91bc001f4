package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vee4/vee4-order-api/config"
	"github.com/vee4/vee4-order-api/controllers"
	"github.com/vee4/vee4-order-api/middleware"
	"github.com/vee4/vee4-order-api/models"
	"github.com/vee4/vee4-order-api/services"
)

func main() {
	log.Println("Starting Vee4 Order Management API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Message{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize document storage backend
	if _, err := services.InitDocumentStorage(cfg); err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}
	log.Printf("Document storage backend: %s", cfg.StorageBackend)

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all API routes.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	authenticated := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		users := v1.Group("/users", authenticated)
		{
			users.POST("", controllers.CreateUser)
			users.GET("/me", controllers.GetMyProfile)
			users.PUT("/me", controllers.UpdateMyProfile)
		}

		orders := v1.Group("/orders", authenticated)
		{
			orders.POST("", controllers.CreateOrder)
			orders.GET("", controllers.ListMyOrders)
			orders.GET("/:id", controllers.GetOrder)
			orders.POST("/:id/messages", controllers.SendMessage)
			orders.GET("/:id/documents/:documentType", controllers.DownloadDocument)
		}

		notifications := v1.Group("/notifications", authenticated)
		{
			notifications.GET("", controllers.ListNotifications)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
		}

		admin := v1.Group("/admin", authenticated, controllers.RequireAdmin())
		{
			admin.GET("/orders", controllers.ListOrders)
			admin.GET("/orders/:id", controllers.GetOrderAdmin)
			admin.PUT("/orders/:id/approve", controllers.ApproveOrder)
			admin.PUT("/orders/:id/reject", controllers.RejectOrder)
			admin.PUT("/orders/:id/status", controllers.UpdateOrderStatus)
			admin.POST("/orders/:id/messages", controllers.SendMessage)
			admin.POST("/orders/:id/documents/:documentType", controllers.UploadDocument)
			admin.GET("/orders/:id/documents/:documentType", controllers.DownloadDocument)
			admin.GET("/customers", controllers.ListCustomers)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vee4 Order Management API is running",
	})
}
