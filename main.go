package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"car-station-server/config"
	"car-station-server/database"
	"car-station-server/middleware"
	"car-station-server/routes"
	ws "car-station-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Seed the starter catalog on an empty database
	if err := database.SeedServices(); err != nil {
		log.Printf("Catalog seeding failed: %v", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers and CORS
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Car Station Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Admin dashboard event feed
	eventHub := ws.NewHub()
	go eventHub.Run()
	routes.InitEventHub(eventHub)

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (no authentication required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Catalog routes (public)
		serviceRoutes := api.Group("/services")
		routes.RegisterServiceRoutes(serviceRoutes)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			userRoutes := protected.Group("/users")
			routes.RegisterUserRoutes(userRoutes)

			bookingRoutes := protected.Group("/bookings")
			routes.RegisterBookingRoutes(bookingRoutes)

			paymentRoutes := protected.Group("/payments")
			routes.RegisterPaymentRoutes(paymentRoutes)

			// Admin routes
			adminRoutes := protected.Group("/admin")
			adminRoutes.Use(middleware.AdminOnly())
			{
				adminRoutes.POST("/auth/register", routes.RegisterAdmin)

				adminServiceRoutes := adminRoutes.Group("/services")
				routes.RegisterAdminServiceRoutes(adminServiceRoutes)
			}
		}

		// Event feed does its own token handling (query parameter)
		routes.RegisterEventRoutes(api, eventHub)
	}

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
