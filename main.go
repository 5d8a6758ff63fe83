package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"patchbay/config"
	"patchbay/database"
	"patchbay/handlers"
	"patchbay/middleware"
	"patchbay/services"
)

func main() {
	cfg := config.Load()

	// Database
	database.Connect(cfg)
	database.Migrate()
	database.ConnectRedis(cfg)

	// Services
	status := services.NewStatus(cfg.ReadOnly)
	if cfg.ReadOnly {
		log.Printf("[Main] starting in read-only mode")
	}
	sessionStore := services.NewSessionStore(database.DB, status)
	previewStore := services.NewPreviewStore(database.DB, status)
	validator := services.NewChangeValidator(services.DefaultPathPolicy())
	previewService := services.NewPreviewService(sessionStore, previewStore, validator)

	// Handlers
	sessionsHandler := handlers.NewSessionsHandler(cfg, sessionStore, previewStore)
	previewsHandler := handlers.NewPreviewsHandler(cfg, sessionStore, previewStore, previewService)
	adminHandler := handlers.NewAdminHandler(status)
	syncHandler := handlers.NewSyncHandler(cfg)

	// Router
	r := gin.Default()
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.SecurityHeaders())

	// Rate limiter for mutating endpoints
	writeLimiter := middleware.NewRateLimiter(60, 1*time.Minute)

	// Public routes
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "read_only": status.ReadOnly()})
	})

	// Protected routes (identity via trusted upstream header)
	protected := r.Group("/api")
	protected.Use(middleware.Identity(cfg.IdentityHeader))
	{
		// Sessions
		protected.GET("/sessions", sessionsHandler.List)
		protected.POST("/sessions", writeLimiter.Middleware(), sessionsHandler.Create)
		protected.GET("/sessions/:id", sessionsHandler.Get)
		protected.PUT("/sessions/:id", writeLimiter.Middleware(), sessionsHandler.Update)
		protected.DELETE("/sessions/:id", writeLimiter.Middleware(), sessionsHandler.Delete)

		// Lifecycle conveniences
		protected.POST("/sessions/:id/request-approval", sessionsHandler.RequestApproval)
		protected.POST("/sessions/:id/approve", sessionsHandler.Approve)
		protected.POST("/sessions/:id/revise", sessionsHandler.Revise)
		protected.POST("/sessions/:id/retry", sessionsHandler.Retry)

		// Previews
		protected.POST("/sessions/:id/preview", writeLimiter.Middleware(), previewsHandler.Build)
		protected.GET("/sessions/:id/preview", previewsHandler.Latest)
		protected.GET("/sessions/:id/previews", previewsHandler.List)
		protected.DELETE("/sessions/:id/previews", writeLimiter.Middleware(), previewsHandler.DeleteBySession)
		protected.GET("/previews/:id", previewsHandler.Get)
		protected.DELETE("/previews/:id", writeLimiter.Middleware(), previewsHandler.Delete)

		// Kill-switch
		protected.GET("/admin/readonly", adminHandler.GetReadOnly)
		protected.PUT("/admin/readonly", adminHandler.SetReadOnly)
	}

	// WebSocket routes (identity via query param)
	r.GET("/ws/sync", syncHandler.HandleWebSocket)

	fmt.Printf("Server starting on :%s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
