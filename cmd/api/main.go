// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hiveboard/hiveboard-backend/internal/api/handlers"
	"github.com/hiveboard/hiveboard-backend/internal/api/middleware"
	"github.com/hiveboard/hiveboard-backend/internal/config"
	"github.com/hiveboard/hiveboard-backend/internal/cron"
	"github.com/hiveboard/hiveboard-backend/internal/db"
	"github.com/hiveboard/hiveboard-backend/internal/email"
	"github.com/hiveboard/hiveboard-backend/internal/notification"
	"github.com/hiveboard/hiveboard-backend/internal/repository"
	"github.com/hiveboard/hiveboard-backend/internal/seed"
	"github.com/hiveboard/hiveboard-backend/internal/service"
	"github.com/hiveboard/hiveboard-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(postgres.Pool)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Redis:       redisDB,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(services, repos.ListRepo, repos.CardRepo, repos.InvitationRepo)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      getEmailStatus(emailSvc),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// WebSocket route (authenticates via token query param)
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Routes with optional auth.
		// Public workspaces and boards are readable without a token;
		// handlers demand a user for anything that mutates.
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.OptionalAuthMiddleware(services.Auth))
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.PUT("/me", h.User.UpdateCurrentUser)
				users.GET("/search", h.User.SearchUsers)
			}

			// Capability introspection for the current user
			protected.GET("/capabilities", h.Workspace.Capabilities)

			// Workspace routes
			workspaces := protected.Group("/workspaces")
			{
				workspaces.GET("", h.Workspace.List)
				workspaces.POST("", h.Workspace.Create)
				workspaces.GET("/:id", h.Workspace.Get)
				workspaces.PUT("/:id", h.Workspace.Update)
				workspaces.DELETE("/:id", h.Workspace.Delete)

				// Members
				workspaces.GET("/:id/members", h.Workspace.ListMembers)
				workspaces.POST("/:id/members", h.Workspace.AddMember)
				workspaces.PUT("/:id/members/:userId", h.Workspace.UpdateMemberRole)
				workspaces.DELETE("/:id/members/:userId", h.Workspace.RemoveMember)

				// Invitations
				workspaces.GET("/:id/invitations", h.Invitation.ListForWorkspace)
				workspaces.POST("/:id/invitations", h.Invitation.Create)
				workspaces.DELETE("/:id/invitations/:invitationId", h.Invitation.Revoke)

				// Boards
				workspaces.GET("/:id/boards", h.Board.ListForWorkspace)
				workspaces.POST("/:id/boards", h.Board.Create)
			}

			// Board routes
			boards := protected.Group("/boards")
			{
				boards.GET("/:id", h.Board.Get)
				boards.GET("/:id/snapshot", h.Board.GetSnapshot)
				boards.PUT("/:id", h.Board.Update)
				boards.DELETE("/:id", h.Board.Delete)

				// Members
				boards.GET("/:id/members", h.Board.ListMembers)
				boards.POST("/:id/members", h.Board.AddMember)
				boards.PUT("/:id/members/:userId", h.Board.UpdateMemberRole)
				boards.DELETE("/:id/members/:userId", h.Board.RemoveMember)

				// Lists
				boards.GET("/:id/lists", h.List.ListForBoard)
				boards.POST("/:id/lists", h.List.Create)
			}

			// List routes
			lists := protected.Group("/lists")
			{
				lists.PUT("/:id", h.List.Update)
				lists.DELETE("/:id", h.List.Delete)
				lists.POST("/:id/move", h.List.Move)

				// Cards
				lists.GET("/:id/cards", h.Card.ListForList)
				lists.POST("/:id/cards", h.Card.Create)
			}

			// Card routes
			cards := protected.Group("/cards")
			{
				cards.GET("/:id", h.Card.Get)
				cards.PUT("/:id", h.Card.Update)
				cards.DELETE("/:id", h.Card.Delete)
				cards.POST("/:id/move", h.Card.Move)

				// Assignees
				cards.POST("/:id/assignees", h.Card.Assign)
				cards.DELETE("/:id/assignees/:userId", h.Card.Unassign)

				// Comments
				cards.GET("/:id/comments", h.Comment.ListForCard)
				cards.POST("/:id/comments", h.Comment.Create)

				// Attachments
				cards.GET("/:id/attachments", h.Attachment.ListForCard)
				cards.POST("/:id/attachments", h.Attachment.Create)
			}

			// Comment routes
			comments := protected.Group("/comments")
			{
				comments.PUT("/:id", h.Comment.Update)
				comments.DELETE("/:id", h.Comment.Delete)
			}

			// Attachment routes
			attachments := protected.Group("/attachments")
			{
				attachments.PUT("/:id", h.Attachment.Update)
				attachments.DELETE("/:id", h.Attachment.Delete)
			}

			// Invitation acceptance (token arrives in the body)
			protected.POST("/invitations/accept", h.Invitation.Accept)
		}

		// ============================================
		// Strictly authenticated routes
		// ============================================
		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(services.Auth))
		{
			notifications.GET("", h.Notification.List)
			notifications.GET("/count", h.Notification.Count)
			notifications.PUT("/:id/read", h.Notification.MarkAsRead)
			notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
			notifications.DELETE("/:id", h.Notification.Delete)
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}

func getEmailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}
