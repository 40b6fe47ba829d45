package router

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/cache"
	"github.com/ripplehq/ripple/backend/internal/handlers"
	"github.com/ripplehq/ripple/backend/internal/middleware"
	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/notifications"
	"github.com/ripplehq/ripple/backend/internal/realtime"
	"github.com/ripplehq/ripple/backend/internal/repositories"
	"github.com/ripplehq/ripple/backend/pkg/config"
	"github.com/ripplehq/ripple/backend/pkg/logger"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// App holds the long-lived pieces SetupRoutes wires together, so the caller
// can manage their lifecycle (stop the reaper on shutdown).
type App struct {
	Hub    *realtime.Hub
	Reaper *notifications.Reaper
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client) (*App, error) {
	if err := db.Postgres.AutoMigrate(&models.User{}, &models.Follow{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}
	logger.Info("PostgreSQL auto-migrations completed")

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	interactionRepo := repositories.NewMongoInteractionRepository(mongoDB)
	shareRepo := repositories.NewMongoShareRepository(mongoDB)
	bookmarkRepo := repositories.NewMongoBookmarkRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)

	senderCache := cache.NewSenderCache(db.Redis)
	enricher := notifications.NewEnricher(userRepo, senderCache)

	// --- Notification core ---
	// The hub, manager and reconciler reference each other through the
	// Emitter and ClientEventHandler seams, so the hub is built first and
	// the inbound bridge attached after.
	testEnabled := cfg.Env != "production"

	hub := realtime.NewHub(nil)
	notificationManager := notifications.NewManager(notificationRepo, userRepo, hub, enricher)
	reconciler := notifications.NewReconciler(notificationRepo, hub)
	hub.SetHandler(notifications.NewClientEvents(notificationManager, reconciler, testEnabled))

	if cfg.WSSendBacklog {
		hub.OnConnect(func(userID uint) {
			if err := notificationManager.SendBacklog(context.Background(), userID); err != nil {
				logger.Warn("send notification backlog", zap.Uint("user", userID), zap.Error(err))
			}
		})
	}

	reaper := notifications.NewReaper(notificationRepo, notifications.ReadRetention)
	if err := reaper.Start(cfg.ReaperInterval); err != nil {
		return nil, fmt.Errorf("start notification reaper: %w", err)
	}

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// Realtime endpoint authenticates itself from the token query parameter.
	realtimeHandler := handlers.NewRealtimeHandler(hub, cfg.JWTSecret)
	realtimeHandler.RegisterRealtimeRoutes(e)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo, senderCache)
	userHandler.RegisterProfileRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationManager)
	followHandler.RegisterFollowRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, followRepo, notificationManager)
	postHandler.RegisterPostRoutes(api)

	interactionHandler := handlers.NewInteractionHandler(interactionRepo, commentRepo, shareRepo, bookmarkRepo, postRepo, notificationManager)
	interactionHandler.RegisterInteractionRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, notificationManager, reconciler, enricher, testEnabled)
	notificationHandler.RegisterNotificationRoutes(api)

	logger.Info("All routes configured")

	return &App{Hub: hub, Reaper: reaper}, nil
}
