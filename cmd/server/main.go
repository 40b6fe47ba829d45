package main

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ripplehq/ripple/backend/internal/router"
	"github.com/ripplehq/ripple/backend/pkg/config"
	"github.com/ripplehq/ripple/backend/pkg/firebase"
	"github.com/ripplehq/ripple/backend/pkg/logger"
	"github.com/ripplehq/ripple/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Logger().Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Firebase login is optional; without credentials the endpoint refuses.
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Logger().Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		firebaseAuthClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	app, err := router.SetupRoutes(e, cfg, db, firebaseAuthClient)
	if err != nil {
		logger.Logger().Fatal("Failed to set up routes", zap.Error(err))
	}
	defer app.Reaper.Stop()

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
