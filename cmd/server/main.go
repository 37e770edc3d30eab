package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/db"
	"github.com/emojilens/backend/internal/logger"
	"github.com/emojilens/backend/internal/routes"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Initialize logger first
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg := config.Load()

	gateway, err := db.Connect(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if gateway.Enabled() {
		if err := gateway.AutoMigrate(); err != nil {
			logger.Fatal("Failed to migrate database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	} else {
		logger.Warn("DATABASE_URL not set - running without Postgres persistence", nil)
	}
	defer gateway.Close()

	// Set Gin mode
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := routes.NewRouter(cfg, gateway)
	if err != nil {
		logger.Fatal("Failed to build router", map[string]interface{}{
			"error": err.Error(),
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting EmojiLens backend server", map[string]interface{}{
		"port":            cfg.Server.Port,
		"gin_mode":        gin.Mode(),
		"model":           cfg.OpenAI.Model,
		"persistence":     gateway.Enabled(),
		"allowed_origin":  cfg.Server.AllowedOrigin(),
		"admin_endpoints": cfg.Server.AdminEnabled(),
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
