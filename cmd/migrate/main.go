package main

import (
	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/db"
	"github.com/emojilens/backend/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables", nil)
	}

	cfg := config.Load()

	gateway, err := db.Connect(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer gateway.Close()

	if !gateway.Enabled() {
		logger.Fatal("DATABASE_URL is required to run migrations", nil)
	}

	logger.Info("Running database migrations...", nil)
	if err := gateway.AutoMigrate(); err != nil {
		logger.Fatal("Database migration failed", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Database migrations completed successfully", nil)
}
