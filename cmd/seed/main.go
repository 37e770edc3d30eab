package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/db"
	"github.com/emojilens/backend/internal/logger"
	"github.com/emojilens/backend/internal/models"
	"github.com/emojilens/backend/internal/services"
	"github.com/joho/godotenv"
)

const defaultSeedFile = "data/sample-analyses.json"

// SeedAnalysis is one sample analysis in the seed file.
type SeedAnalysis struct {
	Text       string             `json:"text"`
	Summary    string             `json:"summary"`
	Sentiment  models.Sentiment   `json:"sentiment"`
	Highlights []models.Highlight `json:"highlights"`
}

// SeedData is the structure of the seed file.
type SeedData struct {
	Analyses []SeedAnalysis `json:"analyses"`
}

type recordSaver interface {
	Save(ctx context.Context, inputText string, result *models.AnalysisResult) (*models.AnalysisRecord, error)
}

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
		logger.Fatal("DATABASE_URL is required to seed the database", nil)
	}

	// Run migrations first
	if err := gateway.AutoMigrate(); err != nil {
		logger.Fatal("Database migration failed", map[string]interface{}{"error": err.Error()})
	}

	path := defaultSeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := loadSeedData(path)
	if err != nil {
		logger.Fatal("Failed to load seed data", map[string]interface{}{"path": path, "error": err.Error()})
	}

	created := seedAnalyses(context.Background(), services.NewRecordService(gateway), data.Analyses)
	logger.Info("Database seeding completed", map[string]interface{}{
		"created": created,
		"total":   len(data.Analyses),
	})
}

func loadSeedData(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &data, nil
}

// seedAnalyses saves every valid sample and returns how many were written.
func seedAnalyses(ctx context.Context, store recordSaver, analyses []SeedAnalysis) int {
	created := 0
	for i, sample := range analyses {
		if sample.Text == "" || !sample.Sentiment.Valid() {
			logger.Warn("Skipping invalid seed entry", map[string]interface{}{
				"index":     i,
				"sentiment": string(sample.Sentiment),
			})
			continue
		}

		result := &models.AnalysisResult{
			Summary:    sample.Summary,
			Sentiment:  sample.Sentiment,
			Highlights: sample.Highlights,
		}
		record, err := store.Save(ctx, sample.Text, result)
		if err != nil {
			logger.Error("Error creating seed analysis", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		logger.Info("Created seed analysis", map[string]interface{}{
			"id":        record.ID,
			"sentiment": record.Sentiment,
		})
		created++
	}
	return created
}
