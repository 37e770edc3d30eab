package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/emojilens/backend/internal/logger"
	"github.com/emojilens/backend/internal/middleware"
	"github.com/emojilens/backend/internal/models"
	"github.com/emojilens/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// Analyzer runs one analysis against the LLM provider.
type Analyzer interface {
	Analyze(ctx context.Context, text, apiKey string) (*models.AnalysisResult, error)
}

// RecordStore persists analyses when persistence is enabled.
type RecordStore interface {
	Enabled() bool
	Save(ctx context.Context, inputText string, result *models.AnalysisResult) (*models.AnalysisRecord, error)
	Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
}

type AnalysisController struct {
	analyzer Analyzer
	records  RecordStore
}

func NewAnalysisController(analyzer Analyzer, records RecordStore) *AnalysisController {
	return &AnalysisController{analyzer: analyzer, records: records}
}

// Analyze handles POST /api/analyze.
func (ac *AnalysisController) Analyze(c *gin.Context) {
	logEntry := logger.WithRequest(middleware.RequestID(c), c.Request.URL.Path)

	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}
	if req.Text == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "field 'text' is required"})
		return
	}
	if strings.TrimSpace(*req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "text must not be empty"})
		return
	}

	apiKey := ""
	if req.APIKey != nil {
		apiKey = *req.APIKey
	}

	result, err := ac.analyzer.Analyze(c.Request.Context(), *req.Text, apiKey)
	if err != nil {
		logEntry.WithField("error_kind", string(services.KindOf(err))).WithError(err).Error("Analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	// Saving is best-effort.
	if ac.records != nil && ac.records.Enabled() {
		record, err := ac.records.Save(c.Request.Context(), *req.Text, result)
		if err != nil {
			logEntry.WithError(err).Warn("Failed to persist analysis, returning result anyway")
		} else {
			logEntry.WithField("record_id", record.ID).Debug("Analysis persisted")
		}
	}

	c.JSON(http.StatusOK, result)
}
