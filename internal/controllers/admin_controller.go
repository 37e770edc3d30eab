package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/emojilens/backend/internal/logger"
	"github.com/emojilens/backend/internal/middleware"
	"github.com/emojilens/backend/internal/models"
	"github.com/emojilens/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CallTracker exposes the recent provider call history.
type CallTracker interface {
	GetAPICalls() []services.LLMAPICall
	ClearAPICalls()
}

type AdminController struct {
	records RecordStore
	calls   CallTracker
}

func NewAdminController(records RecordStore, calls CallTracker) *AdminController {
	return &AdminController{records: records, calls: calls}
}

type analysisRecordView struct {
	ID         uint               `json:"id"`
	CreatedAt  time.Time          `json:"createdAt"`
	InputText  string             `json:"inputText"`
	Summary    string             `json:"summary"`
	Sentiment  string             `json:"sentiment"`
	Highlights []models.Highlight `json:"highlights"`
}

// ListAnalyses returns the most recent persisted analyses.
func (ac *AdminController) ListAnalyses(c *gin.Context) {
	if ac.records == nil || !ac.records.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "persistence is disabled (DATABASE_URL not set)"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultRecentLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
		return
	}

	records, err := ac.records.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.WithRequest(middleware.RequestID(c), c.Request.URL.Path).WithError(err).Error("Failed to list analyses")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	views := make([]analysisRecordView, 0, len(records))
	for _, record := range records {
		highlights, err := record.Highlights()
		if err != nil {
			logger.WithError(err, "admin_controller").Warn("Skipping undecodable highlights")
			highlights = []models.Highlight{}
		}
		views = append(views, analysisRecordView{
			ID:         record.ID,
			CreatedAt:  record.CreatedAt,
			InputText:  record.InputText,
			Summary:    record.Summary,
			Sentiment:  record.Sentiment,
			Highlights: highlights,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": views,
		"count":    len(views),
	})
}

// GetLLMAPICalls returns the tracked provider calls.
func (ac *AdminController) GetLLMAPICalls(c *gin.Context) {
	calls := ac.calls.GetAPICalls()
	c.JSON(http.StatusOK, gin.H{
		"calls": calls,
		"count": len(calls),
	})
}

// ClearLLMAPICalls drops the tracked provider calls.
func (ac *AdminController) ClearLLMAPICalls(c *gin.Context) {
	ac.calls.ClearAPICalls()
	c.JSON(http.StatusOK, gin.H{"message": "LLM API call history cleared"})
}
