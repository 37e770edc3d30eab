package services

import (
	"context"
	"fmt"

	"github.com/emojilens/backend/internal/db"
	"github.com/emojilens/backend/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// RecordService writes and reads persisted analyses through the gateway.
type RecordService struct {
	gateway *db.Gateway
}

func NewRecordService(gateway *db.Gateway) *RecordService {
	if gateway == nil {
		gateway = db.Disabled()
	}
	return &RecordService{gateway: gateway}
}

// Enabled reports whether records can be written.
func (rs *RecordService) Enabled() bool {
	return rs.gateway.Enabled()
}

// Save appends one record for a successful analysis.
func (rs *RecordService) Save(ctx context.Context, inputText string, result *models.AnalysisResult) (*models.AnalysisRecord, error) {
	record, err := models.NewAnalysisRecord(inputText, result)
	if err != nil {
		return nil, err
	}

	err = rs.gateway.Session(ctx, func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save analysis record: %w", err)
	}
	return record, nil
}

// Recent returns the newest records first. limit is clamped to
// [1, MaxRecentLimit].
func (rs *RecordService) Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var records []models.AnalysisRecord
	err := rs.gateway.Session(ctx, func(tx *gorm.DB) error {
		return tx.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list analysis records: %w", err)
	}
	return records, nil
}
