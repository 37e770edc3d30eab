package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/emojilens/backend/internal/db"
	"github.com/emojilens/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockRecordService(t *testing.T) (*RecordService, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewRecordService(db.New(conn)), mock
}

func sunnyResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:    "L1\nL2\nL3\nL4",
		Sentiment:  models.SentimentPositive,
		Highlights: []models.Highlight{{Sentence: "I love sunny days", Emoji: "😊"}},
	}
}

func TestRecordServiceSave(t *testing.T) {
	recordService, mock := newMockRecordService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "analysis_results"`).
		WithArgs(sqlmock.AnyArg(), "I love sunny days", "L1\nL2\nL3\nL4", "positive",
			`[{"sentence":"I love sunny days","emoji":"😊"}]`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	record, err := recordService.Save(context.Background(), "I love sunny days", sunnyResult())

	require.NoError(t, err)
	assert.Equal(t, uint(1), record.ID)
	assert.Equal(t, "positive", record.Sentiment)
	assert.Equal(t, "I love sunny days", record.InputText)
	assert.False(t, record.CreatedAt.IsZero(), "created_at is set at insert time")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordServiceSaveFailureRollsBack(t *testing.T) {
	recordService, mock := newMockRecordService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "analysis_results"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := recordService.Save(context.Background(), "text", sunnyResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordServiceDisabled(t *testing.T) {
	recordService := NewRecordService(nil)

	assert.False(t, recordService.Enabled())

	_, err := recordService.Save(context.Background(), "text", sunnyResult())
	assert.ErrorIs(t, err, db.ErrPersistenceDisabled)

	_, err = recordService.Recent(context.Background(), 10)
	assert.ErrorIs(t, err, db.ErrPersistenceDisabled)
}

func TestRecordServiceRecent(t *testing.T) {
	recordService, mock := newMockRecordService(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "created_at", "input_text", "summary", "sentiment", "highlights_json"}).
		AddRow(2, now, "second", "s2", "neutral", "[]").
		AddRow(1, now.Add(-time.Minute), "first", "s1", "positive", `[{"sentence":"a","emoji":"b"}]`)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "analysis_results" ORDER BY created_at DESC,id DESC LIMIT`).
		WillReturnRows(rows)
	mock.ExpectCommit()

	records, err := recordService.Recent(context.Background(), 500)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].InputText)

	highlights, err := records[1].Highlights()
	require.NoError(t, err)
	assert.Equal(t, []models.Highlight{{Sentence: "a", Emoji: "b"}}, highlights)
	assert.NoError(t, mock.ExpectationsWereMet())
}
