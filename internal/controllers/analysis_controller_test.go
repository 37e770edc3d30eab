package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emojilens/backend/internal/models"
	"github.com/emojilens/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	result  *models.AnalysisResult
	err     error
	calls   int
	lastKey string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text, apiKey string) (*models.AnalysisResult, error) {
	f.calls++
	f.lastKey = apiKey
	return f.result, f.err
}

type fakeStore struct {
	enabled bool
	saveErr error
	saved   []models.AnalysisRecord
	recent  []models.AnalysisRecord
}

func (f *fakeStore) Enabled() bool { return f.enabled }

func (f *fakeStore) Save(ctx context.Context, inputText string, result *models.AnalysisResult) (*models.AnalysisRecord, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	record, err := models.NewAnalysisRecord(inputText, result)
	if err != nil {
		return nil, err
	}
	record.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, *record)
	return record, nil
}

func (f *fakeStore) Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	return f.recent, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func sunny() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:    "L1\nL2\nL3\nL4",
		Sentiment:  models.SentimentPositive,
		Highlights: []models.Highlight{{Sentence: "I love sunny days", Emoji: "😊"}},
	}
}

func performAnalyze(t *testing.T, controller *AnalysisController, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.POST("/api/analyze", controller.Analyze)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	return w, decoded
}

func TestAnalyzeSuccessPersists(t *testing.T) {
	analyzer := &fakeAnalyzer{result: sunny()}
	store := &fakeStore{enabled: true}

	w, body := performAnalyze(t, NewAnalysisController(analyzer, store), `{"text":"I love sunny days","api_key":"sk-user"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "positive", body["sentiment"])
	assert.Equal(t, "sk-user", analyzer.lastKey)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "I love sunny days", store.saved[0].InputText)
	assert.Equal(t, "positive", store.saved[0].Sentiment)
}

func TestAnalyzePersistenceDisabledSkipsStore(t *testing.T) {
	analyzer := &fakeAnalyzer{result: sunny()}
	store := &fakeStore{enabled: false}

	w, _ := performAnalyze(t, NewAnalysisController(analyzer, store), `{"text":"I love sunny days"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.saved)
	assert.Equal(t, "", analyzer.lastKey)
}

func TestAnalyzePersistenceFailureIsBestEffort(t *testing.T) {
	analyzer := &fakeAnalyzer{result: sunny()}
	store := &fakeStore{enabled: true, saveErr: errors.New("connection refused")}

	w, body := performAnalyze(t, NewAnalysisController(analyzer, store), `{"text":"I love sunny days"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L1\nL2\nL3\nL4", body["summary"])
}

func TestAnalyzeFailureMapsToInternalError(t *testing.T) {
	failure := &services.AnalysisError{Kind: services.ErrKindContent, Msg: "failed to parse OpenAI response as JSON", Err: errors.New("invalid character 'S'")}
	analyzer := &fakeAnalyzer{err: failure}
	store := &fakeStore{enabled: true}

	w, body := performAnalyze(t, NewAnalysisController(analyzer, store), `{"text":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, failure.Error(), body["detail"])
	assert.Empty(t, store.saved, "nothing is persisted on failure")
	assert.NotContains(t, body, "summary", "no partial result")
}

func TestAnalyzeRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"blank text", `{"text":"   \n\t"}`, http.StatusBadRequest},
		{"empty text", `{"text":""}`, http.StatusBadRequest},
		{"missing text", `{"api_key":"sk"}`, http.StatusUnprocessableEntity},
		{"null text", `{"text":null}`, http.StatusUnprocessableEntity},
		{"mistyped text", `{"text":5}`, http.StatusUnprocessableEntity},
		{"malformed body", `{"text":`, http.StatusUnprocessableEntity},
		{"empty body", ``, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: sunny()}

			w, body := performAnalyze(t, NewAnalysisController(analyzer, &fakeStore{}), tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, body["detail"])
			assert.Equal(t, 0, analyzer.calls, "provider must not be called")
		})
	}
}
