package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is one of the three labels the prompt allows.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// AnalysisRequest is the body of POST /api/analyze. Text is a pointer so an
// absent field can be told apart from an empty one.
type AnalysisRequest struct {
	Text   *string `json:"text"`
	APIKey *string `json:"api_key"`
}

// Highlight is a sentence that drove the sentiment decision, paired with an emoji.
type Highlight struct {
	Sentence string `json:"sentence"`
	Emoji    string `json:"emoji"`
}

// AnalysisResult is the response body of a successful analysis.
type AnalysisResult struct {
	Summary    string      `json:"summary"`
	Sentiment  Sentiment   `json:"sentiment"`
	Highlights []Highlight `json:"highlights"`
}

// AnalysisRecord is the append-only persisted form of an analysis.
type AnalysisRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null;index"`
	InputText      string    `json:"inputText" gorm:"type:text;not null"`
	Summary        string    `json:"summary" gorm:"type:text;not null"`
	Sentiment      string    `json:"sentiment" gorm:"type:varchar(16);not null"`
	HighlightsJSON string    `json:"highlightsJson" gorm:"column:highlights_json;type:text;not null"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_results"
}

// NewAnalysisRecord mirrors a result into its persisted form.
func NewAnalysisRecord(inputText string, result *AnalysisResult) (*AnalysisRecord, error) {
	highlights := result.Highlights
	if highlights == nil {
		highlights = []Highlight{}
	}
	encoded, err := json.Marshal(highlights)
	if err != nil {
		return nil, fmt.Errorf("encode highlights: %w", err)
	}
	return &AnalysisRecord{
		InputText:      inputText,
		Summary:        result.Summary,
		Sentiment:      string(result.Sentiment),
		HighlightsJSON: string(encoded),
	}, nil
}

// Highlights decodes the stored highlight list.
func (r AnalysisRecord) Highlights() ([]Highlight, error) {
	var highlights []Highlight
	if r.HighlightsJSON == "" {
		return highlights, nil
	}
	if err := json.Unmarshal([]byte(r.HighlightsJSON), &highlights); err != nil {
		return nil, fmt.Errorf("decode highlights of record %d: %w", r.ID, err)
	}
	return highlights, nil
}
