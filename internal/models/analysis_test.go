package models

import "testing"

func TestSentimentValid(t *testing.T) {
	tests := []struct {
		input    Sentiment
		expected bool
	}{
		{"positive", true},
		{"neutral", true},
		{"negative", true},
		{"Positive", false},
		{"mixed", false},
		{"", false},
	}

	for _, test := range tests {
		if got := test.input.Valid(); got != test.expected {
			t.Errorf("For sentiment '%s', expected %v, got %v", test.input, test.expected, got)
		}
	}
}

func TestNewAnalysisRecord(t *testing.T) {
	result := &AnalysisResult{
		Summary:   "L1\nL2\nL3\nL4",
		Sentiment: SentimentPositive,
		Highlights: []Highlight{
			{Sentence: "I love sunny days", Emoji: "😊"},
		},
	}

	record, err := NewAnalysisRecord("I love sunny days", result)
	if err != nil {
		t.Fatalf("NewAnalysisRecord: %v", err)
	}

	if record.InputText != "I love sunny days" {
		t.Errorf("Expected input text to be kept, got %q", record.InputText)
	}
	if record.Sentiment != "positive" {
		t.Errorf("Expected sentiment 'positive', got %q", record.Sentiment)
	}
	if record.HighlightsJSON != `[{"sentence":"I love sunny days","emoji":"😊"}]` {
		t.Errorf("Unexpected highlights encoding %s", record.HighlightsJSON)
	}

	decoded, err := record.Highlights()
	if err != nil {
		t.Fatalf("Highlights: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != result.Highlights[0] {
		t.Errorf("Highlights did not survive encoding: %+v", decoded)
	}
}

func TestNewAnalysisRecordWithoutHighlights(t *testing.T) {
	record, err := NewAnalysisRecord("text", &AnalysisResult{Summary: "s", Sentiment: SentimentNeutral})
	if err != nil {
		t.Fatalf("NewAnalysisRecord: %v", err)
	}
	if record.HighlightsJSON != "[]" {
		t.Errorf("Expected empty JSON array, got %s", record.HighlightsJSON)
	}
}

func TestRecordHighlightsCorrupt(t *testing.T) {
	record := AnalysisRecord{ID: 7, HighlightsJSON: "{not json"}
	if _, err := record.Highlights(); err == nil {
		t.Error("Expected an error for corrupt highlights")
	}
}
