package services

import (
	"html"
	"regexp"
	"strings"

	"github.com/emojilens/backend/internal/models"
	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

const (
	vaderPositiveThreshold = 0.20
	vaderNegativeThreshold = -0.20
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]*>`)
)

// SentimentNormalizer maps the provider's label onto the three allowed
// values. Labels that cannot be mapped are decided by VADER over the input.
type SentimentNormalizer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewSentimentNormalizer() *SentimentNormalizer {
	return &SentimentNormalizer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Normalize returns the canonical label and whether the fallback was used.
func (n *SentimentNormalizer) Normalize(label models.Sentiment, inputText string) (models.Sentiment, bool) {
	if label.Valid() {
		return label, false
	}
	cleaned := models.Sentiment(strings.ToLower(strings.TrimSpace(string(label))))
	if cleaned.Valid() {
		return cleaned, false
	}
	_, fallback := n.Score(inputText)
	return fallback, true
}

// Score runs VADER over the plain-text rendering of text.
func (n *SentimentNormalizer) Score(text string) (float64, models.Sentiment) {
	scores := n.analyzer.PolarityScores(plainText(text))
	compound := scores.Compound

	switch {
	case compound >= vaderPositiveThreshold:
		return compound, models.SentimentPositive
	case compound <= vaderNegativeThreshold:
		return compound, models.SentimentNegative
	default:
		return compound, models.SentimentNeutral
	}
}

// plainText strips markdown, markup and links so VADER only sees prose.
func plainText(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	rendered := blackfriday.Run([]byte(input),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{})),
	)
	text := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(rendered), " "))
	text = bareURLPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
