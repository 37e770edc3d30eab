package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/emojilens/backend/internal/models"
)

var sentimentEmoji = map[models.Sentiment]string{
	models.SentimentPositive: "😊",
	models.SentimentNeutral:  "😐",
	models.SentimentNegative: "😞",
}

// SentimentEmoji maps a sentiment label to its display emoji.
func SentimentEmoji(s models.Sentiment) string {
	if emoji, ok := sentimentEmoji[s]; ok {
		return emoji
	}
	return "🤔"
}

// Render writes a result the way the browser client lays it out.
func Render(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintln(w, "Summary")
	for _, line := range strings.Split(strings.TrimSpace(result.Summary), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintf(w, "\nSentiment: %s %s\n", SentimentEmoji(result.Sentiment), result.Sentiment)

	fmt.Fprintln(w, "\nHighlights")
	if len(result.Highlights) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, h := range result.Highlights {
		fmt.Fprintf(w, "  %s %s\n", h.Emoji, h.Sentence)
	}
}
