package models

import "strings"

// Sentiment is the classification label attached to a review.
// PENDING is the transient placeholder set at ingestion; the pipeline
// replaces it with one of the three terminal labels exactly once.
type Sentiment string

const (
	SentimentPending  Sentiment = "PENDING"
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// ParseSentiment maps free-form model output onto a terminal label.
// Unknown values report ok=false so callers can apply their fallback.
func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(strings.ToUpper(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNeutral:
		return SentimentNeutral, true
	case SentimentNegative:
		return SentimentNegative, true
	}
	return "", false
}
