package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"review-dashboard/gemini"
	"review-dashboard/models"
)

// Invoker is the single LLM call the classifier depends on.
// Satisfied by *gemini.Client.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Classifier labels batches of review texts with a sentiment via one LLM
// call per batch. It owns no persistent state.
type Classifier struct {
	llm Invoker
}

func New(llm Invoker) *Classifier {
	return &Classifier{llm: llm}
}

type sentimentItem struct {
	Sentiment string `json:"sentiment"`
}

// ClassifyBatch maps every input text to a sentiment label. The returned map
// is always total: on any gateway or parse failure all texts fall back to
// NEUTRAL and the error is returned alongside so the caller can decide how
// to record the degradation. Empty input returns an empty map with no call.
//
// Texts correlate to the model's array by position, so when the model returns
// fewer elements than inputs the tail silently falls back to NEUTRAL. Two
// byte-identical texts in one batch resolve to one (shared) label.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) (map[string]models.Sentiment, error) {
	if len(texts) == 0 {
		return map[string]models.Sentiment{}, nil
	}

	raw, err := c.llm.Invoke(ctx, buildPrompt(texts))
	if err != nil {
		return fallback(texts), fmt.Errorf("classify batch: %w", err)
	}

	cleaned, _ := gemini.SanitizeJSON(raw)
	var items []sentimentItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return fallback(texts), fmt.Errorf("classify batch: parse response: %w", err)
	}

	result := make(map[string]models.Sentiment, len(texts))
	for i, text := range texts {
		label := models.SentimentNeutral
		if i < len(items) {
			if parsed, ok := models.ParseSentiment(items[i].Sentiment); ok {
				label = parsed
			}
		}
		result[text] = label
	}
	return result, nil
}

func buildPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString("Classify the sentiment of the following reviews as POSITIVE, NEUTRAL, or NEGATIVE.\n")
	b.WriteString("Return strictly a JSON array of objects, where each object has 'sentiment' field.\n")
	b.WriteString("The order must match the input list exactly.\n")
	b.WriteString("Do NOT wrap the output in a markdown code block.\n")
	b.WriteString("Reviews:\n")
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i, strings.ReplaceAll(text, "\n", " "))
	}
	return b.String()
}

func fallback(texts []string) map[string]models.Sentiment {
	m := make(map[string]models.Sentiment, len(texts))
	for _, t := range texts {
		m[t] = models.SentimentNeutral
	}
	return m
}
