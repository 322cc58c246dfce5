package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"review-dashboard/gemini"
)

// Invoker is the single LLM call the generator depends on.
// Satisfied by *gemini.Client.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Result is the normalized output of one summarization call.
type Result struct {
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
	Summary string   `json:"summary"`
}

// Summarizer produces the aggregate pros/cons/narrative for a batch of
// review texts with a single LLM call.
type Summarizer struct {
	llm        Invoker
	sampleSize int
}

const defaultSampleSize = 50

// New builds a Summarizer. sampleSize bounds how many texts go into the
// prompt (the model's input limit); 0 or less uses the default of 50.
func New(llm Invoker, sampleSize int) *Summarizer {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	return &Summarizer{llm: llm, sampleSize: sampleSize}
}

// Summarize generates pros, cons, and a short narrative from a sample of the
// given texts. Only the first sampleSize texts are included, so the result
// does not necessarily reflect the whole batch. Any gateway or parse failure
// is returned to the caller, which owns the fallback policy. Empty input
// short-circuits without a call.
func (s *Summarizer) Summarize(ctx context.Context, texts []string) (Result, error) {
	if len(texts) == 0 {
		return Result{Pros: []string{}, Cons: []string{}}, nil
	}

	sample := texts
	if len(sample) > s.sampleSize {
		sample = sample[:s.sampleSize]
	}

	raw, err := s.llm.Invoke(ctx, buildPrompt(sample))
	if err != nil {
		return Result{}, fmt.Errorf("generate summary: %w", err)
	}

	cleaned, _ := gemini.SanitizeJSON(raw)
	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return Result{}, fmt.Errorf("generate summary: parse response: %w", err)
	}
	if res.Pros == nil {
		res.Pros = []string{}
	}
	if res.Cons == nil {
		res.Cons = []string{}
	}
	return res, nil
}

func buildPrompt(texts []string) string {
	return "Analyze the following list of reviews. If they are just product names, list them as features. " +
		"Identify top 5 pros and top 5 cons. Write a short overall summary. " +
		"Return strictly valid JSON (NO markdown backticks) with format: " +
		`{"pros": [], "cons": [], "summary": "..."}. Reviews:` + "\n" +
		strings.Join(texts, "\n- ")
}
