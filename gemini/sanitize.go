package gemini

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// SanitizeJSON extracts a best-guess JSON document from free-form model
// output, which may be wrapped in prose, markdown fences, or use single
// quotes. The returned bool reports whether the result parses as valid JSON;
// callers still own the actual decode and its failure handling.
//
// Heuristics, in priority order: the first fenced code block, then the span
// between the first opening and last closing bracket, then a single-quote
// to double-quote swap, then the trimmed input unchanged.
func SanitizeJSON(raw string) (string, bool) {
	if raw == "" {
		return "{}", true
	}
	raw = strings.TrimSpace(raw)

	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		out := strings.TrimSpace(m[1])
		return out, json.Valid([]byte(out))
	}

	if out, ok := bracketSpan(raw); ok {
		return out, json.Valid([]byte(out))
	}

	if !strings.Contains(raw, `"`) && strings.Contains(raw, "'") {
		out := strings.ReplaceAll(raw, "'", `"`)
		return out, json.Valid([]byte(out))
	}

	return raw, json.Valid([]byte(raw))
}

// bracketSpan returns the substring between the earliest opening brace or
// bracket and the latest closing one, when such a span exists.
func bracketSpan(raw string) (string, bool) {
	firstBrace := strings.Index(raw, "{")
	firstBracket := strings.Index(raw, "[")

	start := -1
	switch {
	case firstBrace != -1 && firstBracket != -1:
		start = firstBrace
		if firstBracket < firstBrace {
			start = firstBracket
		}
	case firstBrace != -1:
		start = firstBrace
	case firstBracket != -1:
		start = firstBracket
	}
	if start == -1 {
		return "", false
	}

	end := strings.LastIndex(raw, "}")
	if b := strings.LastIndex(raw, "]"); b > end {
		end = b
	}
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
