package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"review-dashboard/gemini"
)

func TestSanitizeJSONFencedBlock(t *testing.T) {
	raw := "Here is the result you asked for:\n```json\n{\"pros\": [\"battery\"]}\n```\nLet me know if you need anything else."
	out, ok := gemini.SanitizeJSON(raw)
	assert.True(t, ok)
	assert.Equal(t, `{"pros": ["battery"]}`, out)
}

func TestSanitizeJSONFencedBlockWithoutTag(t *testing.T) {
	raw := "```\n[{\"sentiment\": \"POSITIVE\"}]\n```"
	out, ok := gemini.SanitizeJSON(raw)
	assert.True(t, ok)
	assert.Equal(t, `[{"sentiment": "POSITIVE"}]`, out)
}

func TestSanitizeJSONBracketSpan(t *testing.T) {
	raw := `Sure! The classification is [{"sentiment": "NEGATIVE"}] — hope that helps.`
	out, ok := gemini.SanitizeJSON(raw)
	assert.True(t, ok)
	assert.Equal(t, `[{"sentiment": "NEGATIVE"}]`, out)
}

func TestSanitizeJSONObjectSpanWithProse(t *testing.T) {
	raw := `The summary follows. {"pros": [], "cons": [], "summary": "ok"} That is all.`
	out, ok := gemini.SanitizeJSON(raw)
	assert.True(t, ok)
	assert.Equal(t, `{"pros": [], "cons": [], "summary": "ok"}`, out)
}

func TestSanitizeJSONSingleQuoteRepair(t *testing.T) {
	out, ok := gemini.SanitizeJSON("'hello'")
	assert.True(t, ok)
	assert.Equal(t, `"hello"`, out)
}

func TestSanitizeJSONPassthrough(t *testing.T) {
	out, ok := gemini.SanitizeJSON("  not json at all  ")
	assert.False(t, ok)
	assert.Equal(t, "not json at all", out)
}

func TestSanitizeJSONEmptyInput(t *testing.T) {
	out, ok := gemini.SanitizeJSON("")
	assert.True(t, ok)
	assert.Equal(t, "{}", out)
}

func TestSanitizeJSONUnbalancedBrackets(t *testing.T) {
	// A closing bracket before the opening one is not a valid span.
	out, ok := gemini.SanitizeJSON("} nothing here {")
	assert.False(t, ok)
	assert.Equal(t, "} nothing here {", out)
}
