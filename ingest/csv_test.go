package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-dashboard/ingest"
)

func TestParseReviewsSkipsHeader(t *testing.T) {
	csv := "review_text\ngreat phone\nterrible battery\n"
	texts, err := ingest.ParseReviews(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"great phone", "terrible battery"}, texts)
}

func TestParseReviewsQuotedCommas(t *testing.T) {
	csv := "review_text,product\n\"good screen, bad speakers\",phone\nfine,phone\n"
	texts, err := ingest.ParseReviews(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"good screen, bad speakers", "fine"}, texts)
}

func TestParseReviewsDropsBlankRows(t *testing.T) {
	csv := "review_text\n\ngood\n   \nbad\n"
	texts, err := ingest.ParseReviews(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "bad"}, texts)
}

func TestParseReviewsHeaderOnly(t *testing.T) {
	texts, err := ingest.ParseReviews(strings.NewReader("review_text\n"))
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestParseReviewsEmptyFile(t *testing.T) {
	texts, err := ingest.ParseReviews(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, texts)
}
