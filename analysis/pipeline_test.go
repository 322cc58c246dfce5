package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"review-dashboard/analysis"
	"review-dashboard/eventbus"
	"review-dashboard/events"
	"review-dashboard/models"
	"review-dashboard/summarizer"
)

type fakeReviewStore struct {
	mu      sync.Mutex
	chunks  [][]models.Review
	failOn  int // 1-based chunk index to fail on, 0 = never
	failErr error
}

func (f *fakeReviewStore) UpdateSentiments(ctx context.Context, reviews []models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, append([]models.Review(nil), reviews...))
	if f.failOn != 0 && len(f.chunks) == f.failOn {
		return f.failErr
	}
	return nil
}

type fakeSummaryStore struct {
	mu       sync.Mutex
	inserted []models.AnalysisSummary
	err      error
}

func (f *fakeSummaryStore) Insert(ctx context.Context, doc models.AnalysisSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, doc)
	return nil
}

type fakeBatchStore struct {
	mu       sync.Mutex
	statuses []models.BatchStatus
}

func (f *fakeBatchStore) UpdateStatus(ctx context.Context, batchID string, status models.BatchStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return nil
}

type fakeCallLogStore struct {
	mu      sync.Mutex
	entries []models.AILog
}

func (f *fakeCallLogStore) Insert(ctx context.Context, log models.AILog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, log)
	return nil
}

type fakeClassifier struct {
	mu         sync.Mutex
	calls      int
	chunkSizes []int
	classify   func(call int, texts []string) (map[string]models.Sentiment, error)
}

func (f *fakeClassifier) ClassifyBatch(ctx context.Context, texts []string) (map[string]models.Sentiment, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.chunkSizes = append(f.chunkSizes, len(texts))
	fn := f.classify
	f.mu.Unlock()
	if fn != nil {
		return fn(call, texts)
	}
	return labelAll(texts, models.SentimentPositive), nil
}

type fakeSummarizer struct {
	mu    sync.Mutex
	calls int
	res   summarizer.Result
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, texts []string) (summarizer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.res, f.err
}

type fakeBus struct {
	mu        sync.Mutex
	published []eventbus.Event
}

func (f *fakeBus) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Close() {}

func labelAll(texts []string, s models.Sentiment) map[string]models.Sentiment {
	m := make(map[string]models.Sentiment, len(texts))
	for _, t := range texts {
		m[t] = s
	}
	return m
}

func makeReviews(batchID string, n int) []models.Review {
	reviews := make([]models.Review, n)
	for i := range reviews {
		reviews[i] = models.Review{
			ID:         primitive.NewObjectID(),
			ReviewText: fmt.Sprintf("review number %d", i),
			ProductID:  "UNKNOWN",
			Sentiment:  models.SentimentPending,
			BatchID:    batchID,
		}
	}
	return reviews
}

type fixture struct {
	reviews    *fakeReviewStore
	summaries  *fakeSummaryStore
	batches    *fakeBatchStore
	callLogs   *fakeCallLogStore
	classifier *fakeClassifier
	summarizer *fakeSummarizer
	bus        *fakeBus
	pipeline   *analysis.Pipeline
}

func newFixture(chunkSize int) *fixture {
	f := &fixture{
		reviews:    &fakeReviewStore{},
		summaries:  &fakeSummaryStore{},
		batches:    &fakeBatchStore{},
		callLogs:   &fakeCallLogStore{},
		classifier: &fakeClassifier{},
		summarizer: &fakeSummarizer{res: summarizer.Result{Pros: []string{}, Cons: []string{}, Summary: "ok"}},
		bus:        &fakeBus{},
	}
	f.pipeline = analysis.NewPipeline(analysis.PipelineConfig{
		Reviews:    f.reviews,
		Summaries:  f.summaries,
		Batches:    f.batches,
		CallLogs:   f.callLogs,
		Classifier: f.classifier,
		Summarizer: f.summarizer,
		Bus:        f.bus,
		ChunkSize:  chunkSize,
		ModelName:  "test-model",
	})
	return f
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	f := newFixture(1000)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-empty", nil)

	assert.Equal(t, 0, f.classifier.calls)
	require.Len(t, f.summaries.inserted, 1)
	s := f.summaries.inserted[0]
	assert.Equal(t, int64(0), s.TotalReviews)
	assert.Equal(t, int64(0), s.PositiveCount+s.NeutralCount+s.NegativeCount)
	assert.Equal(t, []models.BatchStatus{models.BatchRunning, models.BatchCompleted}, f.batches.statuses)
}

func TestAnalyzeBatchChunking(t *testing.T) {
	f := newFixture(1000)
	reviews := makeReviews("batch-1500", 1500)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-1500", reviews)

	assert.Equal(t, 2, f.classifier.calls)
	assert.Equal(t, []int{1000, 500}, f.classifier.chunkSizes)
	require.Len(t, f.reviews.chunks, 2)

	require.Len(t, f.summaries.inserted, 1)
	s := f.summaries.inserted[0]
	assert.Equal(t, int64(1500), s.TotalReviews)
	assert.Equal(t, s.TotalReviews, s.PositiveCount+s.NeutralCount+s.NegativeCount)
	assert.Equal(t, int64(1500), s.PositiveCount)
}

func TestAnalyzeBatchChunkFailureIsIsolated(t *testing.T) {
	f := newFixture(1000)
	f.classifier.classify = func(call int, texts []string) (map[string]models.Sentiment, error) {
		if call == 2 {
			return labelAll(texts, models.SentimentNeutral), errors.New("gateway exploded")
		}
		return labelAll(texts, models.SentimentPositive), nil
	}
	reviews := makeReviews("batch-iso", 1500)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-iso", reviews)

	// Chunk 1 keeps its real labels, chunk 2 is all NEUTRAL.
	require.Len(t, f.reviews.chunks, 2)
	for _, rv := range f.reviews.chunks[0] {
		assert.Equal(t, models.SentimentPositive, rv.Sentiment)
	}
	for _, rv := range f.reviews.chunks[1] {
		assert.Equal(t, models.SentimentNeutral, rv.Sentiment)
	}

	// The batch still reaches a terminal summary with consistent counts.
	require.Len(t, f.summaries.inserted, 1)
	s := f.summaries.inserted[0]
	assert.Equal(t, int64(1000), s.PositiveCount)
	assert.Equal(t, int64(500), s.NeutralCount)
	assert.Equal(t, s.TotalReviews, s.PositiveCount+s.NeutralCount+s.NegativeCount)
	assert.Equal(t, []models.BatchStatus{models.BatchRunning, models.BatchCompleted}, f.batches.statuses)
}

func TestAnalyzeBatchMissingMappingEntryFallsBackToNeutral(t *testing.T) {
	f := newFixture(1000)
	f.classifier.classify = func(call int, texts []string) (map[string]models.Sentiment, error) {
		m := labelAll(texts, models.SentimentPositive)
		delete(m, texts[0])
		return m, nil
	}
	reviews := makeReviews("batch-hole", 3)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-hole", reviews)

	require.Len(t, f.reviews.chunks, 1)
	assert.Equal(t, models.SentimentNeutral, f.reviews.chunks[0][0].Sentiment)
	assert.Equal(t, models.SentimentPositive, f.reviews.chunks[0][1].Sentiment)
}

func TestAnalyzeBatchSummarizerFailure(t *testing.T) {
	f := newFixture(1000)
	f.summarizer.err = errors.New("summary exploded")
	reviews := makeReviews("batch-sum", 10)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-sum", reviews)

	require.Len(t, f.summaries.inserted, 1)
	s := f.summaries.inserted[0]
	assert.True(t, strings.HasPrefix(s.OverallSummary, "Could not generate summary due to API error:"))
	assert.Empty(t, s.TopPros)
	assert.Empty(t, s.TopCons)
	// A failed summary still completes the batch; the counts are real.
	assert.Equal(t, int64(10), s.PositiveCount)
	assert.Equal(t, []models.BatchStatus{models.BatchRunning, models.BatchCompleted}, f.batches.statuses)
}

func TestAnalyzeBatchPersistenceFailure(t *testing.T) {
	f := newFixture(1000)
	f.reviews.failOn = 1
	f.reviews.failErr = errors.New("mongo down")
	reviews := makeReviews("batch-db", 10)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-db", reviews)

	require.Len(t, f.summaries.inserted, 1)
	s := f.summaries.inserted[0]
	assert.True(t, strings.HasPrefix(s.OverallSummary, "FAILED:"))
	assert.Equal(t, int64(10), s.TotalReviews)
	assert.Equal(t, int64(0), s.PositiveCount+s.NeutralCount+s.NegativeCount)
	assert.Equal(t, []models.BatchStatus{models.BatchRunning, models.BatchFailed}, f.batches.statuses)
}

func TestAnalyzeBatchSummaryInsertFailure(t *testing.T) {
	f := newFixture(1000)
	f.summaries.err = errors.New("serialization broke")
	reviews := makeReviews("batch-drop", 5)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-drop", reviews)

	// No summary could be written, but the status still goes terminal.
	assert.Empty(t, f.summaries.inserted)
	assert.Equal(t, []models.BatchStatus{models.BatchRunning, models.BatchFailed}, f.batches.statuses)
}

func TestAnalyzeBatchPublishesCompletedEvent(t *testing.T) {
	f := newFixture(1000)
	reviews := makeReviews("batch-evt", 3)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-evt", reviews)

	require.Len(t, f.bus.published, 1)
	var e events.BatchAnalysisCompletedEvent
	require.NoError(t, json.Unmarshal(f.bus.published[0].Payload, &e))
	assert.Equal(t, events.BatchAnalysisCompleted, e.Type)
	assert.Equal(t, "batch-evt", e.BatchID)
	assert.Equal(t, int64(3), e.TotalReviews)
}

func TestAnalyzeBatchPublishesFailedEvent(t *testing.T) {
	f := newFixture(1000)
	f.reviews.failOn = 1
	f.reviews.failErr = errors.New("mongo down")
	reviews := makeReviews("batch-evt-fail", 3)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-evt-fail", reviews)

	require.Len(t, f.bus.published, 1)
	var e events.BatchAnalysisFailedEvent
	require.NoError(t, json.Unmarshal(f.bus.published[0].Payload, &e))
	assert.Equal(t, events.BatchAnalysisFailed, e.Type)
	assert.Contains(t, e.Reason, "mongo down")
}

func TestAnalyzeBatchRecordsCallLogs(t *testing.T) {
	f := newFixture(1000)
	reviews := makeReviews("batch-log", 1500)

	f.pipeline.AnalyzeBatch(context.Background(), "batch-log", reviews)

	// Two classify calls plus one summarize call.
	require.Len(t, f.callLogs.entries, 3)
	assert.Equal(t, "classify", f.callLogs.entries[0].Operation)
	assert.Equal(t, 1000, f.callLogs.entries[0].InputCount)
	assert.Equal(t, "classify", f.callLogs.entries[1].Operation)
	assert.Equal(t, "summarize", f.callLogs.entries[2].Operation)
	for _, e := range f.callLogs.entries {
		assert.True(t, e.Success)
		assert.Equal(t, "batch-log", e.BatchID)
	}
}
