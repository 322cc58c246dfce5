package analysis_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-dashboard/analysis"
	"review-dashboard/models"
)

// blockingClassifier parks inside ClassifyBatch until released, so tests can
// hold a worker busy while probing the queue.
type blockingClassifier struct {
	started chan string
	release chan struct{}
}

func (b *blockingClassifier) ClassifyBatch(ctx context.Context, texts []string) (map[string]models.Sentiment, error) {
	b.started <- texts[0]
	<-b.release
	return labelAll(texts, models.SentimentPositive), nil
}

func newBlockingFixture(workers, queueSize int) (*fixture, *blockingClassifier, *analysis.Dispatcher) {
	f := newFixture(1000)
	bc := &blockingClassifier{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
	p := analysis.NewPipeline(analysis.PipelineConfig{
		Reviews:    f.reviews,
		Summaries:  f.summaries,
		Batches:    f.batches,
		Classifier: bc,
		Summarizer: f.summarizer,
		ChunkSize:  1000,
	})
	return f, bc, analysis.NewDispatcher(p, workers, queueSize)
}

func TestDispatcherRejectsWhenQueueFull(t *testing.T) {
	f, bc, d := newBlockingFixture(1, 1)

	// First batch occupies the single worker, second fills the queue.
	require.NoError(t, d.Enqueue("batch-a", makeReviews("batch-a", 1)))
	select {
	case <-bc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first batch")
	}
	require.NoError(t, d.Enqueue("batch-b", makeReviews("batch-b", 1)))

	err := d.Enqueue("batch-c", makeReviews("batch-c", 1))
	assert.ErrorIs(t, err, analysis.ErrQueueFull)

	// Once unblocked, both accepted batches run to completion.
	close(bc.release)
	d.Close()

	require.Len(t, f.summaries.inserted, 2)
	ids := []string{f.summaries.inserted[0].BatchID, f.summaries.inserted[1].BatchID}
	sort.Strings(ids)
	assert.Equal(t, []string{"batch-a", "batch-b"}, ids)
}

func TestDispatcherRunsBatchesConcurrently(t *testing.T) {
	_, bc, d := newBlockingFixture(2, 4)
	defer func() {
		close(bc.release)
		d.Close()
	}()

	require.NoError(t, d.Enqueue("batch-a", makeReviews("batch-a", 1)))
	require.NoError(t, d.Enqueue("batch-b", makeReviews("batch-b", 1)))

	// Both workers must be inside ClassifyBatch at the same time.
	for i := 0; i < 2; i++ {
		select {
		case <-bc.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 2 batches started", i)
		}
	}
}

func TestDispatcherEnqueueAfterClose(t *testing.T) {
	f := newFixture(1000)
	d := analysis.NewDispatcher(f.pipeline, 1, 1)
	d.Close()

	err := d.Enqueue("batch-late", makeReviews("batch-late", 1))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, analysis.ErrQueueFull)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	f := newFixture(1000)
	d := analysis.NewDispatcher(f.pipeline, 2, 2)

	require.NoError(t, d.Enqueue("batch-x", makeReviews("batch-x", 1)))
	d.Close()
	d.Close()

	require.Len(t, f.summaries.inserted, 1)
	assert.Equal(t, "batch-x", f.summaries.inserted[0].BatchID)
}
