package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"review-dashboard/eventbus"
	"review-dashboard/events"
	"review-dashboard/internal/logger"
	"review-dashboard/models"
	"review-dashboard/summarizer"
)

// ReviewStore persists per-chunk sentiment updates.
type ReviewStore interface {
	UpdateSentiments(ctx context.Context, reviews []models.Review) error
}

// SummaryStore persists the single terminal summary of a batch.
type SummaryStore interface {
	Insert(ctx context.Context, doc models.AnalysisSummary) error
}

// BatchStore tracks the batch through its pipeline statuses.
type BatchStore interface {
	UpdateStatus(ctx context.Context, batchID string, status models.BatchStatus) error
}

// CallLogStore records individual LLM calls for monitoring. Optional.
type CallLogStore interface {
	Insert(ctx context.Context, log models.AILog) error
}

// SentimentClassifier labels a chunk of texts. The returned map must carry an
// entry for every input text; a non-nil error signals the whole chunk
// degraded and lets the pipeline decide the substitution policy.
type SentimentClassifier interface {
	ClassifyBatch(ctx context.Context, texts []string) (map[string]models.Sentiment, error)
}

// SummaryGenerator produces the aggregate pros/cons/narrative.
type SummaryGenerator interface {
	Summarize(ctx context.Context, texts []string) (summarizer.Result, error)
}

// PipelineConfig wires the pipeline's collaborators.
type PipelineConfig struct {
	Reviews    ReviewStore
	Summaries  SummaryStore
	Batches    BatchStore
	CallLogs   CallLogStore // may be nil
	Classifier SentimentClassifier
	Summarizer SummaryGenerator
	Bus        eventbus.EventBus // may be nil
	ChunkSize  int
	ModelName  string
}

// Pipeline drives one batch of reviews through classification and
// summarization and materializes the terminal AnalysisSummary. It is the only
// component with persistence side effects and the only one that knows what a
// batch is.
type Pipeline struct {
	reviews    ReviewStore
	summaries  SummaryStore
	batches    BatchStore
	callLogs   CallLogStore
	classifier SentimentClassifier
	summarizer SummaryGenerator
	bus        eventbus.EventBus
	chunkSize  int
	modelName  string
}

const defaultChunkSize = 1000

func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Bus == nil {
		cfg.Bus = eventbus.Noop{}
	}
	return &Pipeline{
		reviews:    cfg.Reviews,
		summaries:  cfg.Summaries,
		batches:    cfg.Batches,
		callLogs:   cfg.CallLogs,
		classifier: cfg.Classifier,
		summarizer: cfg.Summarizer,
		bus:        cfg.Bus,
		chunkSize:  cfg.ChunkSize,
		modelName:  cfg.ModelName,
	}
}

// AnalyzeBatch runs the full pipeline for one batch. It never returns an
// error: every failure path ends in a terminal, observable state (a failure
// summary and a FAILED status) or, when even that write fails, in logs.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, batchID string, reviews []models.Review) {
	logger.InfoWithFields("batch analysis started", logger.Fields{
		"batch_id": batchID,
		"reviews":  len(reviews),
	})
	if err := p.batches.UpdateStatus(ctx, batchID, models.BatchRunning); err != nil {
		logger.Log.Warnf("failed to mark batch %s RUNNING: %v", batchID, err)
	}

	if err := p.analyze(ctx, batchID, reviews); err != nil {
		logger.ErrorWithFields("batch analysis failed", logger.Fields{
			"batch_id": batchID,
			"error":    err.Error(),
		})

		failure := models.AnalysisSummary{
			BatchID:        batchID,
			TotalReviews:   int64(len(reviews)),
			TopPros:        []string{},
			TopCons:        []string{},
			OverallSummary: "FAILED: " + err.Error(),
		}
		if ierr := p.summaries.Insert(ctx, failure); ierr != nil {
			// The batch keeps its FAILED status but has no summary document.
			logger.Log.Errorf("failed to persist failure summary for batch %s: %v", batchID, ierr)
		}
		if serr := p.batches.UpdateStatus(ctx, batchID, models.BatchFailed); serr != nil {
			logger.Log.Errorf("failed to mark batch %s FAILED: %v", batchID, serr)
		}
		p.publishFailed(ctx, batchID, err)
	}
}

func (p *Pipeline) analyze(ctx context.Context, batchID string, reviews []models.Review) error {
	// Classify in fixed-size chunks, preserving upload order. A chunk that
	// fails classification degrades to NEUTRAL and never aborts the batch;
	// a chunk that fails to persist does.
	for start := 0; start < len(reviews); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(reviews) {
			end = len(reviews)
		}
		chunk := reviews[start:end]

		texts := make([]string, 0, len(chunk))
		for _, rv := range chunk {
			texts = append(texts, rv.ReviewText)
		}

		began := time.Now()
		results, cerr := p.classifier.ClassifyBatch(ctx, texts)
		p.logCall(ctx, batchID, "classify", len(texts), began, cerr, "")

		if cerr != nil {
			logger.ErrorWithFields("chunk classification failed, defaulting to NEUTRAL", logger.Fields{
				"batch_id":    batchID,
				"chunk_start": start,
				"error":       cerr.Error(),
			})
			for i := range chunk {
				chunk[i].Sentiment = models.SentimentNeutral
			}
		} else {
			for i := range chunk {
				label, ok := results[chunk[i].ReviewText]
				if !ok {
					label = models.SentimentNeutral
				}
				chunk[i].Sentiment = label
			}
		}

		if err := p.reviews.UpdateSentiments(ctx, chunk); err != nil {
			return fmt.Errorf("persist chunk starting at %d: %w", start, err)
		}
	}

	texts := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		texts = append(texts, rv.ReviewText)
	}

	began := time.Now()
	sres, serr := p.summarizer.Summarize(ctx, texts)
	p.logCall(ctx, batchID, "summarize", len(texts), began, serr, sres.Summary)
	if serr != nil {
		logger.ErrorWithFields("summary generation failed", logger.Fields{
			"batch_id": batchID,
			"error":    serr.Error(),
		})
		sres = summarizer.Result{
			Pros:    []string{},
			Cons:    []string{},
			Summary: "Could not generate summary due to API error: " + serr.Error(),
		}
	}

	var positive, neutral, negative int64
	for _, rv := range reviews {
		switch rv.Sentiment {
		case models.SentimentPositive:
			positive++
		case models.SentimentNegative:
			negative++
		default:
			neutral++
		}
	}

	summary := models.AnalysisSummary{
		BatchID:        batchID,
		TotalReviews:   int64(len(reviews)),
		PositiveCount:  positive,
		NeutralCount:   neutral,
		NegativeCount:  negative,
		TopPros:        sres.Pros,
		TopCons:        sres.Cons,
		OverallSummary: sres.Summary,
	}
	if err := p.summaries.Insert(ctx, summary); err != nil {
		// Without the summary the batch would look unfinished forever; at
		// least flip the status so pollers see a terminal state.
		logger.Log.Errorf("failed to persist summary for batch %s: %v", batchID, err)
		if serr := p.batches.UpdateStatus(ctx, batchID, models.BatchFailed); serr != nil {
			logger.Log.Errorf("failed to mark batch %s FAILED: %v", batchID, serr)
		}
		return nil
	}

	if err := p.batches.UpdateStatus(ctx, batchID, models.BatchCompleted); err != nil {
		logger.Log.Errorf("failed to mark batch %s COMPLETED: %v", batchID, err)
	}
	p.publishCompleted(ctx, summary)

	logger.InfoWithFields("batch analysis completed", logger.Fields{
		"batch_id": batchID,
		"total":    summary.TotalReviews,
		"positive": summary.PositiveCount,
		"neutral":  summary.NeutralCount,
		"negative": summary.NegativeCount,
	})
	return nil
}

func (p *Pipeline) logCall(ctx context.Context, batchID, operation string, inputs int, began time.Time, callErr error, excerpt string) {
	if p.callLogs == nil {
		return
	}
	entry := models.AILog{
		BatchID:         batchID,
		Operation:       operation,
		ModelName:       p.modelName,
		InputCount:      inputs,
		DurationMs:      time.Since(began).Milliseconds(),
		Success:         callErr == nil,
		ResponseExcerpt: truncate(excerpt, 200),
		RequestedAt:     began,
		CompletedAt:     time.Now(),
	}
	if callErr != nil {
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}
	if err := p.callLogs.Insert(ctx, entry); err != nil {
		logger.Log.Warnf("failed to insert ai_log for batch %s: %v", batchID, err)
	}
}

func (p *Pipeline) publishCompleted(ctx context.Context, summary models.AnalysisSummary) {
	e := events.BatchAnalysisCompletedEvent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.BatchAnalysisCompleted,
			Timestamp: time.Now(),
			Source:    "analysis",
			Version:   "1.0",
		},
		BatchID:       summary.BatchID,
		TotalReviews:  summary.TotalReviews,
		PositiveCount: summary.PositiveCount,
		NeutralCount:  summary.NeutralCount,
		NegativeCount: summary.NegativeCount,
	}
	evt, err := eventbus.NewJSONEvent(e.ID, e)
	if err != nil {
		logger.Log.Errorf("failed to build completed event: %v", err)
		return
	}
	if err := p.bus.Publish(ctx, eventbus.TopicBatchEvents, evt); err != nil {
		logger.Log.Errorf("failed to publish completed event for batch %s: %v", summary.BatchID, err)
	}
}

func (p *Pipeline) publishFailed(ctx context.Context, batchID string, cause error) {
	e := events.BatchAnalysisFailedEvent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.BatchAnalysisFailed,
			Timestamp: time.Now(),
			Source:    "analysis",
			Version:   "1.0",
		},
		BatchID: batchID,
		Reason:  cause.Error(),
	}
	evt, err := eventbus.NewJSONEvent(e.ID, e)
	if err != nil {
		logger.Log.Errorf("failed to build failed event: %v", err)
		return
	}
	if err := p.bus.Publish(ctx, eventbus.TopicBatchEvents, evt); err != nil {
		logger.Log.Errorf("failed to publish failed event for batch %s: %v", batchID, err)
	}
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
