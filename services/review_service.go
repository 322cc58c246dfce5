package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"review-dashboard/analysis"
	"review-dashboard/ingest"
	"review-dashboard/internal/logger"
	"review-dashboard/models"
	"review-dashboard/repositories"
)

// ErrBatchNotFound is returned when a batch id is unknown to the system.
var ErrBatchNotFound = errors.New("batch not found")

// AnalysisResult is what pollers get back: the summary once the batch is
// terminal, otherwise just the pipeline status.
type AnalysisResult struct {
	Status  models.BatchStatus
	Summary *models.AnalysisSummary
}

// ReviewService owns the upload-to-analysis handoff and the polling lookup.
type ReviewService struct {
	reviews    *repositories.ReviewRepository
	batches    *repositories.BatchRepository
	summaries  *repositories.AnalysisSummaryRepository
	dispatcher *analysis.Dispatcher
}

func NewReviewService(
	reviews *repositories.ReviewRepository,
	batches *repositories.BatchRepository,
	summaries *repositories.AnalysisSummaryRepository,
	dispatcher *analysis.Dispatcher,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		batches:    batches,
		summaries:  summaries,
		dispatcher: dispatcher,
	}
}

// SubmitBatch parses an uploaded CSV, persists the batch and its reviews with
// PENDING sentiment, and enqueues it for background analysis. It returns once
// everything is durably persisted, well before the analysis completes. A full
// analysis queue rejects the submission; the persisted batch is then marked
// FAILED so it does not linger as pending.
func (s *ReviewService) SubmitBatch(ctx context.Context, file io.Reader) (string, error) {
	texts, err := ingest.ParseReviews(file)
	if err != nil {
		return "", fmt.Errorf("parse upload: %w", err)
	}

	batchID := uuid.New().String()

	reviews := make([]models.Review, 0, len(texts))
	for _, text := range texts {
		reviews = append(reviews, models.Review{
			ID:         primitive.NewObjectID(),
			ReviewText: text,
			ProductID:  "UNKNOWN",
			Sentiment:  models.SentimentPending,
			BatchID:    batchID,
		})
	}

	if err := s.batches.Insert(ctx, models.Batch{
		BatchID:      batchID,
		Status:       models.BatchPending,
		TotalReviews: int64(len(reviews)),
	}); err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}
	if err := s.reviews.InsertMany(ctx, reviews); err != nil {
		return "", fmt.Errorf("insert reviews: %w", err)
	}

	if err := s.dispatcher.Enqueue(batchID, reviews); err != nil {
		if serr := s.batches.UpdateStatus(ctx, batchID, models.BatchFailed); serr != nil {
			logger.Log.Errorf("failed to mark rejected batch %s FAILED: %v", batchID, serr)
		}
		return "", fmt.Errorf("enqueue batch %s: %w", batchID, err)
	}

	logger.InfoWithFields("batch submitted", logger.Fields{
		"batch_id": batchID,
		"reviews":  len(reviews),
	})
	return batchID, nil
}

// GetAnalysis looks up a batch's analysis. The summary is set once the batch
// reached a terminal state; before that only the status is populated.
func (s *ReviewService) GetAnalysis(ctx context.Context, batchID string) (AnalysisResult, error) {
	summary, err := s.summaries.FindByBatchID(ctx, batchID)
	if err == nil {
		status := models.BatchCompleted
		if b, berr := s.batches.FindByBatchID(ctx, batchID); berr == nil {
			status = b.Status
		}
		return AnalysisResult{Status: status, Summary: summary}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return AnalysisResult{}, fmt.Errorf("find summary: %w", err)
	}

	b, err := s.batches.FindByBatchID(ctx, batchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AnalysisResult{}, ErrBatchNotFound
		}
		return AnalysisResult{}, fmt.Errorf("find batch: %w", err)
	}
	return AnalysisResult{Status: b.Status}, nil
}
