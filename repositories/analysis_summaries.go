package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"review-dashboard/models"
)

type AnalysisSummaryRepository struct {
	col *mongo.Collection
}

func NewAnalysisSummaryRepository(db *mongo.Database) *AnalysisSummaryRepository {
	return &AnalysisSummaryRepository{col: db.Collection("analysis_summaries")}
}

func (r *AnalysisSummaryRepository) Insert(ctx context.Context, doc models.AnalysisSummary) error {
	if doc.AnalyzedAt.IsZero() {
		doc.AnalyzedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// FindByBatchID returns the summary of a batch, or mongo.ErrNoDocuments while
// the batch has not reached a terminal state.
func (r *AnalysisSummaryRepository) FindByBatchID(ctx context.Context, batchID string) (*models.AnalysisSummary, error) {
	var s models.AnalysisSummary
	if err := r.col.FindOne(ctx, bson.M{"batch_id": batchID}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
