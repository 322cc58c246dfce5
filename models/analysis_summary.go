package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalysisSummary is the final aggregate result for one batch. It is written
// exactly once, at the end of the pipeline, and never mutated afterward.
// Its presence is the signal that the batch reached a terminal state.
// Collection: analysis_summaries
type AnalysisSummary struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID        string             `bson:"batch_id" json:"batch_id"`
	TotalReviews   int64              `bson:"total_reviews" json:"total_reviews"`
	PositiveCount  int64              `bson:"positive_count" json:"positive_count"`
	NeutralCount   int64              `bson:"neutral_count" json:"neutral_count"`
	NegativeCount  int64              `bson:"negative_count" json:"negative_count"`
	TopPros        []string           `bson:"top_pros" json:"top_pros"`
	TopCons        []string           `bson:"top_cons" json:"top_cons"`
	OverallSummary string             `bson:"overall_summary" json:"overall_summary"`
	AnalyzedAt     time.Time          `bson:"analyzed_at" json:"analyzed_at"`
}
