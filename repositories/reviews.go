package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"review-dashboard/models"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("reviews")}
}

// InsertMany bulk-inserts freshly ingested reviews. Callers pre-assign the
// ObjectIDs so later sentiment updates can address records directly.
func (r *ReviewRepository) InsertMany(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(reviews))
	for i := range reviews {
		if reviews[i].CreatedAt.IsZero() {
			reviews[i].CreatedAt = now
		}
		docs = append(docs, reviews[i])
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

// UpdateSentiments writes the final label of each review in one bulk write.
// Used once per chunk by the analysis pipeline.
func (r *ReviewRepository) UpdateSentiments(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(reviews))
	for _, rv := range reviews {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": rv.ID}).
			SetUpdate(bson.M{"$set": bson.M{"sentiment": rv.Sentiment}}))
	}
	_, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// FindByBatchID returns all reviews of a batch in insertion order.
func (r *ReviewRepository) FindByBatchID(ctx context.Context, batchID string) ([]models.Review, error) {
	cur, err := r.col.Find(ctx, bson.M{"batch_id": batchID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CountByBatchAndSentiment returns the number of reviews with the given
// label inside one batch.
func (r *ReviewRepository) CountByBatchAndSentiment(ctx context.Context, batchID string, s models.Sentiment) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"batch_id": batchID, "sentiment": s})
}
