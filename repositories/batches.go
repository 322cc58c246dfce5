package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"review-dashboard/models"
)

type BatchRepository struct {
	col *mongo.Collection
}

func NewBatchRepository(db *mongo.Database) *BatchRepository {
	return &BatchRepository{col: db.Collection("batches")}
}

func (r *BatchRepository) Insert(ctx context.Context, b models.Batch) error {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, b)
	return err
}

// UpdateStatus moves a batch to the given pipeline status.
func (r *BatchRepository) UpdateStatus(ctx context.Context, batchID string, status models.BatchStatus) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"batch_id": batchID}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	return err
}

func (r *BatchRepository) FindByBatchID(ctx context.Context, batchID string) (*models.Batch, error) {
	var b models.Batch
	if err := r.col.FindOne(ctx, bson.M{"batch_id": batchID}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
