package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BatchStatus tracks a batch through the analysis pipeline so the API can
// distinguish "still processing" from "failed" and "never existed".
type BatchStatus string

const (
	BatchPending   BatchStatus = "PENDING"
	BatchRunning   BatchStatus = "RUNNING"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchFailed    BatchStatus = "FAILED"
)

// Batch is one uploaded set of reviews analyzed together.
// Collection: batches
type Batch struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	BatchID      string             `bson:"batch_id" json:"batch_id"`
	Status       BatchStatus        `bson:"status" json:"status"`
	TotalReviews int64              `bson:"total_reviews" json:"total_reviews"`
}
