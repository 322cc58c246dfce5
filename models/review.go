package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a single customer review ingested from an upload.
// Collection: reviews
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	ReviewText string             `bson:"review_text" json:"review_text"`
	ProductID  string             `bson:"product_id" json:"product_id"`
	Sentiment  Sentiment          `bson:"sentiment" json:"sentiment"`
	BatchID    string             `bson:"batch_id" json:"batch_id"`
}
