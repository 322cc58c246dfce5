package events

import "time"

// EventType identifies a batch lifecycle event.
type EventType string

const (
	BatchAnalysisCompleted EventType = "batch.analysis_completed"
	BatchAnalysisFailed    EventType = "batch.analysis_failed"
)

// BaseEvent carries the metadata common to every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// BatchAnalysisCompletedEvent is published once a batch reaches COMPLETED
// with its summary persisted.
type BatchAnalysisCompletedEvent struct {
	BaseEvent
	BatchID       string `json:"batch_id"`
	TotalReviews  int64  `json:"total_reviews"`
	PositiveCount int64  `json:"positive_count"`
	NeutralCount  int64  `json:"neutral_count"`
	NegativeCount int64  `json:"negative_count"`
}

// BatchAnalysisFailedEvent is published when the pipeline gives up on a batch.
type BatchAnalysisFailedEvent struct {
	BaseEvent
	BatchID string `json:"batch_id"`
	Reason  string `json:"reason"`
}
