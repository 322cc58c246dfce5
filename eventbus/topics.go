package eventbus

import "os"

// TopicBatchEvents is the topic carrying batch lifecycle events.
const TopicBatchEvents = "review-dashboard.batch.events"

// GetBrokers returns Kafka bootstrap servers from env KAFKA_BOOTSTRAP_SERVERS.
// Empty means eventing is disabled and the Noop bus is used.
func GetBrokers() string {
	return os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
}
