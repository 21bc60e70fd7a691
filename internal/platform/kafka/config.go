package kafka

import "time"

// ProducerConfig holds configuration for the Kafka producer.
type ProducerConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
	// TopicPrefix is prepended to every dataset table name to form its topic.
	TopicPrefix string
}

// DefaultProducerConfig returns defaults for loading whole datasets.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Acks:            "all",
		Retries:         3,
		DeliveryTimeout: 30 * time.Second,
		TopicPrefix:     "amlgen.",
	}
}
