package alert

import (
	"context"

	"PolyWatch/internal/domain/models"
	"PolyWatch/pkg/kafka"
)

// KafkaSink publishes each alert as a JSON message keyed by wallet, so
// downstream consumers see one wallet's alerts in order.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaSink creates a Kafka sink publishing to topic.
func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

// Deliver publishes the alert.
func (s *KafkaSink) Deliver(ctx context.Context, a *models.Alert) error {
	return s.producer.Publish(ctx, s.topic, []byte(a.Wallet.Address), a)
}
