package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"mysafepocket/internal/platform/kafka"
)

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// KafkaStore publishes events as JSON records keyed by pocket ID, so events
// of one pocket stay ordered within a partition.
type KafkaStore struct {
	producer Producer
	topic    string
}

// NewKafkaStore constructs a Kafka audit sink writing to topic.
func NewKafkaStore(producer Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: producer, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	msg := &kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.PocketID),
		Value: value,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
