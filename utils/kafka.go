package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventPublisher writes domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(broker string) (EventPublisher, error) {
	if broker == "" {
		broker = "localhost:9092"
	}

	// fail fast if the broker is unreachable
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	conn.Close()

	return &kafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

func (k *kafkaProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	return k.writer.WriteMessages(ctx, newMessage(topic, key, value))
}

// newMessage keys by record id so every event for one client lands on the
// same partition, in order.
func newMessage(topic string, key, value []byte) kafka.Message {
	return kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	}
}

func (k *kafkaProducer) Close() error {
	return k.writer.Close()
}
