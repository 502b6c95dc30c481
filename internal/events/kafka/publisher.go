package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"kasbon-backend/internal/events"
	"kasbon-backend/internal/logger"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "kasbon.loan-events"

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns an async writer; delivery failures are only logged.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
			Async:    true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Warn("kafka: delivery failed", "messages", len(messages), "error", err)
				}
			},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, key string, e events.Event) error {
	msg, err := buildMessage(key, e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error { return p.writer.Close() }

func buildMessage(key string, e events.Event) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type())},
		},
	}, nil
}
