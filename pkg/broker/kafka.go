package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher delivers keyed messages to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
	Close() error
}

// KafkaPublisher writes messages to a single topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher builds a synchronous writer so delivery failures surface to the job queue for retry.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaPublisher{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			Async:                  false,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}, nil
}

// Publish writes one message keyed by recipient so per-recipient ordering is kept.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("kafka publisher not initialised")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// LogPublisher records messages in the application log; used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(_ context.Context, key string, value []byte) error {
	p.logger.Info("notification published", zap.String("key", key), zap.ByteString("payload", value))
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() error { return nil }
