package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/crebito-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// MovementFeedProducer publishes committed movements to the feed topic.
// The feed is at-least-once: the poller only advances its checkpoint after a
// successful publish, so consumers must tolerate replays.
type MovementFeedProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewMovementFeedProducer creates the feed producer and ensures the topic exists
func NewMovementFeedProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*MovementFeedProducer, error) {
	if cfg.MovementTopic == "" {
		return nil, fmt.Errorf("kafka movement topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for movement feed producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.MovementTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure movement topic %s exists: %w", cfg.MovementTopic, err)
	}

	// RequireAll with synchronous writes: the checkpoint must not advance
	// past a movement the broker has not durably accepted.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.MovementTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &MovementFeedProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.MovementTopic,
	}, nil
}

// Publish marshals the value and writes it to the feed topic under key
func (p *MovementFeedProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal movement feed message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish movement to feed",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish movement to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published movement to feed",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

// Close flushes and closes the underlying writer
func (p *MovementFeedProducer) Close() error {
	p.logger.Info("Closing movement feed producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close movement feed writer for topic %s: %w", p.topic, err)
	}
	return nil
}
