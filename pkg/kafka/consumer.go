package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Handler processes one event. Returning an error marks the event as skipped;
// the consumer still commits the offset, since a malformed analytics event
// can never become valid on redelivery.
type Handler func(ctx context.Context, key, value []byte) error

// Consumer tails a topic as part of a consumer group and feeds each event to
// its Handler.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
	logger  *slog.Logger
}

func NewConsumer(cfg config.KafkaConfig, topic string, h Handler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1 << 10,
			MaxBytes:    10 << 20,
			StartOffset: kafka.LastOffset,
		}),
		handler: h,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start fetches events until ctx is cancelled. FetchMessage blocks and
// honours ctx, so no extra polling loop is needed.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping")
				return nil
			}
			c.logger.Error("fetch failed", "error", err)
			continue
		}
		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Warn("event skipped",
				"key", string(msg.Key), "offset", msg.Offset, "error", err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

// Close releases the reader; safe to call while Start is blocked in fetch.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Decode unmarshals an event payload into T.
func Decode[T any](value []byte) (T, error) {
	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		return out, fmt.Errorf("decoding event: %w", err)
	}
	return out, nil
}
