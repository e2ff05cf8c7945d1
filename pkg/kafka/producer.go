// Package kafka carries the analytics event stream over segmentio/kafka-go.
// Events are keyed JSON payloads; the key selects both the partition and the
// decoder on the consuming side.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Event pairs a routing key with a JSON-serialisable payload.
type Event struct {
	Key   string
	Value any
}

// Producer writes events to a single topic. Analytics events tolerate loss
// under broker trouble, so the writer trades durability for request latency:
// one ack, short batch window.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           25 * time.Millisecond,
			WriteTimeout:           5 * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish encodes the events and writes them in one call. A marshal failure
// on any event aborts the whole batch before anything is sent.
func (p *Producer) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, len(events))
	for i, ev := range events {
		payload, err := json.Marshal(ev.Value)
		if err != nil {
			return fmt.Errorf("encoding event %q: %w", ev.Key, err)
		}
		msgs[i] = kafka.Message{Key: []byte(ev.Key), Value: payload}
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("publish failed", "count", len(msgs), "error", err)
		return fmt.Errorf("writing %d events: %w", len(msgs), err)
	}
	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
