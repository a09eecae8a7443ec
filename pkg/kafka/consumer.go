// Package kafka provides Kafka producer and consumer clients backed by
// segmentio/kafka-go. The producer serialises events as JSON, while the
// consumer decodes them via a pluggable MessageHandler callback.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
)

const fetchRetryDelay = time.Second

// ErrMalformed marks a message that can never be processed. The consumer
// commits such messages so they are not redelivered.
var ErrMalformed = errors.New("malformed message")

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// ConsumerStats counts messages by what happened to them.
type ConsumerStats struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

// Consumer reads messages from a Kafka topic and dispatches them to a
// MessageHandler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// NewConsumer creates a Consumer for the given topic and handler. A new
// consumer group starts from the latest offset.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:  r,
		logger:  logger.WithComponent("kafka-consumer").With("topic", topic),
		handler: handler,
	}
}

// Start enters the consume loop until ctx is cancelled. The reader is closed
// on return. A message whose handler fails with anything other than
// ErrMalformed is left uncommitted.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err(), "stats", c.Stats())
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(fetchRetryDelay):
			}
			continue
		}
		if !c.dispatch(ctx, msg) {
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// dispatch runs the handler and reports whether the message should be
// committed.
func (c *Consumer) dispatch(ctx context.Context, msg kafka.Message) bool {
	err := c.handler(ctx, msg.Key, msg.Value)
	switch {
	case err == nil:
		c.processed.Add(1)
		return true
	case errors.Is(err, ErrMalformed):
		c.skipped.Add(1)
		c.logger.Warn("skipping malformed message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return true
	default:
		c.failed.Add(1)
		c.logger.Error("failed to process message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return false
	}
}

// Stats returns the message counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Processed: c.processed.Load(),
		Skipped:   c.skipped.Load(),
		Failed:    c.failed.Load(),
	}
}

// DecodeJSON unmarshals a message value into T. Unknown fields are rejected
// so that events of another shape are not silently accepted. Errors wrap
// ErrMalformed.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w: %w", ErrMalformed, err)
	}
	return result, nil
}
