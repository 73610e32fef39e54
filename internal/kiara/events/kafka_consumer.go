package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaReader is the subset of *kafka.Reader the consumer uses.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler func(context.Context, Event) error
	// retry builds the policy for redelivering an event to a failing
	// handler. Nil means exponential backoff with no time limit.
	retry func() backoff.BackOff
}

// NewConsumer reads order events from topic as part of groupID.
func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger: logger.Named("kafka_consumer"),
	}
}

// Run blocks until ctx is cancelled. Messages that cannot be parsed are
// committed and skipped. A failing handler is retried with backoff and
// nothing later is fetched meanwhile: committing a later offset would
// acknowledge the failed one too. Cancelling ctx during retries returns
// with the message uncommitted.
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			continue
		}

		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to parse event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			c.commit(ctx, msg)
			continue
		}

		if err := c.handle(ctx, event, msg.Offset); err != nil {
			c.logger.Warn("Stopped before event was handled",
				zap.Error(err),
				zap.Int64("offset", msg.Offset),
			)
			return
		}
		c.commit(ctx, msg)
	}
}

// handle runs the handler until it succeeds or ctx is cancelled.
func (c *Consumer) handle(ctx context.Context, event Event, offset int64) error {
	if c.handler == nil {
		return nil
	}
	policy := c.newRetryPolicy()
	return backoff.RetryNotify(func() error {
		return c.handler(ctx, event)
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		c.logger.Error("Failed to handle event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Int64("offset", offset),
			zap.Duration("retry_in", wait),
		)
	})
}

func (c *Consumer) newRetryPolicy() backoff.BackOff {
	if c.retry != nil {
		return c.retry()
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0
	return policy
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
	}
}

func (c *Consumer) RegisterHandler(fn func(context.Context, Event) error) {
	c.handler = fn
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
