package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from the consumer's topic.
type MessageHandler interface {
	Topic() string
	Handle(ctx context.Context, data []byte) error
}

// Consumer reads one topic and delivers messages to a handler. Handler
// errors are logged and the offset is committed anyway; campaign requests
// are retried by resubmission, not by redelivery.
type Consumer struct {
	cfg     *ConsumerConfig
	reader  *kafka.Reader
	handler MessageHandler
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer creates a Kafka consumer for the handler's topic.
func NewConsumer(handler MessageHandler, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		MinBytes:   1,
		MaxBytes:   10 << 20,
		BackoffMin: 250 * time.Millisecond,
		BackoffMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = handler.Topic()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return &Consumer{
		cfg:     cfg,
		reader:  reader,
		handler: handler,
		done:    make(chan struct{}),
	}, nil
}

// Start blocks reading messages until Stop or context cancellation.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	defer close(c.done)

	backoff := c.cfg.BackoffMin
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("kafka consumer: read error: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > c.cfg.BackoffMax {
				backoff = c.cfg.BackoffMax
			}
			continue
		}
		backoff = c.cfg.BackoffMin

		if err := c.handler.Handle(ctx, msg.Value); err != nil {
			log.Printf("kafka consumer: handler error on %s@%d: %v", msg.Topic, msg.Offset, err)
		}
	}
}

// Stop cancels the read loop and closes the reader.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	return c.reader.Close()
}
