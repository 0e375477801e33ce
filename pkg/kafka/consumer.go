package kafka

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	minFetchBackoff = 100 * time.Millisecond
	maxFetchBackoff = 5 * time.Second
)

// Consumer reads order events from a Kafka topic as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Consumer for topic in groupID.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader}
}

// Consume delivers messages to handler until ctx is done. Offsets are
// committed after the handler returns, whether or not it failed, so a
// message that cannot be processed is skipped instead of retried forever.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, routingKey string, body []byte) error) {
	log.Printf(" [*] Waiting for order events on topic %s", c.reader.Config().Topic)
	backoff := minFetchBackoff
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return
			}
			log.Printf("Error fetching message, retrying in %s: %v", backoff, err)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = minFetchBackoff
		if err := handler(ctx, routingKey(msg), msg.Value); err != nil {
			log.Printf("Error processing message at offset %d: %v", msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Printf("Error committing offset %d: %v", msg.Offset, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func routingKey(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "routing_key" {
			return string(h.Value)
		}
	}
	return string(msg.Key)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxFetchBackoff {
		return maxFetchBackoff
	}
	return d
}
