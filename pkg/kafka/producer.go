package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer writes order events to a Kafka topic.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Producer for topic on brokers.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{writer: writer}
}

// Publish writes body keyed by routingKey. The routing key is also carried
// as a header so consumers can filter without decoding the body.
func (p *Producer) Publish(ctx context.Context, routingKey string, body []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(routingKey),
		Value: body,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "routing_key", Value: []byte(routingKey)},
		},
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
