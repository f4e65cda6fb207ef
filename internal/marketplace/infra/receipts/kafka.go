package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
	"github.com/jcmexdev/course-marketplace/internal/pkg/reqctx"
)

const DefaultTopic = "payment.receipt"

// KafkaPublisher hands receipts to the mail dispatcher through a topic,
// keyed by order id so retries for one order stay on one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewKafkaPublisherFromProducer(producer, topic), nil
}

func NewKafkaPublisherFromProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishReceipt(ctx context.Context, r domain.PaymentReceipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(r.OrderID),
		Value: sarama.ByteEncoder(data),
	}
	if id := reqctx.RequestID(ctx); id != "" {
		msg.Headers = []sarama.RecordHeader{{Key: []byte(reqctx.HeaderXRequestId), Value: []byte(id)}}
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	slog.InfoContext(ctx, "receipt published",
		"topic", p.topic, "partition", partition, "offset", offset, "order_id", r.OrderID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) PublishReceipt(ctx context.Context, r domain.PaymentReceipt) error {
	slog.InfoContext(ctx, "receipt not dispatched, no broker configured",
		"order_id", r.OrderID, "payment_id", r.PaymentID, "email", r.Email)
	return nil
}
