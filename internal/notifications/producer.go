package notifications

import (
	"context"
	"fmt"
	"time"

	"bookworm/internal/shared/config"
	"bookworm/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes notifications to the pipeline. The storefront treats
// publishing as best effort: a down broker never blocks a sale.
type Producer interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

// NewKafkaProducer creates a sync producer with idempotent writes and
// all-replica acks.
func NewKafkaProducer(cfg config.KafkaConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{
		producer: producer,
		topic:    cfg.Topic,
		logger:   logger.GetDefault(),
	}, nil
}

func (p *kafkaProducer) Publish(_ context.Context, notification *Notification) error {
	notification.Status = StatusQueued
	notification.UpdatedAt = time.Now()

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(notification.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
			{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		},
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		notification.Status = StatusFailed
		notification.LastError = err.Error()
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.Info("Notification published",
		"type", string(notification.Type),
		"recipient", notification.RecipientEmail,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.producer.Close()
}

// noopProducer is used when the pipeline is disabled. It logs instead of
// publishing so the rest of the storefront needs no special casing.
type noopProducer struct {
	logger *logger.Logger
}

func NewNoopProducer() Producer {
	return &noopProducer{logger: logger.GetDefault()}
}

func (p *noopProducer) Publish(_ context.Context, notification *Notification) error {
	p.logger.Info("Notification pipeline disabled, dropping message",
		"type", string(notification.Type),
		"recipient", notification.RecipientEmail,
		"subject", notification.Subject,
	)
	return nil
}

func (p *noopProducer) Close() error { return nil }
