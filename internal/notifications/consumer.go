package notifications

import (
	"context"
	"fmt"
	"time"

	"bookworm/internal/shared/config"
	"bookworm/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the notification topic and hands each message to the email
// sender. It runs as a consumer group so multiple storefront instances share
// the work.
type Consumer struct {
	group  sarama.ConsumerGroup
	topic  string
	sender EmailSender
	logger *logger.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(cfg config.KafkaConfig, sender EmailSender) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:  group,
		topic:  cfg.Topic,
		sender: sender,
		logger: logger.GetDefault(),
		done:   make(chan struct{}),
	}, nil
}

func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		defer close(c.done)
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, &handler{sender: c.sender, logger: c.logger}); err != nil {
				c.logger.WithError(err).Error("Notification consumer error")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			c.logger.WithError(err).Error("Notification consumer group error")
		}
	}()

	c.logger.Info("Notification consumer started", "topic", c.topic)
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	return c.group.Close()
}

type handler struct {
	sender EmailSender
	logger *logger.Logger
}

func (h *handler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		notification, err := FromJSON(message.Value)
		if err != nil {
			h.logger.WithError(err).Warn("Dropping malformed notification message",
				"partition", message.Partition, "offset", message.Offset)
			session.MarkMessage(message, "")
			continue
		}

		if err := h.sender.Send(session.Context(), notification); err != nil {
			notification.MarkFailed(err)
			h.logger.WithError(err).Error("Failed to deliver notification",
				"type", string(notification.Type),
				"recipient", notification.RecipientEmail,
			)
		}

		session.MarkMessage(message, "")
	}
	return nil
}
