package notifications

import (
	"context"
	"fmt"

	"bookworm/pkg/logger"
)

// Publisher is the storefront-facing API: each method builds the message for
// one business event and hands it to the producer. Failures are logged and
// swallowed, never surfaced to the shopper.
type Publisher struct {
	producer Producer
	logger   *logger.Logger
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger.GetDefault(),
	}
}

func (p *Publisher) OrderConfirmed(ctx context.Context, email, name, orderRef string, total float64, itemCount int) {
	notification := NewNotification(TypeOrderConfirmed, email, name,
		fmt.Sprintf("Order %s confirmed", orderRef),
		map[string]interface{}{
			"order_ref":  orderRef,
			"total":      total,
			"item_count": itemCount,
		})
	p.publish(ctx, notification)
}

func (p *Publisher) GiftCardDelivery(ctx context.Context, recipientEmail, recipientName, code string, balance float64, message string) {
	notification := NewNotification(TypeGiftCardDelivery, recipientEmail, recipientName,
		"You've received a gift card!",
		map[string]interface{}{
			"code":    code,
			"balance": balance,
			"message": message,
		})
	p.publish(ctx, notification)
}

func (p *Publisher) LowStockAlert(ctx context.Context, staffEmail, bookID, title string, available int) {
	notification := NewNotification(TypeLowStockAlert, staffEmail, "Inventory Team",
		fmt.Sprintf("Low stock: %s", title),
		map[string]interface{}{
			"book_id":   bookID,
			"title":     title,
			"available": available,
		})
	p.publish(ctx, notification)
}

func (p *Publisher) publish(ctx context.Context, notification *Notification) {
	if err := p.producer.Publish(ctx, notification); err != nil {
		p.logger.WithError(err).Warn("Failed to publish notification",
			"type", string(notification.Type),
			"recipient", notification.RecipientEmail,
		)
	}
}
