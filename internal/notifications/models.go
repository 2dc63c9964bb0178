package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeOrderConfirmed   NotificationType = "ORDER_CONFIRMED"
	TypeGiftCardDelivery NotificationType = "GIFT_CARD_DELIVERY"
	TypeLowStockAlert    NotificationType = "LOW_STOCK_ALERT"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusQueued  NotificationStatus = "QUEUED"
	StatusSent    NotificationStatus = "SENT"
	StatusFailed  NotificationStatus = "FAILED"
)

// Notification is the message shape on the wire between the storefront and
// the email workers.
type Notification struct {
	ID   uuid.UUID        `json:"id"`
	Type NotificationType `json:"type"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject string                 `json:"subject"`
	Data    map[string]interface{} `json:"data"`

	Status    NotificationStatus `json:"status"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewNotification(notType NotificationType, email, name, subject string, data map[string]interface{}) *Notification {
	now := time.Now()
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Notification{
		ID:             uuid.New(),
		Type:           notType,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        subject,
		Data:           data,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// PartitionKey routes all of one recipient's messages to the same partition
// so they are delivered in order.
func (n *Notification) PartitionKey() string {
	if n.RecipientEmail != "" {
		return n.RecipientEmail
	}
	return n.ID.String()
}

func (n *Notification) MarkSent() {
	n.Status = StatusSent
	n.UpdatedAt = time.Now()
}

func (n *Notification) MarkFailed(err error) {
	n.Status = StatusFailed
	n.LastError = err.Error()
	n.UpdatedAt = time.Now()
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
