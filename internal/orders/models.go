package orders

import (
	"time"

	"bookworm/internal/cart"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

type PaymentStatus string

const (
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDeclined PaymentStatus = "declined"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderRef string    `json:"order_ref" gorm:"uniqueIndex;not null;size:20"`
	HolderID string    `json:"holder_id" gorm:"not null;size:128;index"`

	// UserID is set when the shopper was authenticated at checkout.
	UserID *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`

	Email string `json:"email" gorm:"not null;size:255"`
	Name  string `json:"name" gorm:"size:255"`

	Status OrderStatus `json:"status" gorm:"type:varchar(20);not null"`
	Total  float64     `json:"total" gorm:"not null;check:total >= 0"`

	Items   []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment *Payment    `json:"payment,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`

	ItemType   cart.ItemType `json:"item_type" gorm:"type:varchar(20);not null"`
	BookID     *uuid.UUID    `json:"book_id,omitempty" gorm:"type:uuid"`
	GiftCardID *uuid.UUID    `json:"gift_card_id,omitempty" gorm:"type:uuid"`

	Title     string  `json:"title" gorm:"size:500"`
	Quantity  int     `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice float64 `json:"unit_price" gorm:"not null;check:unit_price >= 0"`
	LineTotal float64 `json:"line_total" gorm:"not null;check:line_total >= 0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type Payment struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;uniqueIndex"`

	Amount       float64       `json:"amount" gorm:"not null;check:amount >= 0"`
	Method       string        `json:"method" gorm:"size:20;not null"`
	Status       PaymentStatus `json:"status" gorm:"type:varchar(20);not null"`
	ProcessorRef string        `json:"processor_ref" gorm:"size:64"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

// Request/response models

type CheckoutRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Name  string      `json:"name" binding:"max=255"`
	Card  CardDetails `json:"card" binding:"required"`
}

type CardDetails struct {
	Number   string `json:"number" binding:"required,min=12,max=19"`
	ExpMonth int    `json:"exp_month" binding:"required,min=1,max=12"`
	ExpYear  int    `json:"exp_year" binding:"required,min=2024"`
	CVC      string `json:"cvc" binding:"required,min=3,max=4"`
}

type OrderItemResponse struct {
	ItemType  cart.ItemType `json:"item_type"`
	BookID    string        `json:"book_id,omitempty"`
	Title     string        `json:"title"`
	Quantity  int           `json:"quantity"`
	UnitPrice float64       `json:"unit_price"`
	LineTotal float64       `json:"line_total"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	OrderRef  string              `json:"order_ref"`
	Status    OrderStatus         `json:"status"`
	Email     string              `json:"email"`
	Total     float64             `json:"total"`
	Items     []OrderItemResponse `json:"items"`
	GiftCards []string            `json:"activated_gift_cards,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
