package cart

import (
	"time"

	"bookworm/internal/giftcards"

	"github.com/google/uuid"
)

type ItemType string

const (
	ItemTypeBook     ItemType = "book"
	ItemTypeGiftCard ItemType = "gift_card"
)

// CartItem is one line in a holder's cart. Physical books carry the inventory
// reservation ticket that backs them; gift cards are synthetic lines that
// reference a pending gift card row and never hold stock.
type CartItem struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	HolderID string    `json:"holder_id" gorm:"not null;size:128;index:idx_cart_holder"`
	ItemType ItemType  `json:"item_type" gorm:"type:varchar(20);not null"`

	BookID     *uuid.UUID `json:"book_id,omitempty" gorm:"type:uuid;index"`
	GiftCardID *uuid.UUID `json:"gift_card_id,omitempty" gorm:"type:uuid"`

	Title     string  `json:"title" gorm:"size:500"`
	Quantity  int     `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice float64 `json:"unit_price" gorm:"not null;check:unit_price >= 0"`

	// Reservation ticket backing this line; empty for gift cards and for
	// degraded-mode local reservations the backend never saw.
	ReservationID        string     `json:"reservation_id,omitempty" gorm:"size:64"`
	ReservationExpiresAt *time.Time `json:"reservation_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Request/response models

type AddItemRequest struct {
	ItemType ItemType `json:"item_type" binding:"required,oneof=book gift_card"`

	// Book lines
	BookID   string `json:"book_id" binding:"omitempty,uuid"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1"`

	// Gift card lines
	GiftCard *giftcards.CreatePendingRequest `json:"gift_card,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartItemResponse struct {
	ID                   string     `json:"id"`
	ItemType             ItemType   `json:"item_type"`
	BookID               string     `json:"book_id,omitempty"`
	GiftCardID           string     `json:"gift_card_id,omitempty"`
	Title                string     `json:"title"`
	Quantity             int        `json:"quantity"`
	UnitPrice            float64    `json:"unit_price"`
	LineTotal            float64    `json:"line_total"`
	ReservationID        string     `json:"reservation_id,omitempty"`
	ReservationExpiresAt *time.Time `json:"reservation_expires_at,omitempty"`
}

type CartResponse struct {
	HolderID string             `json:"holder_id"`
	Items    []CartItemResponse `json:"items"`
	Subtotal float64            `json:"subtotal"`
}
