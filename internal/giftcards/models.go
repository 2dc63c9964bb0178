package giftcards

import (
	"time"

	"github.com/google/uuid"
)

type GiftCardStatus string

const (
	StatusPending GiftCardStatus = "pending"
	StatusActive  GiftCardStatus = "active"
	StatusExpired GiftCardStatus = "expired"
)

type GiftCardType string

const (
	TypePhysical GiftCardType = "physical"
	TypeDigital  GiftCardType = "digital"
)

// expirationTerm is how long an activated card stays redeemable.
const expirationTerm = 2 * 365 * 24 * time.Hour

// GiftCard starts as a pending row when it enters a cart and is activated
// after payment. The code and barcode are generated at activation, never
// before, so an abandoned cart leaves no redeemable number behind.
type GiftCard struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Code           string         `json:"code" gorm:"uniqueIndex;size:32"`
	BarcodeNumber  string         `json:"barcode_number" gorm:"size:16"`
	Type           GiftCardType   `json:"type" gorm:"type:varchar(20);not null;default:'digital'"`
	InitialBalance float64        `json:"initial_balance" gorm:"not null;check:initial_balance > 0"`
	CurrentBalance float64        `json:"current_balance" gorm:"not null;check:current_balance >= 0"`
	Currency       string         `json:"currency" gorm:"size:3;default:'USD'"`
	Status         GiftCardStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`

	PurchaserName  string `json:"purchaser_name" gorm:"size:255"`
	PurchaserEmail string `json:"purchaser_email" gorm:"size:255"`
	RecipientName  string `json:"recipient_name" gorm:"size:255"`
	RecipientEmail string `json:"recipient_email" gorm:"size:255"`
	Message        string `json:"message" gorm:"type:text"`

	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (GiftCard) TableName() string {
	return "gift_cards"
}

// Request/response models

type CreatePendingRequest struct {
	Type           GiftCardType `json:"type" binding:"required,oneof=physical digital"`
	Amount         float64      `json:"amount" binding:"required,min=5,max=500"`
	PurchaserName  string       `json:"purchaser_name" binding:"max=255"`
	PurchaserEmail string       `json:"purchaser_email" binding:"omitempty,email"`
	RecipientName  string       `json:"recipient_name" binding:"max=255"`
	RecipientEmail string       `json:"recipient_email" binding:"omitempty,email"`
	Message        string       `json:"message" binding:"max=1000"`
}

type GiftCardResponse struct {
	ID             string         `json:"id"`
	Code           string         `json:"code,omitempty"`
	BarcodeNumber  string         `json:"barcode_number,omitempty"`
	Type           GiftCardType   `json:"type"`
	InitialBalance float64        `json:"initial_balance"`
	CurrentBalance float64        `json:"current_balance"`
	Currency       string         `json:"currency"`
	Status         GiftCardStatus `json:"status"`
	RecipientName  string         `json:"recipient_name,omitempty"`
	RecipientEmail string         `json:"recipient_email,omitempty"`
	PurchasedAt    *time.Time     `json:"purchased_at,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
}

type BalanceResponse struct {
	Code           string         `json:"code"`
	CurrentBalance float64        `json:"current_balance"`
	Currency       string         `json:"currency"`
	Status         GiftCardStatus `json:"status"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
}
