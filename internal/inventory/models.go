package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reservation is a time-bounded hold against a book's available stock. It is
// created when a physical book enters a cart and ends in exactly one of three
// ways: released (removed from cart or swept after expiry) or confirmed
// (converted to a permanent inventory decrement at checkout).
type Reservation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BookID    uuid.UUID `json:"book_id" gorm:"type:uuid;index;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	HolderID  string    `json:"holder_id" gorm:"not null;size:128"` // user UUID or anonymous session id
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "inventory_reservations"
}

// IsExpired reports whether the hold is past its expiry at the given instant.
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// localReservationPrefix marks reservations fabricated under the fail-open
// degraded policy. They exist only in the caller's cart and have no backing
// row, so release/confirm treat them as immediate no-op successes.
const localReservationPrefix = "local_"

// IsLocalReservationID reports whether id names a degraded-mode reservation.
func IsLocalReservationID(id string) bool {
	return strings.HasPrefix(id, localReservationPrefix)
}

func newLocalReservationID() string {
	return localReservationPrefix + uuid.New().String()
}

// StockCounts is a snapshot of a book's counters.
type StockCounts struct {
	OnHand   int `json:"on_hand"`
	Reserved int `json:"reserved"`
}

// Available is the derived sellable count; never stored.
func (s StockCounts) Available() int {
	return s.OnHand - s.Reserved
}

// InsufficientStockError is returned by Reserve when the requested quantity
// exceeds what is available. Callers surface it to the shopper and must not
// add the item to the cart.
type InsufficientStockError struct {
	BookID    string `json:"book_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Reserved  int    `json:"reserved"`
}

func (e *InsufficientStockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("book %s is currently reserved by other shoppers", e.BookID)
	}
	return fmt.Sprintf("only %d copies available (%d reserved by other shoppers)", e.Available, e.Reserved)
}

// Request/response models

type ReserveRequest struct {
	BookID   string `json:"book_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type ReleaseRequest struct {
	BookID        string `json:"book_id" binding:"required,uuid"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	ReservationID string `json:"reservation_id" binding:"omitempty"`
}

type ConfirmRequest struct {
	BookID        string `json:"book_id" binding:"required,uuid"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	ReservationID string `json:"reservation_id" binding:"omitempty"`
}

type ReservationResponse struct {
	ReservationID string    `json:"reservation_id"`
	BookID        string    `json:"book_id"`
	Quantity      int       `json:"quantity"`
	HolderID      string    `json:"holder_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	TTL           int       `json:"ttl_seconds"`
	Degraded      bool      `json:"degraded,omitempty"`
}

type AvailabilityResponse struct {
	BookID    string `json:"book_id"`
	Available bool   `json:"available"`
	OnHand    int    `json:"on_hand"`
	Reserved  int    `json:"reserved"`
	Message   string `json:"message,omitempty"`
}
