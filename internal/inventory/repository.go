package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotEnoughStock is returned when the conditional increment matched no
	// row: either the book does not exist or available < requested.
	ErrNotEnoughStock = errors.New("not enough stock")

	// ErrBookNotFound is returned when the book row is missing entirely.
	ErrBookNotFound = errors.New("book not found")

	// ErrReservationNotFound is returned by GetReservation for unknown or
	// already-consumed tickets.
	ErrReservationNotFound = errors.New("reservation not found")
)

type Repository interface {
	// Counter reads
	GetStockCounts(ctx context.Context, bookID uuid.UUID) (*StockCounts, error)

	// Reserve performs the atomic check-and-increment: the reserved counter is
	// bumped only if available stock covers the quantity, and the reservation
	// row is written in the same transaction. Returns ErrNotEnoughStock when
	// the condition fails.
	Reserve(ctx context.Context, reservation *Reservation) error

	// ReleaseByID deletes the reservation and returns the held quantity to the
	// pool. Reports whether a row was actually released, so callers can treat
	// repeat releases as no-ops.
	ReleaseByID(ctx context.Context, reservationID uuid.UUID) (bool, error)

	// ReleaseByHolder is the best-effort path when no reservation ticket is
	// known: every reservation the holder has against the book is released.
	ReleaseByHolder(ctx context.Context, bookID uuid.UUID, holderID string) (int, error)

	// Confirm converts a reservation into a sale: the reservation row is
	// deleted and both counters are decremented, floored at zero. When
	// reservationID is nil the decrement is unconditional (legacy carts that
	// never obtained a ticket).
	Confirm(ctx context.Context, reservationID *uuid.UUID, bookID uuid.UUID, quantity int) (bool, error)

	// Expiry sweep support
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]Reservation, error)

	GetReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetStockCounts(ctx context.Context, bookID uuid.UUID) (*StockCounts, error) {
	var counts StockCounts
	err := r.db.WithContext(ctx).
		Table("books").
		Select("inventory_count AS on_hand, reserved_count AS reserved").
		Where("id = ?", bookID).
		Take(&counts).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &counts, nil
}

func (r *repository) Reserve(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Single conditional increment: the availability check and the counter
		// bump are one statement, so concurrent reserves against the same book
		// serialize on the row lock and cannot oversell.
		result := tx.Exec(`
			UPDATE books
			SET reserved_count = reserved_count + ?, updated_at = NOW()
			WHERE id = ? AND inventory_count - reserved_count >= ?`,
			reservation.Quantity, reservation.BookID, reservation.Quantity,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotEnoughStock
		}

		return tx.Create(reservation).Error
	})
}

func (r *repository) ReleaseByID(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation Reservation
		err := tx.Where("id = ?", reservationID).First(&reservation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Already released or never existed; idempotent success.
				return nil
			}
			return err
		}

		result := tx.Delete(&Reservation{}, "id = ?", reservationID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race with another releaser; the winner decremented.
			return nil
		}

		released = true
		return decrementReserved(tx, reservation.BookID, reservation.Quantity)
	})
	return released, err
}

func (r *repository) ReleaseByHolder(ctx context.Context, bookID uuid.UUID, holderID string) (int, error) {
	releasedQty := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservations []Reservation
		if err := tx.Where("book_id = ? AND holder_id = ?", bookID, holderID).Find(&reservations).Error; err != nil {
			return err
		}
		if len(reservations) == 0 {
			return nil
		}

		for _, reservation := range reservations {
			result := tx.Delete(&Reservation{}, "id = ?", reservation.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}
			if err := decrementReserved(tx, bookID, reservation.Quantity); err != nil {
				return err
			}
			releasedQty += reservation.Quantity
		}
		return nil
	})
	return releasedQty, err
}

func (r *repository) Confirm(ctx context.Context, reservationID *uuid.UUID, bookID uuid.UUID, quantity int) (bool, error) {
	confirmed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reservationID != nil {
			result := tx.Delete(&Reservation{}, "id = ?", *reservationID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Ticket already consumed: a repeat confirm must not decrement
				// the counters a second time.
				return nil
			}
		}

		confirmed = true
		return tx.Exec(`
			UPDATE books
			SET inventory_count = GREATEST(inventory_count - ?, 0),
			    reserved_count = GREATEST(reserved_count - ?, 0),
			    updated_at = NOW()
			WHERE id = ?`,
			quantity, quantity, bookID,
		).Error
	})
	return confirmed, err
}

func (r *repository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) GetReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).First(&reservation, "id = ?", reservationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

// decrementReserved returns held copies to the pool, floored at zero so a
// stray double-release can never drive the counter negative.
func decrementReserved(tx *gorm.DB, bookID uuid.UUID, quantity int) error {
	return tx.Exec(`
		UPDATE books
		SET reserved_count = GREATEST(reserved_count - ?, 0), updated_at = NOW()
		WHERE id = ?`,
		quantity, bookID,
	).Error
}
