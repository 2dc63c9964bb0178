package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookworm/internal/shared/config"
	"bookworm/internal/shared/constants"
	"bookworm/pkg/cache"
	"bookworm/pkg/logger"

	"github.com/google/uuid"
)

// Service mediates all contention for physical stock between concurrent
// shoppers. It is the sole writer of reserved_count: the cart, checkout and
// sweeper all go through these four operations.
type Service interface {
	// Reserve holds stock for a shopper. Fails with *InsufficientStockError
	// when available copies do not cover the quantity; the caller must not add
	// the item to the cart in that case.
	Reserve(ctx context.Context, req ReserveRequest, holderID string) (*ReservationResponse, error)

	// Release returns held stock to the pool. Idempotent and infallible from
	// the caller's point of view: cart operations are never blocked by
	// inventory bookkeeping.
	Release(ctx context.Context, req ReleaseRequest, holderID string)

	// ConfirmPurchase converts a hold into a permanent inventory decrement
	// after payment succeeded. Idempotent; never aborts a completed payment.
	ConfirmPurchase(ctx context.Context, req ConfirmRequest)

	// CheckAvailability is the read-only path behind stock badges. The answer
	// is advisory: concurrent reservations may change it before a subsequent
	// Reserve, which re-checks atomically.
	CheckAvailability(ctx context.Context, bookID string, quantity int) (*AvailabilityResponse, error)

	// SweepExpired releases every reservation whose expiry has passed,
	// returning how many were released. Called by the background sweeper.
	SweepExpired(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	cache  cache.Service
	config *config.Config
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, cacheService cache.Service, cfg *config.Config) Service {
	return &service{
		repo:   repo,
		cache:  cacheService,
		config: cfg,
		logger: logger.GetDefault(),
		now:    time.Now,
	}
}

func (s *service) Reserve(ctx context.Context, req ReserveRequest, holderID string) (*ReservationResponse, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	if holderID == "" {
		return nil, fmt.Errorf("missing holder identity")
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID: %w", err)
	}

	ttl := s.config.Inventory.ReservationTTL
	reservation := &Reservation{
		ID:        uuid.New(),
		BookID:    bookID,
		Quantity:  req.Quantity,
		HolderID:  holderID,
		CreatedAt: s.now(),
		ExpiresAt: s.now().Add(ttl),
	}

	err = s.repo.Reserve(ctx, reservation)
	if err == nil {
		s.logger.LogReservationCreated(ctx, reservation.ID.String(), req.BookID, holderID, req.Quantity)
		return s.toResponse(reservation, false), nil
	}

	if errors.Is(err, ErrNotEnoughStock) {
		counts, countErr := s.repo.GetStockCounts(ctx, bookID)
		if countErr != nil {
			// A missing book row is treated as degraded rather than sold out,
			// matching the storefront's behavior for catalog entries not yet
			// synced from the POS.
			if errors.Is(countErr, ErrBookNotFound) {
				return s.degradedReserve(ctx, reservation, countErr)
			}
			counts = &StockCounts{}
		}
		return nil, &InsufficientStockError{
			BookID:    req.BookID,
			Requested: req.Quantity,
			Available: counts.Available(),
			Reserved:  counts.Reserved,
		}
	}

	// Infrastructure failure: apply the degraded-mode policy.
	return s.degradedReserve(ctx, reservation, err)
}

// degradedReserve applies the configured policy when the stock lookup itself
// failed. Fail-open fabricates a local, non-persisted reservation so checkout
// is never blocked by a backend outage; fail-closed surfaces the error.
func (s *service) degradedReserve(ctx context.Context, reservation *Reservation, cause error) (*ReservationResponse, error) {
	if s.config.Inventory.DegradedMode == config.DegradedFailClosed {
		return nil, fmt.Errorf("stock lookup failed: %w", cause)
	}

	s.logger.LogInventoryDegraded(ctx, "reserve", reservation.BookID.String(), cause)
	resp := s.toResponse(reservation, true)
	resp.ReservationID = newLocalReservationID()
	return resp, nil
}

func (s *service) Release(ctx context.Context, req ReleaseRequest, holderID string) {
	// Degraded-mode reservations have no backing row.
	if IsLocalReservationID(req.ReservationID) {
		return
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		s.logger.WithError(err).Warn("release: invalid book ID", "book_id", req.BookID)
		return
	}

	if req.ReservationID != "" {
		reservationID, err := uuid.Parse(req.ReservationID)
		if err == nil {
			reservation, err := s.repo.GetReservation(ctx, reservationID)
			if err != nil {
				if !errors.Is(err, ErrReservationNotFound) {
					s.logger.LogInventoryDegraded(ctx, "release", req.BookID, err)
				}
				// Unknown ticket: already released or never existed.
				return
			}
			// A ticket only entitles its own holder to the release.
			if reservation.HolderID != holderID {
				s.logger.Warn("release: ticket held by someone else",
					"reservation_id", req.ReservationID, "holder_id", holderID)
				return
			}

			released, err := s.repo.ReleaseByID(ctx, reservationID)
			if err != nil {
				s.logger.LogInventoryDegraded(ctx, "release", req.BookID, err)
				return
			}
			if released {
				s.logger.LogReservationReleased(ctx, req.ReservationID, req.BookID, req.Quantity, "explicit")
			}
			return
		}
		// Unparseable ticket falls through to the holder-scoped path.
	}

	releasedQty, err := s.repo.ReleaseByHolder(ctx, bookID, holderID)
	if err != nil {
		s.logger.LogInventoryDegraded(ctx, "release", req.BookID, err)
		return
	}
	if releasedQty > 0 {
		s.logger.LogReservationReleased(ctx, "", req.BookID, releasedQty, "by-holder")
	}
}

func (s *service) ConfirmPurchase(ctx context.Context, req ConfirmRequest) {
	if IsLocalReservationID(req.ReservationID) {
		return
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		s.logger.WithError(err).Warn("confirm: invalid book ID", "book_id", req.BookID)
		return
	}

	var reservationID *uuid.UUID
	if req.ReservationID != "" {
		if id, err := uuid.Parse(req.ReservationID); err == nil {
			reservationID = &id
		}
	}

	confirmed, err := s.repo.Confirm(ctx, reservationID, bookID, req.Quantity)
	if err != nil {
		// Payment already completed; bookkeeping failures stay internal.
		s.logger.LogInventoryDegraded(ctx, "confirm", req.BookID, err)
		return
	}
	if confirmed {
		s.logger.LogPurchaseConfirmed(ctx, req.ReservationID, req.BookID, req.Quantity)
	}
}

func (s *service) CheckAvailability(ctx context.Context, bookIDStr string, quantity int) (*AvailabilityResponse, error) {
	if quantity < 1 {
		quantity = 1
	}

	bookID, err := uuid.Parse(bookIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID: %w", err)
	}

	// Badge reads are cached briefly; Reserve re-checks atomically, so a
	// slightly stale answer here costs nothing.
	var counts StockCounts
	err = s.cache.GetOrSet(ctx, constants.BuildAvailabilityKey(bookIDStr), constants.TTLAvailability, func() (interface{}, error) {
		return s.repo.GetStockCounts(ctx, bookID)
	}, &counts)
	if err != nil {
		if s.config.Inventory.DegradedMode == config.DegradedFailClosed {
			return nil, fmt.Errorf("stock lookup failed: %w", err)
		}
		s.logger.LogInventoryDegraded(ctx, "check_availability", bookIDStr, err)
		return &AvailabilityResponse{
			BookID:    bookIDStr,
			Available: true,
		}, nil
	}

	available := counts.Available()
	resp := &AvailabilityResponse{
		BookID:    bookIDStr,
		Available: available >= quantity,
		OnHand:    counts.OnHand,
		Reserved:  counts.Reserved,
	}
	if !resp.Available {
		if available <= 0 {
			resp.Message = "This book is currently reserved by other shoppers. Check back soon!"
		} else {
			resp.Message = fmt.Sprintf("Only %d available (%d reserved by other shoppers)", available, counts.Reserved)
		}
	}
	return resp, nil
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpired(ctx, s.now(), s.config.Inventory.SweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired reservations: %w", err)
	}

	released := 0
	for _, reservation := range expired {
		ok, err := s.repo.ReleaseByID(ctx, reservation.ID)
		if err != nil {
			s.logger.LogInventoryDegraded(ctx, "sweep", reservation.BookID.String(), err)
			continue
		}
		if ok {
			s.logger.LogReservationReleased(ctx, reservation.ID.String(), reservation.BookID.String(), reservation.Quantity, "expired")
			released++
		}
	}
	return released, nil
}

func (s *service) toResponse(reservation *Reservation, degraded bool) *ReservationResponse {
	ttl := int(reservation.ExpiresAt.Sub(s.now()).Seconds())
	if ttl < 0 {
		ttl = 0
	}
	return &ReservationResponse{
		ReservationID: reservation.ID.String(),
		BookID:        reservation.BookID.String(),
		Quantity:      reservation.Quantity,
		HolderID:      reservation.HolderID,
		ExpiresAt:     reservation.ExpiresAt,
		TTL:           ttl,
		Degraded:      degraded,
	}
}
