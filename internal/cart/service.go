package cart

import (
	"context"
	"errors"
	"fmt"

	"bookworm/internal/books"
	"bookworm/internal/giftcards"
	"bookworm/internal/inventory"
	"bookworm/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	GetCart(ctx context.Context, holderID string) (*CartResponse, error)

	// AddItem reserves stock before a physical book enters the cart; on
	// *inventory.InsufficientStockError the item is NOT added. Gift card
	// lines create a pending gift card and never touch stock.
	AddItem(ctx context.Context, holderID string, req AddItemRequest) (*CartItemResponse, error)

	// UpdateQuantity re-reserves the line at the new quantity. When stock
	// cannot cover the increase the cart line is left unchanged.
	UpdateQuantity(ctx context.Context, holderID, itemID string, quantity int) (*CartItemResponse, error)

	// RemoveItem releases the held stock. Release failures never block the
	// removal.
	RemoveItem(ctx context.Context, holderID, itemID string) error

	Clear(ctx context.Context, holderID string) error
}

type service struct {
	repo      Repository
	inventory inventory.Service
	books     books.Repository
	giftcards giftcards.Service
	logger    *logger.Logger
}

func NewService(repo Repository, inventoryService inventory.Service, booksRepo books.Repository, giftCardService giftcards.Service) Service {
	return &service{
		repo:      repo,
		inventory: inventoryService,
		books:     booksRepo,
		giftcards: giftCardService,
		logger:    logger.GetDefault(),
	}
}

func (s *service) GetCart(ctx context.Context, holderID string) (*CartResponse, error) {
	items, err := s.repo.GetByHolder(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return s.toCartResponse(holderID, items), nil
}

func (s *service) AddItem(ctx context.Context, holderID string, req AddItemRequest) (*CartItemResponse, error) {
	switch req.ItemType {
	case ItemTypeBook:
		return s.addBookItem(ctx, holderID, req)
	case ItemTypeGiftCard:
		return s.addGiftCardItem(ctx, holderID, req)
	default:
		return nil, fmt.Errorf("unknown item type: %s", req.ItemType)
	}
}

func (s *service) addBookItem(ctx context.Context, holderID string, req AddItemRequest) (*CartItemResponse, error) {
	if req.BookID == "" {
		return nil, fmt.Errorf("book_id is required for book items")
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID: %w", err)
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Merge with an existing line for the same book.
	if existing, err := s.repo.FindBookItem(ctx, holderID, bookID); err == nil {
		return s.changeQuantity(ctx, holderID, existing, existing.Quantity+quantity)
	} else if !errors.Is(err, ErrItemNotFound) {
		return nil, err
	}

	reservation, err := s.inventory.Reserve(ctx, inventory.ReserveRequest{
		BookID:   req.BookID,
		Quantity: quantity,
	}, holderID)
	if err != nil {
		return nil, err
	}

	item := &CartItem{
		ID:        uuid.New(),
		HolderID:  holderID,
		ItemType:  ItemTypeBook,
		BookID:    &bookID,
		Title:     book.Title,
		Quantity:  quantity,
		UnitPrice: book.Price,
	}
	applyReservation(item, reservation)

	if err := s.repo.Create(ctx, item); err != nil {
		// Cart write failed; hand the stock back.
		s.releaseItem(ctx, holderID, item)
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.toItemResponse(item), nil
}

func (s *service) addGiftCardItem(ctx context.Context, holderID string, req AddItemRequest) (*CartItemResponse, error) {
	if req.GiftCard == nil {
		return nil, fmt.Errorf("gift_card details are required for gift card items")
	}

	pending, err := s.giftcards.CreatePending(ctx, *req.GiftCard)
	if err != nil {
		return nil, err
	}

	giftCardID, err := uuid.Parse(pending.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid gift card ID: %w", err)
	}

	item := &CartItem{
		ID:         uuid.New(),
		HolderID:   holderID,
		ItemType:   ItemTypeGiftCard,
		GiftCardID: &giftCardID,
		Title:      "Gift Card",
		Quantity:   1,
		UnitPrice:  pending.InitialBalance,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if discardErr := s.giftcards.DiscardPending(ctx, pending.ID); discardErr != nil {
			s.logger.WithError(discardErr).Warn("Failed to discard orphaned pending gift card", "gift_card_id", pending.ID)
		}
		return nil, fmt.Errorf("failed to add gift card to cart: %w", err)
	}

	return s.toItemResponse(item), nil
}

func (s *service) UpdateQuantity(ctx context.Context, holderID, itemID string, quantity int) (*CartItemResponse, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart item ID: %w", err)
	}

	item, err := s.repo.GetItem(ctx, id, holderID)
	if err != nil {
		return nil, err
	}

	if item.ItemType == ItemTypeGiftCard {
		return nil, fmt.Errorf("gift card quantity cannot be changed")
	}
	if quantity == item.Quantity {
		return s.toItemResponse(item), nil
	}

	return s.changeQuantity(ctx, holderID, item, quantity)
}

// changeQuantity replaces the line's hold with a fresh one at the new total,
// keeping exactly one reservation ticket per cart line. On failure the old
// quantity is re-reserved best effort.
func (s *service) changeQuantity(ctx context.Context, holderID string, item *CartItem, newQuantity int) (*CartItemResponse, error) {
	oldQuantity := item.Quantity
	s.releaseItem(ctx, holderID, item)

	reservation, err := s.inventory.Reserve(ctx, inventory.ReserveRequest{
		BookID:   item.BookID.String(),
		Quantity: newQuantity,
	}, holderID)
	if err != nil {
		s.restoreHold(ctx, holderID, item, oldQuantity)
		return nil, err
	}

	item.Quantity = newQuantity
	applyReservation(item, reservation)

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return s.toItemResponse(item), nil
}

// restoreHold tries to put the previous hold back after a failed quantity
// change. If even that fails the line is dropped rather than left in the cart
// without stock behind it.
func (s *service) restoreHold(ctx context.Context, holderID string, item *CartItem, quantity int) {
	reservation, err := s.inventory.Reserve(ctx, inventory.ReserveRequest{
		BookID:   item.BookID.String(),
		Quantity: quantity,
	}, holderID)
	if err != nil {
		s.logger.Warn("Could not restore cart hold, dropping line",
			"holder_id", holderID, "book_id", item.BookID.String(), "quantity", quantity)
		if delErr := s.repo.Delete(ctx, item.ID, holderID); delErr != nil && !errors.Is(delErr, ErrItemNotFound) {
			s.logger.WithError(delErr).Warn("Failed to drop cart line")
		}
		return
	}

	item.Quantity = quantity
	applyReservation(item, reservation)
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.WithError(err).Warn("Failed to persist restored cart hold")
	}
}

func (s *service) RemoveItem(ctx context.Context, holderID, itemID string) error {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid cart item ID: %w", err)
	}

	item, err := s.repo.GetItem(ctx, id, holderID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, holderID); err != nil {
		return err
	}

	s.cleanupItem(ctx, holderID, item)
	return nil
}

func (s *service) Clear(ctx context.Context, holderID string) error {
	items, err := s.repo.GetByHolder(ctx, holderID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	if err := s.repo.DeleteByHolder(ctx, holderID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	for i := range items {
		s.cleanupItem(ctx, holderID, &items[i])
	}
	return nil
}

// cleanupItem returns whatever the removed line was holding: stock for book
// lines, the pending gift card row for gift card lines.
func (s *service) cleanupItem(ctx context.Context, holderID string, item *CartItem) {
	switch item.ItemType {
	case ItemTypeBook:
		s.releaseItem(ctx, holderID, item)
	case ItemTypeGiftCard:
		if item.GiftCardID != nil {
			if err := s.giftcards.DiscardPending(ctx, item.GiftCardID.String()); err != nil {
				s.logger.WithError(err).Warn("Failed to discard pending gift card", "gift_card_id", item.GiftCardID.String())
			}
		}
	}
}

func (s *service) releaseItem(ctx context.Context, holderID string, item *CartItem) {
	if item.BookID == nil {
		return
	}
	s.inventory.Release(ctx, inventory.ReleaseRequest{
		BookID:        item.BookID.String(),
		Quantity:      item.Quantity,
		ReservationID: item.ReservationID,
	}, holderID)
}

func applyReservation(item *CartItem, reservation *inventory.ReservationResponse) {
	if reservation.Degraded {
		// Local reservations have no backing row to reference later.
		item.ReservationID = reservation.ReservationID
		item.ReservationExpiresAt = nil
		return
	}
	item.ReservationID = reservation.ReservationID
	expiresAt := reservation.ExpiresAt
	item.ReservationExpiresAt = &expiresAt
}

func (s *service) toCartResponse(holderID string, items []CartItem) *CartResponse {
	resp := &CartResponse{
		HolderID: holderID,
		Items:    make([]CartItemResponse, 0, len(items)),
	}
	for i := range items {
		itemResp := s.toItemResponse(&items[i])
		resp.Items = append(resp.Items, *itemResp)
		resp.Subtotal += itemResp.LineTotal
	}
	return resp
}

func (s *service) toItemResponse(item *CartItem) *CartItemResponse {
	resp := &CartItemResponse{
		ID:                   item.ID.String(),
		ItemType:             item.ItemType,
		Title:                item.Title,
		Quantity:             item.Quantity,
		UnitPrice:            item.UnitPrice,
		LineTotal:            item.UnitPrice * float64(item.Quantity),
		ReservationID:        item.ReservationID,
		ReservationExpiresAt: item.ReservationExpiresAt,
	}
	if item.BookID != nil {
		resp.BookID = item.BookID.String()
	}
	if item.GiftCardID != nil {
		resp.GiftCardID = item.GiftCardID.String()
	}
	return resp
}
