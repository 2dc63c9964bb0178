package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"bookworm/internal/cart"
	"bookworm/internal/giftcards"
	"bookworm/internal/inventory"
	"bookworm/internal/notifications"
	"bookworm/internal/shared/config"
	"bookworm/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrPaymentDeclined = errors.New("payment declined")
)

type Service interface {
	// Checkout charges the card, converts every reservation in the cart into
	// a sale, activates gift cards and clears the cart. Once the charge has
	// succeeded nothing downstream may abort the order.
	Checkout(ctx context.Context, holderID string, userID *uuid.UUID, req CheckoutRequest) (*OrderResponse, error)

	GetOrder(ctx context.Context, holderID, orderID string) (*OrderResponse, error)

	// GetOrderByRef looks an order up by the reference staff read over the
	// phone, scoped to the requesting holder like GetOrder.
	GetOrderByRef(ctx context.Context, holderID, orderRef string) (*OrderResponse, error)

	// ListOrders returns the shopper's order history. Authenticated shoppers
	// are listed by account so orders survive session cookie churn.
	ListOrders(ctx context.Context, holderID string, userID *uuid.UUID, limit int) ([]OrderResponse, error)
}

type service struct {
	repo      Repository
	cart      cart.Service
	inventory inventory.Service
	giftcards giftcards.Service
	processor PaymentProcessor
	publisher *notifications.Publisher
	config    *config.Config
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	cartService cart.Service,
	inventoryService inventory.Service,
	giftCardService giftcards.Service,
	processor PaymentProcessor,
	publisher *notifications.Publisher,
	cfg *config.Config,
) Service {
	return &service{
		repo:      repo,
		cart:      cartService,
		inventory: inventoryService,
		giftcards: giftCardService,
		processor: processor,
		publisher: publisher,
		config:    cfg,
		logger:    logger.GetDefault(),
		now:       time.Now,
	}
}

func (s *service) Checkout(ctx context.Context, holderID string, userID *uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	cartResp, err := s.cart.GetCart(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cartResp.Items) == 0 {
		return nil, ErrEmptyCart
	}

	charge, err := s.processor.Charge(ctx, cartResp.Subtotal, req.Card)
	if err != nil {
		return nil, fmt.Errorf("payment processing failed: %w", err)
	}
	if !charge.Approved {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, charge.Reason)
	}

	order := s.buildOrder(holderID, userID, req, cartResp, charge)
	if err := s.repo.Create(ctx, order); err != nil {
		// Payment went through but the order row did not. Surface the error
		// with the reference so support can reconcile; stock stays held.
		s.logger.ErrorWithContext(ctx, "Order persistence failed after payment", err, map[string]interface{}{
			"order_ref":     order.OrderRef,
			"processor_ref": charge.ProcessorRef,
		})
		return nil, fmt.Errorf("failed to persist order %s: %w", order.OrderRef, err)
	}

	// Past this point every step is best effort: the shopper has paid.
	activatedCodes := s.fulfill(ctx, holderID, cartResp)

	if err := s.cart.Clear(ctx, holderID); err != nil {
		s.logger.WithError(err).Warn("Failed to clear cart after checkout", "holder_id", holderID)
	}

	s.publisher.OrderConfirmed(ctx, order.Email, order.Name, order.OrderRef, order.Total, len(order.Items))
	s.logger.LogOrderPlaced(ctx, order.ID.String(), order.OrderRef, holderID, order.Total)

	resp := toResponse(order)
	resp.GiftCards = activatedCodes
	return resp, nil
}

// fulfill converts reservations into permanent decrements and activates gift
// cards. Failures are logged, never propagated: payment is already captured.
func (s *service) fulfill(ctx context.Context, holderID string, cartResp *cart.CartResponse) []string {
	var activatedCodes []string

	for _, item := range cartResp.Items {
		switch item.ItemType {
		case cart.ItemTypeBook:
			s.inventory.ConfirmPurchase(ctx, inventory.ConfirmRequest{
				BookID:        item.BookID,
				Quantity:      item.Quantity,
				ReservationID: item.ReservationID,
			})
			s.checkLowStock(ctx, item.BookID, item.Title)

		case cart.ItemTypeGiftCard:
			card, err := s.giftcards.Activate(ctx, item.GiftCardID)
			if err != nil {
				s.logger.WithError(err).Error("Gift card activation failed after payment",
					"gift_card_id", item.GiftCardID, "holder_id", holderID)
				continue
			}
			activatedCodes = append(activatedCodes, card.Code)
			if card.RecipientEmail != "" {
				s.publisher.GiftCardDelivery(ctx, card.RecipientEmail, card.RecipientName, card.Code, card.CurrentBalance, "")
			}
		}
	}
	return activatedCodes
}

func (s *service) checkLowStock(ctx context.Context, bookID, title string) {
	availability, err := s.inventory.CheckAvailability(ctx, bookID, 1)
	if err != nil {
		return
	}
	available := availability.OnHand - availability.Reserved
	if available <= s.config.Inventory.LowStockAlert {
		s.publisher.LowStockAlert(ctx, s.config.Email.FromEmail, bookID, title, available)
	}
}

func (s *service) GetOrder(ctx context.Context, holderID, orderID string) (*OrderResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order ID: %w", err)
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.HolderID != holderID {
		// Don't leak other shoppers' orders.
		return nil, ErrOrderNotFound
	}
	return toResponse(order), nil
}

func (s *service) GetOrderByRef(ctx context.Context, holderID, orderRef string) (*OrderResponse, error) {
	order, err := s.repo.GetByRef(ctx, strings.ToUpper(strings.TrimSpace(orderRef)))
	if err != nil {
		return nil, err
	}
	if order.HolderID != holderID {
		return nil, ErrOrderNotFound
	}
	return toResponse(order), nil
}

func (s *service) ListOrders(ctx context.Context, holderID string, userID *uuid.UUID, limit int) ([]OrderResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var orders []Order
	var err error
	if userID != nil {
		orders, err = s.repo.ListByUser(ctx, *userID, limit)
	} else {
		orders, err = s.repo.ListByHolder(ctx, holderID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *toResponse(&orders[i]))
	}
	return responses, nil
}

func (s *service) buildOrder(holderID string, userID *uuid.UUID, req CheckoutRequest, cartResp *cart.CartResponse, charge *ChargeResult) *Order {
	orderID := uuid.New()
	order := &Order{
		ID:       orderID,
		OrderRef: s.generateOrderRef(),
		HolderID: holderID,
		UserID:   userID,
		Email:    req.Email,
		Name:     req.Name,
		Status:   OrderStatusPaid,
		Total:    cartResp.Subtotal,
		Payment: &Payment{
			ID:           uuid.New(),
			OrderID:      orderID,
			Amount:       cartResp.Subtotal,
			Method:       "card",
			Status:       PaymentStatusApproved,
			ProcessorRef: charge.ProcessorRef,
		},
	}

	for _, item := range cartResp.Items {
		orderItem := OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ItemType:  item.ItemType,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
		if item.BookID != "" {
			if bookID, err := uuid.Parse(item.BookID); err == nil {
				orderItem.BookID = &bookID
			}
		}
		if item.GiftCardID != "" {
			if giftCardID, err := uuid.Parse(item.GiftCardID); err == nil {
				orderItem.GiftCardID = &giftCardID
			}
		}
		order.Items = append(order.Items, orderItem)
	}
	return order
}

const orderRefChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderRef builds a reference like BW-20260828-K7QX2M. The alphabet
// drops lookalike characters since staff read these over the phone.
func (s *service) generateOrderRef() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(orderRefChars[rand.Intn(len(orderRefChars))])
	}
	return fmt.Sprintf("BW-%s-%s", s.now().Format("20060102"), sb.String())
}

func toResponse(order *Order) *OrderResponse {
	resp := &OrderResponse{
		ID:        order.ID.String(),
		OrderRef:  order.OrderRef,
		Status:    order.Status,
		Email:     order.Email,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.Items {
		itemResp := OrderItemResponse{
			ItemType:  item.ItemType,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
		if item.BookID != nil {
			itemResp.BookID = item.BookID.String()
		}
		resp.Items = append(resp.Items, itemResp)
	}
	return resp
}
