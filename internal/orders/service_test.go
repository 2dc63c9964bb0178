package orders

import (
	"context"
	"testing"

	"bookworm/internal/cart"
	"bookworm/internal/giftcards"
	"bookworm/internal/inventory"
	"bookworm/internal/notifications"
	"bookworm/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) GetByRef(_ context.Context, ref string) (*Order, error) {
	for _, order := range f.orders {
		if order.OrderRef == ref {
			return order, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeOrderRepo) ListByHolder(_ context.Context, holderID string, limit int) ([]Order, error) {
	var out []Order
	for _, order := range f.orders {
		if order.HolderID == holderID && len(out) < limit {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]Order, error) {
	var out []Order
	for _, order := range f.orders {
		if order.UserID != nil && *order.UserID == userID && len(out) < limit {
			out = append(out, *order)
		}
	}
	return out, nil
}

// fakeCartService serves a preset cart and records Clear calls.
type fakeCartService struct {
	cart    *cart.CartResponse
	cleared bool
}

func (f *fakeCartService) GetCart(_ context.Context, holderID string) (*cart.CartResponse, error) {
	return f.cart, nil
}

func (f *fakeCartService) AddItem(context.Context, string, cart.AddItemRequest) (*cart.CartItemResponse, error) {
	return nil, nil
}

func (f *fakeCartService) UpdateQuantity(context.Context, string, string, int) (*cart.CartItemResponse, error) {
	return nil, nil
}

func (f *fakeCartService) RemoveItem(context.Context, string, string) error { return nil }

func (f *fakeCartService) Clear(context.Context, string) error {
	f.cleared = true
	f.cart = &cart.CartResponse{Items: nil}
	return nil
}

// fakeConfirmInventory records which reservations were confirmed.
type fakeConfirmInventory struct {
	confirmed []inventory.ConfirmRequest
}

func (f *fakeConfirmInventory) Reserve(context.Context, inventory.ReserveRequest, string) (*inventory.ReservationResponse, error) {
	return nil, nil
}
func (f *fakeConfirmInventory) Release(context.Context, inventory.ReleaseRequest, string) {}
func (f *fakeConfirmInventory) ConfirmPurchase(_ context.Context, req inventory.ConfirmRequest) {
	f.confirmed = append(f.confirmed, req)
}
func (f *fakeConfirmInventory) CheckAvailability(_ context.Context, bookID string, _ int) (*inventory.AvailabilityResponse, error) {
	return &inventory.AvailabilityResponse{BookID: bookID, Available: true, OnHand: 10}, nil
}
func (f *fakeConfirmInventory) SweepExpired(context.Context) (int, error) { return 0, nil }

type fakeActivator struct {
	activated []string
}

func (f *fakeActivator) CreatePending(context.Context, giftcards.CreatePendingRequest) (*giftcards.GiftCardResponse, error) {
	return nil, nil
}

func (f *fakeActivator) Activate(_ context.Context, id string) (*giftcards.GiftCardResponse, error) {
	f.activated = append(f.activated, id)
	return &giftcards.GiftCardResponse{
		ID:             id,
		Code:           "GC-TEST-CODE",
		CurrentBalance: 50,
		Status:         giftcards.StatusActive,
		RecipientEmail: "recipient@example.com",
	}, nil
}

func (f *fakeActivator) DiscardPending(context.Context, string) error { return nil }
func (f *fakeActivator) GetBalance(context.Context, string) (*giftcards.BalanceResponse, error) {
	return nil, giftcards.ErrGiftCardNotFound
}
func (f *fakeActivator) GetCard(context.Context, string) (*giftcards.GiftCardResponse, error) {
	return nil, giftcards.ErrGiftCardNotFound
}

type checkoutFixture struct {
	svc       Service
	repo      *fakeOrderRepo
	cart      *fakeCartService
	inventory *fakeConfirmInventory
	giftcards *fakeActivator
}

func newCheckoutFixture(items []cart.CartItemResponse) *checkoutFixture {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.LineTotal
	}

	repo := newFakeOrderRepo()
	cartSvc := &fakeCartService{cart: &cart.CartResponse{HolderID: "holder-1", Items: items, Subtotal: subtotal}}
	inv := &fakeConfirmInventory{}
	activator := &fakeActivator{}

	cfg := &config.Config{
		Inventory: config.InventoryConfig{LowStockAlert: 3},
		Email:     config.EmailConfig{FromEmail: "store@example.com"},
	}

	svc := NewService(repo, cartSvc, inv, activator, NewMockProcessor(),
		notifications.NewPublisher(notifications.NewNoopProducer()), cfg)

	return &checkoutFixture{svc: svc, repo: repo, cart: cartSvc, inventory: inv, giftcards: activator}
}

func bookLine(quantity int, unitPrice float64) cart.CartItemResponse {
	return cart.CartItemResponse{
		ID:            uuid.NewString(),
		ItemType:      cart.ItemTypeBook,
		BookID:        uuid.NewString(),
		Title:         "The Left Hand of Darkness",
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		LineTotal:     unitPrice * float64(quantity),
		ReservationID: uuid.NewString(),
	}
}

func giftCardLine(amount float64) cart.CartItemResponse {
	return cart.CartItemResponse{
		ID:         uuid.NewString(),
		ItemType:   cart.ItemTypeGiftCard,
		GiftCardID: uuid.NewString(),
		Title:      "Gift Card",
		Quantity:   1,
		UnitPrice:  amount,
		LineTotal:  amount,
	}
}

func approvedCard() CardDetails {
	return CardDetails{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123"}
}

func TestCheckoutConfirmsReservationsAndClearsCart(t *testing.T) {
	book := bookLine(2, 15.0)
	gift := giftCardLine(50.0)
	fx := newCheckoutFixture([]cart.CartItemResponse{book, gift})

	order, err := fx.svc.Checkout(context.Background(), "holder-1", nil, CheckoutRequest{
		Email: "shopper@example.com",
		Name:  "Pat",
		Card:  approvedCard(),
	})
	require.NoError(t, err)

	assert.Regexp(t, `^BW-\d{8}-[A-Z2-9]{6}$`, order.OrderRef)
	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Equal(t, 80.0, order.Total)
	assert.Len(t, order.Items, 2)

	require.Len(t, fx.inventory.confirmed, 1)
	assert.Equal(t, book.BookID, fx.inventory.confirmed[0].BookID)
	assert.Equal(t, book.ReservationID, fx.inventory.confirmed[0].ReservationID)
	assert.Equal(t, 2, fx.inventory.confirmed[0].Quantity)

	require.Len(t, fx.giftcards.activated, 1)
	assert.Equal(t, gift.GiftCardID, fx.giftcards.activated[0])
	assert.Equal(t, []string{"GC-TEST-CODE"}, order.GiftCards)

	assert.True(t, fx.cart.cleared)
	assert.Len(t, fx.repo.orders, 1)
}

func TestCheckoutDeclinedLeavesCartIntact(t *testing.T) {
	fx := newCheckoutFixture([]cart.CartItemResponse{bookLine(1, 20.0)})

	card := approvedCard()
	card.Number = "4000000000000002"

	_, err := fx.svc.Checkout(context.Background(), "holder-1", nil, CheckoutRequest{
		Email: "shopper@example.com",
		Card:  card,
	})
	require.ErrorIs(t, err, ErrPaymentDeclined)

	assert.Empty(t, fx.inventory.confirmed)
	assert.Empty(t, fx.giftcards.activated)
	assert.False(t, fx.cart.cleared)
	assert.Empty(t, fx.repo.orders)
}

func TestCheckoutEmptyCart(t *testing.T) {
	fx := newCheckoutFixture(nil)

	_, err := fx.svc.Checkout(context.Background(), "holder-1", nil, CheckoutRequest{
		Email: "shopper@example.com",
		Card:  approvedCard(),
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestGetOrderScopedToHolder(t *testing.T) {
	fx := newCheckoutFixture([]cart.CartItemResponse{bookLine(1, 10.0)})
	ctx := context.Background()

	order, err := fx.svc.Checkout(ctx, "holder-1", nil, CheckoutRequest{
		Email: "shopper@example.com",
		Card:  approvedCard(),
	})
	require.NoError(t, err)

	got, err := fx.svc.GetOrder(ctx, "holder-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderRef, got.OrderRef)

	_, err = fx.svc.GetOrder(ctx, "someone-else", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderByRefScopedToHolder(t *testing.T) {
	fx := newCheckoutFixture([]cart.CartItemResponse{bookLine(1, 10.0)})
	ctx := context.Background()

	order, err := fx.svc.Checkout(ctx, "holder-1", nil, CheckoutRequest{
		Email: "shopper@example.com",
		Card:  approvedCard(),
	})
	require.NoError(t, err)

	// References are read back over the phone; whitespace and case slip in.
	got, err := fx.svc.GetOrderByRef(ctx, "holder-1", "  "+order.OrderRef+" ")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = fx.svc.GetOrderByRef(ctx, "someone-else", order.OrderRef)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = fx.svc.GetOrderByRef(ctx, "holder-1", "BW-20260101-XXXXXX")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersScopesByAccountWhenAuthenticated(t *testing.T) {
	fx := newCheckoutFixture([]cart.CartItemResponse{bookLine(1, 10.0)})
	ctx := context.Background()
	userID := uuid.New()

	_, err := fx.svc.Checkout(ctx, userID.String(), &userID, CheckoutRequest{
		Email: "shopper@example.com",
		Card:  approvedCard(),
	})
	require.NoError(t, err)

	// The account listing finds the order even when the session identity the
	// shopper carries today differs from the one they checked out with.
	byUser, err := fx.svc.ListOrders(ctx, "session_new-device", &userID, 20)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	anonymous, err := fx.svc.ListOrders(ctx, "session_new-device", nil, 20)
	require.NoError(t, err)
	assert.Empty(t, anonymous)
}
