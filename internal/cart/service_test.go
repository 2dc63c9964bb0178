package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookworm/internal/books"
	"bookworm/internal/giftcards"
	"bookworm/internal/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventory tracks holds per book with the same no-oversell rule as the
// real service.
type fakeInventory struct {
	onHand   map[string]int
	reserved map[string]int
	tickets  map[string]holdTicket
}

type holdTicket struct {
	bookID   string
	quantity int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		onHand:   make(map[string]int),
		reserved: make(map[string]int),
		tickets:  make(map[string]holdTicket),
	}
}

func (f *fakeInventory) Reserve(_ context.Context, req inventory.ReserveRequest, holderID string) (*inventory.ReservationResponse, error) {
	available := f.onHand[req.BookID] - f.reserved[req.BookID]
	if available < req.Quantity {
		return nil, &inventory.InsufficientStockError{
			BookID:    req.BookID,
			Requested: req.Quantity,
			Available: available,
			Reserved:  f.reserved[req.BookID],
		}
	}
	f.reserved[req.BookID] += req.Quantity
	ticketID := uuid.NewString()
	f.tickets[ticketID] = holdTicket{bookID: req.BookID, quantity: req.Quantity}
	return &inventory.ReservationResponse{
		ReservationID: ticketID,
		BookID:        req.BookID,
		Quantity:      req.Quantity,
		HolderID:      holderID,
		ExpiresAt:     time.Now().Add(30 * time.Minute),
		TTL:           1800,
	}, nil
}

func (f *fakeInventory) Release(_ context.Context, req inventory.ReleaseRequest, _ string) {
	ticket, ok := f.tickets[req.ReservationID]
	if !ok {
		return
	}
	delete(f.tickets, req.ReservationID)
	f.reserved[ticket.bookID] -= ticket.quantity
}

func (f *fakeInventory) ConfirmPurchase(_ context.Context, req inventory.ConfirmRequest) {
	ticket, ok := f.tickets[req.ReservationID]
	if !ok {
		return
	}
	delete(f.tickets, req.ReservationID)
	f.onHand[ticket.bookID] -= ticket.quantity
	f.reserved[ticket.bookID] -= ticket.quantity
}

func (f *fakeInventory) CheckAvailability(_ context.Context, bookID string, quantity int) (*inventory.AvailabilityResponse, error) {
	available := f.onHand[bookID] - f.reserved[bookID]
	return &inventory.AvailabilityResponse{
		BookID:    bookID,
		Available: available >= quantity,
		OnHand:    f.onHand[bookID],
		Reserved:  f.reserved[bookID],
	}, nil
}

func (f *fakeInventory) SweepExpired(context.Context) (int, error) { return 0, nil }

type fakeBooksRepo struct {
	books map[uuid.UUID]*books.Book
}

func (f *fakeBooksRepo) Create(_ context.Context, book *books.Book) error {
	f.books[book.ID] = book
	return nil
}

func (f *fakeBooksRepo) GetByID(_ context.Context, id uuid.UUID) (*books.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, books.ErrBookNotFound
	}
	return book, nil
}

func (f *fakeBooksRepo) GetByISBN(context.Context, string) (*books.Book, error) {
	return nil, books.ErrBookNotFound
}
func (f *fakeBooksRepo) List(context.Context, books.ListFilter) ([]books.Book, error) {
	return nil, nil
}
func (f *fakeBooksRepo) Count(context.Context, books.ListFilter) (int64, error) { return 0, nil }
func (f *fakeBooksRepo) Update(context.Context, *books.Book) error              { return nil }
func (f *fakeBooksRepo) Delete(context.Context, uuid.UUID) error                { return nil }
func (f *fakeBooksRepo) Restock(context.Context, uuid.UUID, int) error          { return nil }
func (f *fakeBooksRepo) ListLowStock(context.Context, int) ([]books.Book, error) {
	return nil, nil
}

type fakeCartRepo struct {
	items map[uuid.UUID]*CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[uuid.UUID]*CartItem)}
}

func (f *fakeCartRepo) Create(_ context.Context, item *CartItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeCartRepo) GetByHolder(_ context.Context, holderID string) ([]CartItem, error) {
	var out []CartItem
	for _, item := range f.items {
		if item.HolderID == holderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) GetItem(_ context.Context, itemID uuid.UUID, holderID string) (*CartItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.HolderID != holderID {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (f *fakeCartRepo) FindBookItem(_ context.Context, holderID string, bookID uuid.UUID) (*CartItem, error) {
	for _, item := range f.items {
		if item.HolderID == holderID && item.BookID != nil && *item.BookID == bookID {
			return item, nil
		}
	}
	return nil, ErrItemNotFound
}

func (f *fakeCartRepo) Update(_ context.Context, item *CartItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeCartRepo) Delete(_ context.Context, itemID uuid.UUID, holderID string) error {
	item, ok := f.items[itemID]
	if !ok || item.HolderID != holderID {
		return ErrItemNotFound
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeCartRepo) DeleteByHolder(_ context.Context, holderID string) error {
	for id, item := range f.items {
		if item.HolderID == holderID {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeGiftCards struct {
	pending map[string]bool
}

func newFakeGiftCards() *fakeGiftCards {
	return &fakeGiftCards{pending: make(map[string]bool)}
}

func (f *fakeGiftCards) CreatePending(_ context.Context, req giftcards.CreatePendingRequest) (*giftcards.GiftCardResponse, error) {
	id := uuid.NewString()
	f.pending[id] = true
	return &giftcards.GiftCardResponse{
		ID:             id,
		Type:           req.Type,
		InitialBalance: req.Amount,
		CurrentBalance: req.Amount,
		Status:         giftcards.StatusPending,
	}, nil
}

func (f *fakeGiftCards) Activate(_ context.Context, id string) (*giftcards.GiftCardResponse, error) {
	delete(f.pending, id)
	return &giftcards.GiftCardResponse{ID: id, Status: giftcards.StatusActive}, nil
}

func (f *fakeGiftCards) DiscardPending(_ context.Context, id string) error {
	if !f.pending[id] {
		return errors.New("not pending")
	}
	delete(f.pending, id)
	return nil
}

func (f *fakeGiftCards) GetBalance(context.Context, string) (*giftcards.BalanceResponse, error) {
	return nil, giftcards.ErrGiftCardNotFound
}

func (f *fakeGiftCards) GetCard(context.Context, string) (*giftcards.GiftCardResponse, error) {
	return nil, giftcards.ErrGiftCardNotFound
}

type cartFixture struct {
	svc       Service
	inventory *fakeInventory
	cartRepo  *fakeCartRepo
	giftCards *fakeGiftCards
	bookID    uuid.UUID
}

func newCartFixture(t *testing.T, stock int) *cartFixture {
	t.Helper()

	booksRepo := &fakeBooksRepo{books: make(map[uuid.UUID]*books.Book)}
	book := &books.Book{
		ID:             uuid.New(),
		ISBN:           "9780140449136",
		Title:          "The Odyssey",
		Author:         "Homer",
		Price:          13.0,
		InventoryCount: stock,
	}
	require.NoError(t, booksRepo.Create(context.Background(), book))

	inv := newFakeInventory()
	inv.onHand[book.ID.String()] = stock

	cartRepo := newFakeCartRepo()
	giftCards := newFakeGiftCards()

	return &cartFixture{
		svc:       NewService(cartRepo, inv, booksRepo, giftCards),
		inventory: inv,
		cartRepo:  cartRepo,
		giftCards: giftCards,
		bookID:    book.ID,
	}
}

func TestAddBookItemReservesStock(t *testing.T) {
	fx := newCartFixture(t, 5)
	ctx := context.Background()

	item, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{
		ItemType: ItemTypeBook,
		BookID:   fx.bookID.String(),
		Quantity: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 13.0, item.UnitPrice)
	assert.NotEmpty(t, item.ReservationID)
	assert.NotNil(t, item.ReservationExpiresAt)
	assert.Equal(t, 2, fx.inventory.reserved[fx.bookID.String()])
}

func TestAddBookItemNotAddedWhenOutOfStock(t *testing.T) {
	fx := newCartFixture(t, 1)
	ctx := context.Background()

	_, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{
		ItemType: ItemTypeBook,
		BookID:   fx.bookID.String(),
		Quantity: 3,
	})

	var insufficient *inventory.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	cart, err := fx.svc.GetCart(ctx, "holder-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, fx.inventory.reserved[fx.bookID.String()])
}

func TestAddSameBookMergesLines(t *testing.T) {
	fx := newCartFixture(t, 5)
	ctx := context.Background()

	_, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{ItemType: ItemTypeBook, BookID: fx.bookID.String(), Quantity: 1})
	require.NoError(t, err)

	merged, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{ItemType: ItemTypeBook, BookID: fx.bookID.String(), Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Quantity)

	cart, err := fx.svc.GetCart(ctx, "holder-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, fx.inventory.reserved[fx.bookID.String()])
}

func TestGiftCardBypassesReservation(t *testing.T) {
	fx := newCartFixture(t, 0)
	ctx := context.Background()

	item, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{
		ItemType: ItemTypeGiftCard,
		GiftCard: &giftcards.CreatePendingRequest{
			Type:   giftcards.TypeDigital,
			Amount: 50,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ItemTypeGiftCard, item.ItemType)
	assert.Equal(t, 50.0, item.UnitPrice)
	assert.Empty(t, item.ReservationID)
	assert.True(t, fx.giftCards.pending[item.GiftCardID])
	assert.Equal(t, 0, fx.inventory.reserved[fx.bookID.String()])
}

func TestUpdateQuantityReReserves(t *testing.T) {
	fx := newCartFixture(t, 5)
	ctx := context.Background()

	item, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{ItemType: ItemTypeBook, BookID: fx.bookID.String(), Quantity: 2})
	require.NoError(t, err)
	firstTicket := item.ReservationID

	updated, err := fx.svc.UpdateQuantity(ctx, "holder-1", item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.NotEqual(t, firstTicket, updated.ReservationID)
	assert.Equal(t, 4, fx.inventory.reserved[fx.bookID.String()])

	// Decrease works the same way.
	updated, err = fx.svc.UpdateQuantity(ctx, "holder-1", item.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)
	assert.Equal(t, 1, fx.inventory.reserved[fx.bookID.String()])
}

func TestUpdateQuantityKeepsLineOnInsufficientStock(t *testing.T) {
	fx := newCartFixture(t, 3)
	ctx := context.Background()

	item, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{ItemType: ItemTypeBook, BookID: fx.bookID.String(), Quantity: 2})
	require.NoError(t, err)

	_, err = fx.svc.UpdateQuantity(ctx, "holder-1", item.ID, 10)
	var insufficient *inventory.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	cart, err := fx.svc.GetCart(ctx, "holder-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, fx.inventory.reserved[fx.bookID.String()])
}

func TestRemoveItemReleasesHold(t *testing.T) {
	fx := newCartFixture(t, 5)
	ctx := context.Background()

	item, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{ItemType: ItemTypeBook, BookID: fx.bookID.String(), Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, fx.svc.RemoveItem(ctx, "holder-1", item.ID))
	assert.Equal(t, 0, fx.inventory.reserved[fx.bookID.String()])

	// Removing again reports not found but leaves counters alone.
	err = fx.svc.RemoveItem(ctx, "holder-1", item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, 0, fx.inventory.reserved[fx.bookID.String()])
}

func TestClearReleasesEverything(t *testing.T) {
	fx := newCartFixture(t, 5)
	ctx := context.Background()

	_, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{ItemType: ItemTypeBook, BookID: fx.bookID.String(), Quantity: 3})
	require.NoError(t, err)

	gcItem, err := fx.svc.AddItem(ctx, "holder-1", AddItemRequest{
		ItemType: ItemTypeGiftCard,
		GiftCard: &giftcards.CreatePendingRequest{Type: giftcards.TypeDigital, Amount: 25},
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Clear(ctx, "holder-1"))

	cart, err := fx.svc.GetCart(ctx, "holder-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, fx.inventory.reserved[fx.bookID.String()])
	assert.False(t, fx.giftCards.pending[gcItem.GiftCardID])
}
