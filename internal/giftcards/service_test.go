package giftcards

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCardRepo struct {
	cards map[uuid.UUID]*GiftCard
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[uuid.UUID]*GiftCard)}
}

func (f *fakeCardRepo) Create(_ context.Context, card *GiftCard) error {
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardRepo) GetByID(_ context.Context, id uuid.UUID) (*GiftCard, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

func (f *fakeCardRepo) GetByCode(_ context.Context, code string) (*GiftCard, error) {
	for _, card := range f.cards {
		if card.Code == code || card.BarcodeNumber == code {
			return card, nil
		}
	}
	return nil, ErrGiftCardNotFound
}

func (f *fakeCardRepo) Update(_ context.Context, card *GiftCard) error {
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.cards[id]; !ok {
		return ErrGiftCardNotFound
	}
	delete(f.cards, id)
	return nil
}

func TestPendingCardHasNoCode(t *testing.T) {
	svc := NewService(newFakeCardRepo())

	card, err := svc.CreatePending(context.Background(), CreatePendingRequest{
		Type:           TypeDigital,
		Amount:         50,
		RecipientName:  "Sam",
		RecipientEmail: "sam@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, card.Status)
	assert.Empty(t, card.Code)
	assert.Empty(t, card.BarcodeNumber)
	assert.Equal(t, 50.0, card.CurrentBalance)
}

func TestActivateGeneratesCodeAndExpiry(t *testing.T) {
	svc := NewService(newFakeCardRepo())
	ctx := context.Background()

	pending, err := svc.CreatePending(ctx, CreatePendingRequest{Type: TypePhysical, Amount: 25})
	require.NoError(t, err)

	active, err := svc.Activate(ctx, pending.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, active.Status)
	assert.Regexp(t, `^GC-[0-9A-Z]+-[0-9A-Z]{4}$`, active.Code)
	assert.Len(t, active.BarcodeNumber, 16)
	require.NotNil(t, active.ExpiresAt)
	require.NotNil(t, active.PurchasedAt)
	assert.WithinDuration(t, active.PurchasedAt.Add(2*365*24*time.Hour), *active.ExpiresAt, time.Second)
}

func TestActivateIsIdempotent(t *testing.T) {
	svc := NewService(newFakeCardRepo())
	ctx := context.Background()

	pending, err := svc.CreatePending(ctx, CreatePendingRequest{Type: TypeDigital, Amount: 100})
	require.NoError(t, err)

	first, err := svc.Activate(ctx, pending.ID)
	require.NoError(t, err)

	second, err := svc.Activate(ctx, pending.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.BarcodeNumber, second.BarcodeNumber)
}

func TestBalanceLookupByCode(t *testing.T) {
	svc := NewService(newFakeCardRepo())
	ctx := context.Background()

	pending, err := svc.CreatePending(ctx, CreatePendingRequest{Type: TypeDigital, Amount: 75})
	require.NoError(t, err)

	active, err := svc.Activate(ctx, pending.ID)
	require.NoError(t, err)

	balance, err := svc.GetBalance(ctx, active.Code)
	require.NoError(t, err)
	assert.Equal(t, 75.0, balance.CurrentBalance)
	assert.Equal(t, StatusActive, balance.Status)

	// Barcode number resolves to the same card.
	byBarcode, err := svc.GetBalance(ctx, active.BarcodeNumber)
	require.NoError(t, err)
	assert.Equal(t, balance.Code, byBarcode.Code)
}

func TestDiscardPendingOnlyRemovesPendingCards(t *testing.T) {
	repo := newFakeCardRepo()
	svc := NewService(repo)
	ctx := context.Background()

	pending, err := svc.CreatePending(ctx, CreatePendingRequest{Type: TypeDigital, Amount: 30})
	require.NoError(t, err)

	active, err := svc.Activate(ctx, pending.ID)
	require.NoError(t, err)

	err = svc.DiscardPending(ctx, active.ID)
	assert.Error(t, err)

	another, err := svc.CreatePending(ctx, CreatePendingRequest{Type: TypeDigital, Amount: 30})
	require.NoError(t, err)
	require.NoError(t, svc.DiscardPending(ctx, another.ID))

	_, err = svc.GetCard(ctx, another.ID)
	assert.ErrorIs(t, err, ErrGiftCardNotFound)
}
