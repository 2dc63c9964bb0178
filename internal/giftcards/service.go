package giftcards

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"bookworm/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// CreatePending records a not-yet-redeemable card when it enters a cart.
	// The code is not generated until activation.
	CreatePending(ctx context.Context, req CreatePendingRequest) (*GiftCardResponse, error)

	// Activate turns a pending card into a redeemable one after payment:
	// generates the code and barcode, stamps purchase and expiry dates.
	// Activating an already-active card returns it unchanged.
	Activate(ctx context.Context, id string) (*GiftCardResponse, error)

	// DiscardPending removes a pending card when its cart item is removed.
	// Active cards are never discarded this way.
	DiscardPending(ctx context.Context, id string) error

	GetBalance(ctx context.Context, code string) (*BalanceResponse, error)
	GetCard(ctx context.Context, id string) (*GiftCardResponse, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: logger.GetDefault(),
		now:    time.Now,
	}
}

func (s *service) CreatePending(ctx context.Context, req CreatePendingRequest) (*GiftCardResponse, error) {
	card := &GiftCard{
		ID:             uuid.New(),
		Type:           req.Type,
		InitialBalance: req.Amount,
		CurrentBalance: req.Amount,
		Currency:       "USD",
		Status:         StatusPending,
		PurchaserName:  req.PurchaserName,
		PurchaserEmail: req.PurchaserEmail,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create pending gift card: %w", err)
	}

	return toResponse(card), nil
}

func (s *service) Activate(ctx context.Context, id string) (*GiftCardResponse, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid gift card ID: %w", err)
	}

	card, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.Status == StatusActive {
		return toResponse(card), nil
	}

	now := s.now()
	expiresAt := now.Add(expirationTerm)

	card.Code = generateCode(now)
	card.BarcodeNumber = generateBarcodeNumber(card.Code, now)
	card.Status = StatusActive
	card.PurchasedAt = &now
	card.ExpiresAt = &expiresAt

	if err := s.repo.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to activate gift card: %w", err)
	}

	s.logger.Info("Gift card activated",
		"gift_card_id", card.ID.String(),
		"type", string(card.Type),
		"balance", card.InitialBalance,
	)
	return toResponse(card), nil
}

func (s *service) DiscardPending(ctx context.Context, id string) error {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid gift card ID: %w", err)
	}

	card, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.Status != StatusPending {
		return fmt.Errorf("gift card %s is not pending", id)
	}

	return s.repo.Delete(ctx, cardID)
}

func (s *service) GetBalance(ctx context.Context, code string) (*BalanceResponse, error) {
	card, err := s.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}

	status := card.Status
	if card.ExpiresAt != nil && s.now().After(*card.ExpiresAt) {
		status = StatusExpired
	}

	return &BalanceResponse{
		Code:           card.Code,
		CurrentBalance: card.CurrentBalance,
		Currency:       card.Currency,
		Status:         status,
		ExpiresAt:      card.ExpiresAt,
	}, nil
}

func (s *service) GetCard(ctx context.Context, id string) (*GiftCardResponse, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid gift card ID: %w", err)
	}

	card, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return toResponse(card), nil
}

// generateCode builds a human-readable card code like GC-M3K9X2-A7QF.
func generateCode(now time.Time) string {
	timestamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := randomBase36(4)
	return fmt.Sprintf("GC-%s-%s", timestamp, suffix)
}

// generateBarcodeNumber derives a 16-digit scannable number from the code.
func generateBarcodeNumber(code string, now time.Time) string {
	hash := 0
	for i, char := range code {
		hash += int(char) * (i + 1)
	}

	millis := strconv.FormatInt(now.UnixMilli(), 10)
	timestamp := millis
	if len(millis) > 10 {
		timestamp = millis[len(millis)-10:]
	}

	numeric := fmt.Sprintf("%06d%s", hash, timestamp)
	if len(numeric) > 16 {
		numeric = numeric[:16]
	}
	return numeric
}

const base36Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomBase36(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(base36Chars[rand.Intn(len(base36Chars))])
	}
	return sb.String()
}

func toResponse(card *GiftCard) *GiftCardResponse {
	return &GiftCardResponse{
		ID:             card.ID.String(),
		Code:           card.Code,
		BarcodeNumber:  card.BarcodeNumber,
		Type:           card.Type,
		InitialBalance: card.InitialBalance,
		CurrentBalance: card.CurrentBalance,
		Currency:       card.Currency,
		Status:         card.Status,
		RecipientName:  card.RecipientName,
		RecipientEmail: card.RecipientEmail,
		PurchasedAt:    card.PurchasedAt,
		ExpiresAt:      card.ExpiresAt,
	}
}
