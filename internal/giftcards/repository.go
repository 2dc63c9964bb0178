package giftcards

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGiftCardNotFound = errors.New("gift card not found")

type Repository interface {
	Create(ctx context.Context, card *GiftCard) error
	GetByID(ctx context.Context, id uuid.UUID) (*GiftCard, error)
	GetByCode(ctx context.Context, code string) (*GiftCard, error)
	Update(ctx context.Context, card *GiftCard) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, card *GiftCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*GiftCard, error) {
	var card GiftCard
	err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*GiftCard, error) {
	var card GiftCard
	err := r.db.WithContext(ctx).First(&card, "code = ? OR barcode_number = ?", code, code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGiftCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *repository) Update(ctx context.Context, card *GiftCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&GiftCard{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGiftCardNotFound
	}
	return nil
}
