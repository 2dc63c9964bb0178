package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	Create(ctx context.Context, item *CartItem) error
	GetByHolder(ctx context.Context, holderID string) ([]CartItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID, holderID string) (*CartItem, error)
	FindBookItem(ctx context.Context, holderID string, bookID uuid.UUID) (*CartItem, error)
	Update(ctx context.Context, item *CartItem) error
	Delete(ctx context.Context, itemID uuid.UUID, holderID string) error
	DeleteByHolder(ctx context.Context, holderID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetByHolder(ctx context.Context, holderID string) ([]CartItem, error) {
	var items []CartItem
	err := r.db.WithContext(ctx).
		Where("holder_id = ?", holderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) GetItem(ctx context.Context, itemID uuid.UUID, holderID string) (*CartItem, error) {
	var item CartItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND holder_id = ?", itemID, holderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindBookItem(ctx context.Context, holderID string, bookID uuid.UUID) (*CartItem, error) {
	var item CartItem
	err := r.db.WithContext(ctx).
		First(&item, "holder_id = ? AND book_id = ?", holderID, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) Update(ctx context.Context, item *CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, itemID uuid.UUID, holderID string) error {
	result := r.db.WithContext(ctx).Delete(&CartItem{}, "id = ? AND holder_id = ?", itemID, holderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) DeleteByHolder(ctx context.Context, holderID string) error {
	return r.db.WithContext(ctx).Delete(&CartItem{}, "holder_id = ?", holderID).Error
}
