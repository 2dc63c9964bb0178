package books

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrBookNotFound = errors.New("book not found")

type ListFilter struct {
	Category       string
	Search         string
	InStockOnly    bool
	StaffPicksOnly bool
	Limit          int
	Offset         int
}

type Repository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	GetByISBN(ctx context.Context, isbn string) (*Book, error)
	List(ctx context.Context, filter ListFilter) ([]Book, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Restock adds received copies to the on-hand counter atomically, so it
	// cannot clobber concurrent reservation updates.
	Restock(ctx context.Context, id uuid.UUID, quantity int) error

	ListLowStock(ctx context.Context, threshold int) ([]Book, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, book *Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *repository) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	var book Book
	err := r.db.WithContext(ctx).First(&book, "isbn = ?", isbn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Book, error) {
	var books []Book
	query := applyFilter(r.db.WithContext(ctx), filter).Order("title ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	err := query.Find(&books).Error
	return books, err
}

func (r *repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var count int64
	err := applyFilter(r.db.WithContext(ctx).Model(&Book{}), filter).Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, book *Book) error {
	result := r.db.WithContext(ctx).Save(book)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Book{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *repository) Restock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE books
		SET inventory_count = inventory_count + ?, updated_at = NOW()
		WHERE id = ?`,
		quantity, id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *repository) ListLowStock(ctx context.Context, threshold int) ([]Book, error) {
	var books []Book
	err := r.db.WithContext(ctx).
		Where("inventory_count - reserved_count <= ? AND inventory_count > 0", threshold).
		Order("inventory_count ASC").
		Find(&books).Error
	return books, err
}

func applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Category != "" && filter.Category != "All" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.InStockOnly {
		query = query.Where("inventory_count > 0")
	}
	if filter.StaffPicksOnly {
		query = query.Where("is_staff_pick = ?", true)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR author ILIKE ?", term, term)
	}
	return query
}
