package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventFull     = errors.New("event is at capacity")
)

type Repository interface {
	Create(ctx context.Context, event *StoreEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*StoreEvent, error)
	Update(ctx context.Context, event *StoreEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListEventsQuery) ([]StoreEvent, int64, error)
	ListUpcomingPublished(ctx context.Context, limit int) ([]StoreEvent, error)

	// AddRSVP bumps the RSVP counter only while the remaining capacity covers
	// the party size and the event is still published. ErrEventFull otherwise.
	AddRSVP(ctx context.Context, eventID uuid.UUID, attendees int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *StoreEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*StoreEvent, error) {
	var event StoreEvent
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) Update(ctx context.Context, event *StoreEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&StoreEvent{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, query ListEventsQuery) ([]StoreEvent, int64, error) {
	var events []StoreEvent
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&StoreEvent{})

	if query.Search != "" {
		term := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?",
			term, term, term)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("date_time >= ?", from)
		}
	}
	if query.DateTo != "" {
		if to, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			// inclusive of the whole end day
			db = db.Where("date_time < ?", to.Add(24*time.Hour))
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Order("date_time ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

func (r *repository) ListUpcomingPublished(ctx context.Context, limit int) ([]StoreEvent, error) {
	var events []StoreEvent
	err := r.db.WithContext(ctx).
		Where("date_time > ? AND status = ?", time.Now(), EventStatusPublished).
		Order("date_time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *repository) AddRSVP(ctx context.Context, eventID uuid.UUID, attendees int) error {
	result := r.db.WithContext(ctx).
		Model(&StoreEvent{}).
		Where("id = ? AND status = ? AND capacity - rsvp_count >= ?", eventID, EventStatusPublished, attendees).
		Update("rsvp_count", gorm.Expr("rsvp_count + ?", attendees))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either no such published event or not enough spots left.
		if _, err := r.GetByID(ctx, eventID); err != nil {
			return err
		}
		return ErrEventFull
	}
	return nil
}
