package events

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// StoreEvent is an in-store happening: author reading, signing, book club.
// RSVPCount is only ever moved through the conditional update in the
// repository so a full event can never oversubscribe.
type StoreEvent struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string      `json:"name" gorm:"not null;size:255"`
	Description string      `json:"description" gorm:"type:text"`
	Location    string      `json:"location" gorm:"size:255"`
	DateTime    time.Time   `json:"date_time" gorm:"not null;index"`
	Capacity    int         `json:"capacity" gorm:"not null;check:capacity > 0"`
	RSVPCount   int         `json:"rsvp_count" gorm:"default:0;check:rsvp_count >= 0"`
	Status      EventStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	ImageURL    string      `json:"image_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (StoreEvent) TableName() string {
	return "store_events"
}

// Request/response models

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=3,max=255"`
	Description string    `json:"description" binding:"max=2000"`
	Location    string    `json:"location" binding:"max=255"`
	DateTime    time.Time `json:"date_time" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1,max=10000"`
	ImageURL    string    `json:"image_url" binding:"omitempty,url"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Location    *string    `json:"location" binding:"omitempty,max=255"`
	DateTime    *time.Time `json:"date_time"`
	Capacity    *int       `json:"capacity" binding:"omitempty,min=1,max=10000"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft published cancelled completed"`
	ImageURL    *string    `json:"image_url" binding:"omitempty,url"`
}

type RSVPRequest struct {
	Attendees int `json:"attendees" binding:"omitempty,min=1,max=10"`
}

type ListEventsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type EventResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	DateTime    time.Time   `json:"date_time"`
	Capacity    int         `json:"capacity"`
	RSVPCount   int         `json:"rsvp_count"`
	SpotsLeft   int         `json:"spots_left"`
	Status      EventStatus `json:"status"`
	ImageURL    string      `json:"image_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (e *StoreEvent) ToResponse() EventResponse {
	spotsLeft := e.Capacity - e.RSVPCount
	if spotsLeft < 0 {
		spotsLeft = 0
	}

	return EventResponse{
		ID:          e.ID.String(),
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		DateTime:    e.DateTime,
		Capacity:    e.Capacity,
		RSVPCount:   e.RSVPCount,
		SpotsLeft:   spotsLeft,
		Status:      e.Status,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
	}
}
