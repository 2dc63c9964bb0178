package events

import (
	"context"
	"fmt"

	"bookworm/internal/shared/constants"
	"bookworm/pkg/cache"
	"bookworm/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Public storefront surface: only published events are visible.
	ListUpcoming(ctx context.Context, limit int) ([]EventResponse, error)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)

	// RSVP reserves spots at a published event. Full events reject with
	// ErrEventFull rather than overbooking.
	RSVP(ctx context.Context, id string, req RSVPRequest) (*EventResponse, error)

	// Admin event management
	ListAll(ctx context.Context, query ListEventsQuery) (*PaginatedEvents, error)
	CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	cache  cache.Service
	logger *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:   repo,
		cache:  cacheService,
		logger: logger.GetDefault(),
	}
}

func (s *service) ListUpcoming(ctx context.Context, limit int) ([]EventResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var responses []EventResponse
	key := fmt.Sprintf("%s:upcoming:%d", constants.PrefixStoreEvents, limit)
	err := s.cache.GetOrSet(ctx, key, constants.TTLStoreEvents, func() (interface{}, error) {
		events, err := s.repo.ListUpcomingPublished(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list upcoming events: %w", err)
		}
		return toResponses(events), nil
	}, &responses)
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	event, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != EventStatusPublished {
		return nil, ErrEventNotFound
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) RSVP(ctx context.Context, id string, req RSVPRequest) (*EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	attendees := req.Attendees
	if attendees == 0 {
		attendees = 1
	}

	if err := s.repo.AddRSVP(ctx, eventID, attendees); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("Event RSVP recorded", "event_id", id, "attendees", attendees)

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) ListAll(ctx context.Context, query ListEventsQuery) (*PaginatedEvents, error) {
	events, totalCount, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}
	totalPages := int((totalCount + int64(query.Limit) - 1) / int64(query.Limit))

	return &PaginatedEvents{
		Events:     toResponses(events),
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	event := &StoreEvent{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Capacity:    req.Capacity,
		Status:      EventStatusDraft,
		ImageURL:    req.ImageURL,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("Store event created", "event_id", event.ID.String(), "name", event.Name)
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyEventUpdates(event, req)

	// Shrinking below the current RSVP count would strand confirmed guests.
	if event.Capacity < event.RSVPCount {
		return nil, fmt.Errorf("capacity %d is below current RSVP count %d", event.Capacity, event.RSVPCount)
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidateCache(ctx)
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id string) error {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("Store event deleted", "event_id", id)
	return nil
}

func (s *service) getByID(ctx context.Context, id string) (*StoreEvent, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}
	return s.repo.GetByID(ctx, eventID)
}

func (s *service) invalidateCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.PrefixStoreEvents+":*"); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate events cache")
	}
}

func applyEventUpdates(event *StoreEvent, req UpdateEventRequest) {
	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.DateTime != nil {
		event.DateTime = *req.DateTime
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.Status != nil {
		event.Status = EventStatus(*req.Status)
	}
	if req.ImageURL != nil {
		event.ImageURL = *req.ImageURL
	}
}

func toResponses(events []StoreEvent) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}
	return responses
}
