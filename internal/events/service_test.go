package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookworm/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*StoreEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*StoreEvent)}
}

func (f *fakeEventRepo) Create(_ context.Context, event *StoreEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*StoreEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *StoreEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) List(_ context.Context, query ListEventsQuery) ([]StoreEvent, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StoreEvent
	for _, event := range f.events {
		if query.Status != "" && string(event.Status) != query.Status {
			continue
		}
		out = append(out, *event)
	}
	return out, int64(len(out)), nil
}

func (f *fakeEventRepo) ListUpcomingPublished(_ context.Context, limit int) ([]StoreEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StoreEvent
	for _, event := range f.events {
		if event.Status == EventStatusPublished && event.DateTime.After(time.Now()) && len(out) < limit {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) AddRSVP(_ context.Context, eventID uuid.UUID, attendees int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	if event.Status != EventStatusPublished || event.Capacity-event.RSVPCount < attendees {
		return ErrEventFull
	}
	event.RSVPCount += attendees
	return nil
}

// noopCache always misses so service tests hit the fake repo directly.
type noopCache struct{}

func (noopCache) Get(context.Context, string, interface{}) error { return cache.ErrCacheMiss }
func (noopCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (noopCache) Delete(context.Context, string) error        { return nil }
func (noopCache) DeletePattern(context.Context, string) error { return nil }
func (noopCache) Exists(context.Context, string) bool         { return false }
func (noopCache) GetOrSet(_ context.Context, _ string, _ time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	data, err := fetcher()
	if err != nil {
		return err
	}
	if d, ok := dest.(*[]EventResponse); ok {
		*d = data.([]EventResponse)
	}
	return nil
}
func (noopCache) Ping(context.Context) error { return nil }

func seedEvent(t *testing.T, repo *fakeEventRepo, status EventStatus, capacity, rsvpCount int) *StoreEvent {
	t.Helper()
	event := &StoreEvent{
		ID:        uuid.New(),
		Name:      "An Evening with N.K. Jemisin",
		Location:  "Main floor reading nook",
		DateTime:  time.Now().Add(7 * 24 * time.Hour),
		Capacity:  capacity,
		RSVPCount: rsvpCount,
		Status:    status,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestRSVPIncrementsCount(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	event := seedEvent(t, repo, EventStatusPublished, 30, 0)

	resp, err := svc.RSVP(context.Background(), event.ID.String(), RSVPRequest{Attendees: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.RSVPCount)
	assert.Equal(t, 28, resp.SpotsLeft)
}

func TestRSVPDefaultsToOneAttendee(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	event := seedEvent(t, repo, EventStatusPublished, 10, 0)

	resp, err := svc.RSVP(context.Background(), event.ID.String(), RSVPRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RSVPCount)
}

func TestRSVPRejectsWhenFull(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	event := seedEvent(t, repo, EventStatusPublished, 10, 9)

	_, err := svc.RSVP(context.Background(), event.ID.String(), RSVPRequest{Attendees: 2})
	require.ErrorIs(t, err, ErrEventFull)

	got, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.RSVPCount)
}

func TestRSVPRejectsDraftEvent(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	event := seedEvent(t, repo, EventStatusDraft, 10, 0)

	_, err := svc.RSVP(context.Background(), event.ID.String(), RSVPRequest{Attendees: 1})
	assert.Error(t, err)
}

func TestConcurrentRSVPsNeverExceedCapacity(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	event := seedEvent(t, repo, EventStatusPublished, 5, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RSVP(context.Background(), event.ID.String(), RSVPRequest{Attendees: 1})
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.RSVPCount)
}

func TestGetEventHidesUnpublished(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	draft := seedEvent(t, repo, EventStatusDraft, 10, 0)
	published := seedEvent(t, repo, EventStatusPublished, 10, 0)

	_, err := svc.GetEvent(context.Background(), draft.ID.String())
	assert.ErrorIs(t, err, ErrEventNotFound)

	got, err := svc.GetEvent(context.Background(), published.ID.String())
	require.NoError(t, err)
	assert.Equal(t, published.ID.String(), got.ID)
}

func TestUpdateEventRejectsCapacityBelowRSVPs(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	event := seedEvent(t, repo, EventStatusPublished, 30, 12)

	smaller := 10
	_, err := svc.UpdateEvent(context.Background(), event.ID.String(), UpdateEventRequest{Capacity: &smaller})
	assert.Error(t, err)
}

func TestListUpcomingOnlyPublished(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo, noopCache{})
	seedEvent(t, repo, EventStatusDraft, 10, 0)
	seedEvent(t, repo, EventStatusPublished, 10, 0)
	seedEvent(t, repo, EventStatusCancelled, 10, 0)

	events, err := svc.ListUpcoming(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
