package books

import (
	"context"
	"testing"
	"time"

	"bookworm/internal/shared/config"
	"bookworm/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookRepo struct {
	books map[uuid.UUID]*Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uuid.UUID]*Book)}
}

func (f *fakeBookRepo) Create(_ context.Context, book *Book) error {
	f.books[book.ID] = book
	return nil
}

func (f *fakeBookRepo) GetByID(_ context.Context, id uuid.UUID) (*Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (f *fakeBookRepo) GetByISBN(_ context.Context, isbn string) (*Book, error) {
	for _, book := range f.books {
		if book.ISBN == isbn {
			return book, nil
		}
	}
	return nil, ErrBookNotFound
}

func (f *fakeBookRepo) List(_ context.Context, filter ListFilter) ([]Book, error) {
	var out []Book
	for _, book := range f.books {
		if filter.StaffPicksOnly && !book.IsStaffPick {
			continue
		}
		if filter.InStockOnly && book.InventoryCount <= 0 {
			continue
		}
		out = append(out, *book)
	}
	return out, nil
}

func (f *fakeBookRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	books, _ := f.List(ctx, filter)
	return int64(len(books)), nil
}

func (f *fakeBookRepo) Update(_ context.Context, book *Book) error {
	if _, ok := f.books[book.ID]; !ok {
		return ErrBookNotFound
	}
	f.books[book.ID] = book
	return nil
}

func (f *fakeBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookRepo) Restock(_ context.Context, id uuid.UUID, quantity int) error {
	book, ok := f.books[id]
	if !ok {
		return ErrBookNotFound
	}
	book.InventoryCount += quantity
	return nil
}

func (f *fakeBookRepo) ListLowStock(_ context.Context, threshold int) ([]Book, error) {
	var out []Book
	for _, book := range f.books {
		if book.InventoryCount > 0 && book.InventoryCount-book.ReservedCount <= threshold {
			out = append(out, *book)
		}
	}
	return out, nil
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
	switch d := dest.(type) {
	case *ListBooksResponse:
		*d = *data.(*ListBooksResponse)
	case *BookResponse:
		*d = *data.(*BookResponse)
	}
	return nil
}
func (noopCache) Ping(context.Context) error { return nil }

func newBookService(repo Repository) Service {
	cfg := &config.Config{
		Inventory: config.InventoryConfig{LowStockAlert: 3},
	}
	return NewService(repo, noopCache{}, cfg)
}

func TestCreateBookRejectsDuplicateISBN(t *testing.T) {
	repo := newFakeBookRepo()
	svc := newBookService(repo)
	ctx := context.Background()

	req := CreateBookRequest{ISBN: "9780143127741", Title: "H is for Hawk", Author: "Helen Macdonald", Price: 17.0}

	_, err := svc.CreateBook(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateBook(ctx, req)
	assert.Error(t, err)
}

func TestGetBookSplitsTitleAndDerivesStatus(t *testing.T) {
	repo := newFakeBookRepo()
	svc := newBookService(repo)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookRequest{
		ISBN:           "9781571313560",
		Title:          "Braiding Sweetgrass: Indigenous Wisdom, Scientific Knowledge",
		Author:         "Robin Wall Kimmerer",
		Price:          20.0,
		InventoryCount: 2,
	})
	require.NoError(t, err)

	book, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Braiding Sweetgrass", book.Title)
	assert.Equal(t, "Indigenous Wisdom, Scientific Knowledge", book.Subtitle)
	assert.Equal(t, StatusLowStock, book.Status)
}

func TestRestockMovesBookBackInStock(t *testing.T) {
	repo := newFakeBookRepo()
	svc := newBookService(repo)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookRequest{
		ISBN:   "9780062316110",
		Title:  "Sapiens",
		Author: "Yuval Noah Harari",
		Price:  24.99,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusShips, created.Status)

	restocked, err := svc.Restock(ctx, created.ID, RestockRequest{Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, StatusInStock, restocked.Status)
}

func TestStaffPicksFilter(t *testing.T) {
	repo := newFakeBookRepo()
	svc := newBookService(repo)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookRequest{ISBN: "1", Title: "Pick", Author: "A", Price: 1, IsStaffPick: true, InventoryCount: 5})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, CreateBookRequest{ISBN: "2", Title: "Not a pick", Author: "B", Price: 1, InventoryCount: 5})
	require.NoError(t, err)

	picks, err := svc.GetStaffPicks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, "Pick", picks[0].Title)
}

func TestListLowStockUsesAlertDefault(t *testing.T) {
	repo := newFakeBookRepo()
	svc := newBookService(repo)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookRequest{
		ISBN: "9780143127741", Title: "H is for Hawk", Author: "Helen Macdonald",
		Price: 17.0, InventoryCount: 2,
	})
	require.NoError(t, err)

	_, err = svc.CreateBook(ctx, CreateBookRequest{
		ISBN: "9780062316110", Title: "Sapiens", Author: "Yuval Noah Harari",
		Price: 24.0, InventoryCount: 40,
	})
	require.NoError(t, err)

	// threshold 0 falls back to the configured alert level of 3.
	low, err := svc.ListLowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "H is for Hawk", low[0].Title)

	// An explicit threshold widens the report.
	low, err = svc.ListLowStock(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, low, 2)
}
