package books

import (
	"context"
	"fmt"

	"bookworm/internal/shared/config"
	"bookworm/internal/shared/constants"
	"bookworm/pkg/cache"
	"bookworm/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	ListBooks(ctx context.Context, query ListBooksQuery) (*ListBooksResponse, error)
	GetBook(ctx context.Context, id string) (*BookResponse, error)
	GetBookByISBN(ctx context.Context, isbn string) (*BookResponse, error)
	GetStaffPicks(ctx context.Context, limit int) ([]BookResponse, error)
	SearchBooks(ctx context.Context, search string, limit int) ([]BookResponse, error)

	// Admin catalog management
	CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error)
	UpdateBook(ctx context.Context, id string, req UpdateBookRequest) (*BookResponse, error)
	DeleteBook(ctx context.Context, id string) error
	Restock(ctx context.Context, id string, req RestockRequest) (*BookResponse, error)

	// ListLowStock drives the restock report: titles whose available copies
	// have fallen to the threshold. threshold <= 0 uses the alert default.
	ListLowStock(ctx context.Context, threshold int) ([]BookResponse, error)
}

type service struct {
	repo   Repository
	cache  cache.Service
	config *config.Config
	logger *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, cfg *config.Config) Service {
	return &service{
		repo:   repo,
		cache:  cacheService,
		config: cfg,
		logger: logger.GetDefault(),
	}
}

func (s *service) ListBooks(ctx context.Context, query ListBooksQuery) (*ListBooksResponse, error) {
	filter := ListFilter{
		Category:       query.Category,
		Search:         query.Search,
		InStockOnly:    query.InStockOnly,
		StaffPicksOnly: query.StaffPicksOnly,
		Limit:          normalizeLimit(query.Limit),
		Offset:         max(query.Offset, 0),
	}

	// Search results are not cached: the term space is unbounded.
	if filter.Search != "" {
		return s.listUncached(ctx, filter)
	}

	var resp ListBooksResponse
	key := constants.BuildBookListKey(filter.Category, filter.StaffPicksOnly, filter.InStockOnly, filter.Limit, filter.Offset)
	err := s.cache.GetOrSet(ctx, key, constants.TTLBookList, func() (interface{}, error) {
		return s.listUncached(ctx, filter)
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) listUncached(ctx context.Context, filter ListFilter) (*ListBooksResponse, error) {
	books, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	return &ListBooksResponse{
		Books:  s.toResponses(books),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *service) GetBook(ctx context.Context, id string) (*BookResponse, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID: %w", err)
	}

	var resp BookResponse
	err = s.cache.GetOrSet(ctx, constants.BuildBookKey(id), constants.TTLBook, func() (interface{}, error) {
		book, err := s.repo.GetByID(ctx, bookID)
		if err != nil {
			return nil, err
		}
		return s.toResponse(book), nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) ListLowStock(ctx context.Context, threshold int) ([]BookResponse, error) {
	if threshold <= 0 {
		threshold = s.config.Inventory.LowStockAlert
	}

	books, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock books: %w", err)
	}
	return s.toResponses(books), nil
}

func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*BookResponse, error) {
	book, err := s.repo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return s.toResponse(book), nil
}

func (s *service) GetStaffPicks(ctx context.Context, limit int) ([]BookResponse, error) {
	resp, err := s.ListBooks(ctx, ListBooksQuery{StaffPicksOnly: true, Limit: normalizeLimit(limit)})
	if err != nil {
		return nil, err
	}
	return resp.Books, nil
}

func (s *service) SearchBooks(ctx context.Context, search string, limit int) ([]BookResponse, error) {
	resp, err := s.ListBooks(ctx, ListBooksQuery{Search: search, Limit: normalizeLimit(limit)})
	if err != nil {
		return nil, err
	}
	return resp.Books, nil
}

func (s *service) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if existing, err := s.repo.GetByISBN(ctx, req.ISBN); err == nil && existing != nil {
		return nil, fmt.Errorf("book with ISBN %s already exists", req.ISBN)
	}

	book := &Book{
		ID:              uuid.New(),
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Description:     req.Description,
		Price:           req.Price,
		Cost:            req.Cost,
		CoverURL:        req.CoverURL,
		Category:        req.Category,
		Genre:           req.Genre,
		BookType:        req.BookType,
		Publisher:       req.Publisher,
		PublicationDate: req.PublicationDate,
		PageCount:       req.PageCount,
		Status:          req.Status,
		IsStaffPick:     req.IsStaffPick,
		StaffReviewer:   req.StaffReviewer,
		StaffQuote:      req.StaffQuote,
		InventoryCount:  req.InventoryCount,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.invalidateListCache(ctx)
	return s.toResponse(book), nil
}

func (s *service) UpdateBook(ctx context.Context, id string, req UpdateBookRequest) (*BookResponse, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID: %w", err)
	}

	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	applyUpdates(book, req)

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.invalidateBookCache(ctx, id)
	return s.toResponse(book), nil
}

func (s *service) DeleteBook(ctx context.Context, id string) error {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid book ID: %w", err)
	}

	if err := s.repo.Delete(ctx, bookID); err != nil {
		return err
	}

	s.invalidateBookCache(ctx, id)
	return nil
}

func (s *service) Restock(ctx context.Context, id string, req RestockRequest) (*BookResponse, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID: %w", err)
	}

	if err := s.repo.Restock(ctx, bookID, req.Quantity); err != nil {
		return nil, err
	}

	s.invalidateBookCache(ctx, id)

	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Book restocked", "book_id", id, "quantity", req.Quantity, "on_hand", book.InventoryCount)
	return s.toResponse(book), nil
}

func (s *service) invalidateBookCache(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, constants.BuildBookKey(id)); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate book cache", "book_id", id)
	}
	s.invalidateListCache(ctx)
}

func (s *service) invalidateListCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.BookListPattern()); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate book list cache")
	}
}

func (s *service) toResponse(book *Book) *BookResponse {
	title, subtitle := SplitTitle(book.Title)
	return &BookResponse{
		ID:              book.ID.String(),
		ISBN:            book.ISBN,
		Title:           title,
		Subtitle:        subtitle,
		Author:          book.Author,
		Description:     book.Description,
		Price:           book.Price,
		CoverURL:        book.CoverURL,
		Category:        book.Category,
		Genre:           book.Genre,
		BookType:        book.BookType,
		Publisher:       book.Publisher,
		PublicationDate: book.PublicationDate,
		PageCount:       book.PageCount,
		Status:          book.DisplayStatus(s.config.Inventory.LowStockAlert),
		IsStaffPick:     book.IsStaffPick,
		StaffReviewer:   book.StaffReviewer,
		StaffQuote:      book.StaffQuote,
	}
}

func (s *service) toResponses(books []Book) []BookResponse {
	responses := make([]BookResponse, 0, len(books))
	for i := range books {
		responses = append(responses, *s.toResponse(&books[i]))
	}
	return responses
}

func applyUpdates(book *Book, req UpdateBookRequest) {
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.Cost != nil {
		book.Cost = req.Cost
	}
	if req.CoverURL != nil {
		book.CoverURL = *req.CoverURL
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.BookType != nil {
		book.BookType = *req.BookType
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.PublicationDate != nil {
		book.PublicationDate = req.PublicationDate
	}
	if req.PageCount != nil {
		book.PageCount = req.PageCount
	}
	if req.Status != nil {
		book.Status = *req.Status
	}
	if req.IsStaffPick != nil {
		book.IsStaffPick = *req.IsStaffPick
	}
	if req.StaffReviewer != nil {
		book.StaffReviewer = *req.StaffReviewer
	}
	if req.StaffQuote != nil {
		book.StaffQuote = *req.StaffQuote
	}
}

func normalizeLimit(limit int) int {
	const maxLimit = 100
	if limit <= 0 {
		return 24
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
