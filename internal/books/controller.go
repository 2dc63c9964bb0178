package books

import (
	"errors"
	"net/http"
	"strconv"

	"bookworm/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListBooks handles catalog browsing with filters and pagination.
func (c *Controller) ListBooks(ctx *gin.Context) {
	var query ListBooksQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	books, err := c.service.ListBooks(ctx.Request.Context(), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch books", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Books retrieved successfully", books, nil)
}

func (c *Controller) GetBook(ctx *gin.Context) {
	book, err := c.service.GetBook(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Book not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to fetch book", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Book retrieved successfully", book, nil)
}

func (c *Controller) GetBookByISBN(ctx *gin.Context) {
	book, err := c.service.GetBookByISBN(ctx.Request.Context(), ctx.Param("isbn"))
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Book not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch book", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Book retrieved successfully", book, nil)
}

func (c *Controller) GetStaffPicks(ctx *gin.Context) {
	limit := 10
	if raw, ok := ctx.GetQuery("limit"); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	picks, err := c.service.GetStaffPicks(ctx.Request.Context(), limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch staff picks", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Staff picks retrieved successfully", picks, nil)
}

func (c *Controller) SearchBooks(ctx *gin.Context) {
	query := ctx.Query("q")
	limit := 24
	if raw, ok := ctx.GetQuery("limit"); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	books, err := c.service.SearchBooks(ctx.Request.Context(), query, limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Search failed", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Search completed", books, nil)
}

// Admin handlers

func (c *Controller) CreateBook(ctx *gin.Context) {
	var req CreateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	book, err := c.service.CreateBook(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create book", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Book created successfully", book, nil)
}

func (c *Controller) UpdateBook(ctx *gin.Context) {
	var req UpdateBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	book, err := c.service.UpdateBook(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Book not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to update book", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Book updated successfully", book, nil)
}

func (c *Controller) DeleteBook(ctx *gin.Context) {
	if err := c.service.DeleteBook(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Book not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to delete book", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Book deleted successfully", nil, nil)
}

func (c *Controller) Restock(ctx *gin.Context) {
	var req RestockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	book, err := c.service.Restock(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Book not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to restock book", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Book restocked successfully", book, nil)
}

// GetLowStock lists titles whose available copies are at or below the
// threshold, for the morning restock report.
func (c *Controller) GetLowStock(ctx *gin.Context) {
	threshold := 0
	if raw, ok := ctx.GetQuery("threshold"); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			threshold = parsed
		}
	}

	books, err := c.service.ListLowStock(ctx.Request.Context(), threshold)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list low stock books", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Low stock books retrieved", books, nil)
}
