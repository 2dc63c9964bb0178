package cart

import (
	"errors"
	"net/http"

	"bookworm/internal/books"
	"bookworm/internal/inventory"
	"bookworm/internal/shared/middleware"
	"bookworm/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetCart(ctx *gin.Context) {
	cart, err := c.service.GetCart(ctx.Request.Context(), middleware.HolderID(ctx))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load cart", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cart retrieved successfully", cart, nil)
}

func (c *Controller) AddItem(ctx *gin.Context) {
	var req AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	item, err := c.service.AddItem(ctx.Request.Context(), middleware.HolderID(ctx), req)
	if err != nil {
		var insufficient *inventory.InsufficientStockError
		if errors.As(err, &insufficient) {
			response.RespondJSON(ctx, "error", http.StatusConflict, "Insufficient stock", insufficient, insufficient.Error())
			return
		}
		if errors.Is(err, books.ErrBookNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Book not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to add item to cart", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Item added to cart", item, nil)
}

func (c *Controller) UpdateQuantity(ctx *gin.Context) {
	var req UpdateQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	item, err := c.service.UpdateQuantity(ctx.Request.Context(), middleware.HolderID(ctx), ctx.Param("itemId"), req.Quantity)
	if err != nil {
		var insufficient *inventory.InsufficientStockError
		if errors.As(err, &insufficient) {
			response.RespondJSON(ctx, "error", http.StatusConflict, "Insufficient stock", insufficient, insufficient.Error())
			return
		}
		if errors.Is(err, ErrItemNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Cart item not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to update quantity", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Quantity updated", item, nil)
}

func (c *Controller) RemoveItem(ctx *gin.Context) {
	err := c.service.RemoveItem(ctx.Request.Context(), middleware.HolderID(ctx), ctx.Param("itemId"))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Cart item not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to remove item", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Item removed from cart", nil, nil)
}

func (c *Controller) Clear(ctx *gin.Context) {
	if err := c.service.Clear(ctx.Request.Context(), middleware.HolderID(ctx)); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to clear cart", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cart cleared", nil, nil)
}
