package orders

import (
	"errors"
	"net/http"
	"strconv"

	"bookworm/internal/shared/middleware"
	"bookworm/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) Checkout(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	order, err := c.service.Checkout(ctx.Request.Context(), middleware.HolderID(ctx), authenticatedUserID(ctx), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Cart is empty", nil, err.Error())
		case errors.Is(err, ErrPaymentDeclined):
			response.RespondJSON(ctx, "error", http.StatusPaymentRequired, "Payment declined", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Checkout failed", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Order placed successfully", order, nil)
}

func (c *Controller) GetOrder(ctx *gin.Context) {
	order, err := c.service.GetOrder(ctx.Request.Context(), middleware.HolderID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to fetch order", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Order retrieved successfully", order, nil)
}

func (c *Controller) ListOrders(ctx *gin.Context) {
	limit := 20
	if raw, ok := ctx.GetQuery("limit"); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	orders, err := c.service.ListOrders(ctx.Request.Context(), middleware.HolderID(ctx), authenticatedUserID(ctx), limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list orders", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Orders retrieved successfully", orders, nil)
}

// GetOrderByRef serves the "look up my order" flow using the human-readable
// reference from the confirmation email.
func (c *Controller) GetOrderByRef(ctx *gin.Context) {
	order, err := c.service.GetOrderByRef(ctx.Request.Context(), middleware.HolderID(ctx), ctx.Param("ref"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to fetch order", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Order retrieved successfully", order, nil)
}

// authenticatedUserID returns the JWT user ID when OptionalAuth validated
// one, nil for anonymous shoppers.
func authenticatedUserID(ctx *gin.Context) *uuid.UUID {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return nil
	}
	idStr, ok := raw.(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	return &id
}
