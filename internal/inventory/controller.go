package inventory

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

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

// Reserve holds stock for the requesting shopper.
func (c *Controller) Reserve(ctx *gin.Context) {
	var req ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	holderID := middleware.HolderID(ctx)
	reservation, err := c.service.Reserve(ctx.Request.Context(), req, holderID)
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			response.RespondJSON(ctx, "error", http.StatusConflict, "Insufficient stock", insufficient, insufficient.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to reserve stock", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Stock reserved successfully", reservation, nil)
}

// Release returns held stock. Always responds success: reservation
// bookkeeping must never block a cart operation.
func (c *Controller) Release(ctx *gin.Context) {
	var req ReleaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	c.service.Release(ctx.Request.Context(), req, middleware.HolderID(ctx))
	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation released", nil, nil)
}

// Confirm converts a reservation into a sale. Internal/admin surface; the
// normal path goes through checkout.
func (c *Controller) Confirm(ctx *gin.Context) {
	var req ConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	c.service.ConfirmPurchase(ctx.Request.Context(), req)
	response.RespondJSON(ctx, "success", http.StatusOK, "Purchase confirmed", nil, nil)
}

// CheckAvailability backs the "In Stock" / "Only 1 left!" badges.
func (c *Controller) CheckAvailability(ctx *gin.Context) {
	bookID := ctx.Param("bookId")
	if bookID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Book ID is required", nil, "missing book ID")
		return
	}

	quantity := 1
	if q, ok := ctx.GetQuery("quantity"); ok {
		if parsed, err := parseQuantity(q); err == nil {
			quantity = parsed
		}
	}

	availability, err := c.service.CheckAvailability(ctx.Request.Context(), bookID, quantity)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to check availability", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability checked", availability, nil)
}

func parseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if quantity < 1 {
		return 0, fmt.Errorf("quantity must be at least 1")
	}
	return quantity, nil
}
