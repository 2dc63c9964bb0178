package giftcards

import (
	"errors"
	"net/http"

	"bookworm/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetBalance looks up a card by its code or barcode number.
func (c *Controller) GetBalance(ctx *gin.Context) {
	code := ctx.Param("code")
	if code == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Gift card code is required", nil, "missing code")
		return
	}

	balance, err := c.service.GetBalance(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, ErrGiftCardNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Gift card not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to look up gift card", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Gift card balance retrieved", balance, nil)
}

func (c *Controller) GetCard(ctx *gin.Context) {
	card, err := c.service.GetCard(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, ErrGiftCardNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Gift card not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to fetch gift card", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Gift card retrieved", card, nil)
}
