package giftcards

import (
	"bookworm/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupGiftCardRoutes(rg *gin.RouterGroup, controller *Controller) {
	giftcards := rg.Group("/giftcards")
	{
		giftcards.GET("/balance/:code", controller.GetBalance) // GET /api/v1/giftcards/balance/:code
	}

	adminGiftCards := rg.Group("/admin/giftcards")
	adminGiftCards.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminGiftCards.GET("/:id", controller.GetCard) // GET /api/v1/admin/giftcards/:id
	}
}
