package inventory

import (
	"bookworm/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller) {
	// OptionalAuth must run first so authenticated shoppers hold
	// reservations under the same identity the cart and checkout use.
	inventory := rg.Group("/inventory")
	inventory.Use(middleware.OptionalAuth(), middleware.HolderIdentity())
	{
		// Reservation lifecycle (cart flow)
		inventory.POST("/reserve", controller.Reserve) // POST /api/v1/inventory/reserve
		inventory.POST("/release", controller.Release) // POST /api/v1/inventory/release

		// Availability check for stock badges
		inventory.GET("/:bookId/availability", controller.CheckAvailability) // GET /api/v1/inventory/:bookId/availability
	}

	// Confirm bypasses checkout, so it stays admin-only.
	adminInventory := rg.Group("/admin/inventory")
	adminInventory.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminInventory.POST("/confirm", controller.Confirm) // POST /api/v1/admin/inventory/confirm
	}
}
