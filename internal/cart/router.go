package cart

import (
	"bookworm/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCartRoutes(rg *gin.RouterGroup, controller *Controller) {
	// OptionalAuth must run first so a logged-in shopper's cart keys on
	// their user ID, the same holder checkout resolves.
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuth(), middleware.HolderIdentity())
	{
		cart.GET("", controller.GetCart)                         // GET /api/v1/cart
		cart.POST("/items", controller.AddItem)                  // POST /api/v1/cart/items
		cart.PUT("/items/:itemId", controller.UpdateQuantity)    // PUT /api/v1/cart/items/:itemId
		cart.DELETE("/items/:itemId", controller.RemoveItem)     // DELETE /api/v1/cart/items/:itemId
		cart.DELETE("", controller.Clear)                        // DELETE /api/v1/cart
	}
}
