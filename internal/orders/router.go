package orders

import (
	"bookworm/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(rg *gin.RouterGroup, controller *Controller) {
	// OptionalAuth lets a logged-in shopper's order attach to their account
	// while anonymous holders check out with just their session cookie.
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuth(), middleware.HolderIdentity())
	{
		checkout.POST("", controller.Checkout) // POST /api/v1/checkout
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.OptionalAuth(), middleware.HolderIdentity())
	{
		orders.GET("", controller.ListOrders)             // GET /api/v1/orders
		orders.GET("/ref/:ref", controller.GetOrderByRef) // GET /api/v1/orders/ref/:ref
		orders.GET("/:id", controller.GetOrder)           // GET /api/v1/orders/:id
	}
}
