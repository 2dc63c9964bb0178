package events

import (
	"bookworm/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public routes - published events only
	events := rg.Group("/events")
	{
		events.GET("", controller.ListUpcoming)   // GET /api/v1/events
		events.GET("/:id", controller.GetEvent)   // GET /api/v1/events/:id
		events.POST("/:id/rsvp", controller.RSVP) // POST /api/v1/events/:id/rsvp
	}

	// Admin routes - event management
	adminEvents := rg.Group("/admin/events")
	adminEvents.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminEvents.GET("", controller.ListAll)            // GET /api/v1/admin/events
		adminEvents.POST("", controller.CreateEvent)       // POST /api/v1/admin/events
		adminEvents.PUT("/:id", controller.UpdateEvent)    // PUT /api/v1/admin/events/:id
		adminEvents.DELETE("/:id", controller.DeleteEvent) // DELETE /api/v1/admin/events/:id
	}
}
