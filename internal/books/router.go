package books

import (
	"bookworm/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public routes - anyone can browse the catalog
	books := rg.Group("/books")
	{
		books.GET("", controller.ListBooks)                 // GET /api/v1/books
		books.GET("/search", controller.SearchBooks)        // GET /api/v1/books/search?q=...
		books.GET("/staff-picks", controller.GetStaffPicks) // GET /api/v1/books/staff-picks
		books.GET("/isbn/:isbn", controller.GetBookByISBN)  // GET /api/v1/books/isbn/:isbn
		books.GET("/:id", controller.GetBook)               // GET /api/v1/books/:id
	}

	// Admin routes - catalog management
	adminBooks := rg.Group("/admin/books")
	adminBooks.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminBooks.POST("", controller.CreateBook)            // POST /api/v1/admin/books
		adminBooks.GET("/low-stock", controller.GetLowStock)  // GET /api/v1/admin/books/low-stock
		adminBooks.PUT("/:id", controller.UpdateBook)         // PUT /api/v1/admin/books/:id
		adminBooks.DELETE("/:id", controller.DeleteBook)      // DELETE /api/v1/admin/books/:id
		adminBooks.POST("/:id/restock", controller.Restock)   // POST /api/v1/admin/books/:id/restock
	}
}
