package routes

import (
	"net/http"
	"time"

	"bookworm/internal/auth"
	"bookworm/internal/books"
	"bookworm/internal/cart"
	"bookworm/internal/events"
	"bookworm/internal/giftcards"
	"bookworm/internal/inventory"
	"bookworm/internal/notifications"
	"bookworm/internal/orders"
	"bookworm/internal/shared/config"
	"bookworm/internal/shared/database"
	"bookworm/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	cache     cache.Service
	publisher *notifications.Publisher

	// Services shared across feature routers. Inventory is also driven by
	// the background sweeper, so main needs a handle on it.
	inventoryService inventory.Service
	booksRepo        books.Repository
	giftCardService  giftcards.Service
	cartService      cart.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, publisher *notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		cache:     cacheService,
		publisher: publisher,
	}
}

// InventoryService exposes the inventory service so the expiry sweeper can
// share the exact instance the HTTP handlers use.
func (r *Router) InventoryService() inventory.Service {
	return r.inventoryService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupBookRoutes(api)
		r.setupInventoryRoutes(api)
		r.setupGiftCardRoutes(api)
		r.setupCartRoutes(api)
		r.setupOrderRoutes(api)
		r.setupEventRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "bookworm-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "bookworm-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)

	auth.SetupAuthRoutes(rg, authController, r.config)
}

func (r *Router) setupBookRoutes(rg *gin.RouterGroup) {
	r.booksRepo = books.NewRepository(r.db.GetPostgreSQL())
	bookService := books.NewService(r.booksRepo, r.cache, r.config)
	bookController := books.NewController(bookService)

	books.SetupBookRoutes(rg, bookController)
}

func (r *Router) setupInventoryRoutes(rg *gin.RouterGroup) {
	inventoryRepo := inventory.NewRepository(r.db.GetPostgreSQL())
	r.inventoryService = inventory.NewService(inventoryRepo, r.cache, r.config)
	inventoryController := inventory.NewController(r.inventoryService)

	inventory.SetupInventoryRoutes(rg, inventoryController)
}

func (r *Router) setupGiftCardRoutes(rg *gin.RouterGroup) {
	giftCardRepo := giftcards.NewRepository(r.db.GetPostgreSQL())
	r.giftCardService = giftcards.NewService(giftCardRepo)
	giftCardController := giftcards.NewController(r.giftCardService)

	giftcards.SetupGiftCardRoutes(rg, giftCardController)
}

func (r *Router) setupCartRoutes(rg *gin.RouterGroup) {
	cartRepo := cart.NewRepository(r.db.GetPostgreSQL())
	r.cartService = cart.NewService(cartRepo, r.inventoryService, r.booksRepo, r.giftCardService)
	cartController := cart.NewController(r.cartService)

	cart.SetupCartRoutes(rg, cartController)
}

func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	orderRepo := orders.NewRepository(r.db.GetPostgreSQL())
	orderService := orders.NewService(
		orderRepo,
		r.cartService,
		r.inventoryService,
		r.giftCardService,
		orders.NewMockProcessor(),
		r.publisher,
		r.config,
	)
	orderController := orders.NewController(orderService)

	orders.SetupOrderRoutes(rg, orderController)
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo, r.cache)
	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController)
}
