package router

import (
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/config"
	"github.com/tkamphefner/Inventory/internal/handler"
	"github.com/tkamphefner/Inventory/internal/middleware"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	auditor := audit.NewRecorder(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg, auditor)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, locationRepo, auditor)
	inventorySvc := service.NewInventoryService(inventoryRepo, productRepo, locationRepo, categoryRepo, auditor)
	sessionSvc := service.NewSessionService(sessionRepo, locationRepo, inventorySvc, db, auditor)
	reportSvc := service.NewReportService(reportRepo, inventoryRepo, categoryRepo, auditor)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	categoriesH := handler.NewCategoriesHandler(catalogSvc)
	locationsH := handler.NewLocationsHandler(catalogSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	usersH := handler.NewUsersHandler(authSvc)
	auditH := handler.NewAuditHandler(auditRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("staff", "manager", "admin")
	managerUp := middleware.RequireRole("manager", "admin")
	adminOnly := middleware.RequireRole("admin")

	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — all roles read, admin writes
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.GetByID)
		v1.GET("/products/barcode/:barcode", anyRole, productsH.GetByBarcode)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		v1.GET("/categories", anyRole, categoriesH.List)
		cats := v1.Group("/categories", adminOnly)
		{
			cats.POST("", categoriesH.Create)
			cats.PUT("/:id", categoriesH.Update)
		}

		v1.GET("/locations", anyRole, locationsH.List)
		locs := v1.Group("/locations", adminOnly)
		{
			locs.POST("", locationsH.Create)
			locs.PUT("/:id", locationsH.Update)
		}

		// Inventory — all roles move stock and read levels; manual counts
		// (set-quantity) need manager and up
		inv := v1.Group("/inventory")
		{
			inv.GET("/levels", anyRole, inventoryH.Levels)
			inv.GET("/summary", anyRole, inventoryH.Summary)
			inv.GET("/transactions", anyRole, inventoryH.Transactions)
			inv.POST("/transactions", anyRole, inventoryH.RecordTransaction)
			inv.PUT("/quantity", managerUp, inventoryH.SetQuantity)
		}

		// Sessions — all roles run them, cancellation needs manager and up
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", anyRole, sessionsH.Create)
			sessions.GET("", anyRole, sessionsH.List)
			sessions.GET("/:id", anyRole, sessionsH.GetByID)
			sessions.POST("/:id/movements", anyRole, sessionsH.AddMovement)
			sessions.POST("/:id/complete", anyRole, sessionsH.Complete)
			sessions.POST("/:id/cancel", managerUp, sessionsH.Cancel)
		}

		reports := v1.Group("/reports", managerUp)
		{
			reports.POST("", reportsH.Create)
			reports.GET("", reportsH.List)
			reports.GET("/:id", reportsH.GetByID)
			reports.PUT("/:id", reportsH.Update)
			reports.DELETE("/:id", reportsH.Deactivate)
			reports.POST("/:id/run", reportsH.Run)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}

		v1.GET("/audit", adminOnly, auditH.List)
	}

	return r
}
