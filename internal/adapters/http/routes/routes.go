package routes

import (
	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/adapters/http/handlers"
	"cryptex-console/internal/adapters/http/middleware"
	"cryptex-console/internal/config"
	"cryptex-console/internal/core/services"
	"cryptex-console/internal/pkg/rbac"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, gw *backend.Client, marketService *services.MarketService, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(gw)
	orderService := services.NewOrderService(gw)
	adminService := services.NewAdminService(gw)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(gw, marketService)
	sessionHandler := handlers.NewSessionHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(adminService)
	orderHandler := handlers.NewOrderHandler(orderService)
	marketHandler := handlers.NewMarketHandler(marketService)
	systemHandler := handlers.NewSystemHandler(adminService)
	pageHandler := handlers.NewPageHandler()

	// Health check
	app.Get("/healthz", healthHandler.Check)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Static assets for the page shell
	app.Static("/assets", "./web/assets")

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupSessionRoutes(apiV1.Group("/session"), sessionHandler, cfg)

	// User management routes (admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Order oversight routes
	orderRoutes := apiV1.Group("/orders")
	orderRoutes.Use(middleware.AuthMiddleware(cfg))
	setupOrderRoutes(orderRoutes, orderHandler)

	// Market data routes
	marketRoutes := apiV1.Group("/markets")
	marketRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMarketRoutes(marketRoutes, marketHandler)

	// System administration routes
	systemRoutes := apiV1.Group("/system")
	systemRoutes.Use(middleware.AuthMiddleware(cfg))
	setupSystemRoutes(systemRoutes, systemHandler)

	// Page routes (browser navigations, guarded)
	setupPageRoutes(app, pageHandler, cfg)
}

// setupSessionRoutes configures session endpoints. Login and the
// password flows take the stricter rate limits.
func setupSessionRoutes(router fiber.Router, handler *handlers.SessionHandler, cfg *config.Config) {
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/logout", handler.Logout)
	router.Get("/me", handler.Me)
	router.Post("/refresh", handler.Refresh)

	router.Post("/change-password", middleware.AuthMiddleware(cfg), middleware.StrictRateLimiter(), handler.ChangePassword)
	router.Post("/forgot-password", middleware.StrictRateLimiter(), handler.ForgotPassword)
	router.Post("/reset-password", middleware.StrictRateLimiter(), handler.ResetPassword)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", middleware.RequirePermission(rbac.PermViewUsers), handler.List)
	router.Get("/:id", middleware.RequirePermission(rbac.PermViewUsers), handler.Get)
	router.Post("/", middleware.RequirePermission(rbac.PermCreateUser), handler.Create)
	router.Put("/:id", middleware.RequirePermission(rbac.PermUpdateUser), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(rbac.PermDeleteUser), handler.Delete)
}

// setupOrderRoutes configures order oversight routes
func setupOrderRoutes(router fiber.Router, handler *handlers.OrderHandler) {
	router.Get("/", middleware.RequirePermission(rbac.PermViewOrders), handler.List)
	router.Get("/:id", middleware.RequirePermission(rbac.PermViewOrders), handler.Get)
	router.Post("/:id/cancel", middleware.RequirePermission(rbac.PermCancelOrder), handler.Cancel)
}

// setupMarketRoutes configures market data routes. Snapshot-backed
// listings get a short public cache; live data never caches.
func setupMarketRoutes(router fiber.Router, handler *handlers.MarketHandler) {
	router.Use(middleware.RequirePermission(rbac.PermViewMarket))

	router.Get("/symbols", middleware.MarketDataCache(), handler.Symbols)
	router.Get("/tickers", middleware.MarketDataCache(), handler.Tickers)
	router.Get("/orderbook", middleware.NoCacheHeaders(), handler.OrderBook)
	router.Get("/trades", middleware.NoCacheHeaders(), handler.Trades)
	router.Get("/candles", middleware.NoCacheHeaders(), handler.Candles)
}

// setupSystemRoutes configures system administration routes
func setupSystemRoutes(router fiber.Router, handler *handlers.SystemHandler) {
	router.Get("/settings", middleware.RequirePermission(rbac.PermViewSettings), handler.GetSettings)
	router.Put("/settings", middleware.RequirePermission(rbac.PermUpdateSettings), handler.UpdateSettings)
	router.Get("/audit", middleware.RequirePermission(rbac.PermViewAudit), handler.ListAudit)
	router.Put("/maintenance", middleware.RequirePermission(rbac.PermManageMaintenance), middleware.StrictRateLimiter(), handler.SetMaintenance)
	router.Post("/backups", middleware.RequirePermission(rbac.PermRunBackup), middleware.StrictRateLimiter(), handler.TriggerBackup)
}

// setupPageRoutes registers browser navigations behind the route
// guard. The guard bounces unauthenticated visitors to /login and
// logged-in visitors away from the login page.
func setupPageRoutes(app *fiber.App, handler *handlers.PageHandler, cfg *config.Config) {
	pages := []string{
		"/",
		"/login",
		"/forgot-password",
		"/reset-password",
		"/dashboard",
		"/dashboard/*",
		"/users",
		"/users/*",
		"/orders",
		"/orders/*",
		"/markets",
		"/markets/*",
		"/settings",
		"/settings/*",
		"/audit",
		"/audit/*",
		"/system",
		"/system/*",
	}

	optionalAuth := middleware.OptionalAuth(cfg)
	routeGuard := middleware.RouteGuard()
	for _, path := range pages {
		app.Get(path, optionalAuth, routeGuard, handler.Shell)
	}
}
