package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/adapters/http/middleware"
	"cryptex-console/internal/adapters/http/routes"
	"cryptex-console/internal/config"
	"cryptex-console/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "cryptex-console/docs" // Swagger docs
)

// @title Cryptex Console API
// @version 1.0
// @description Admin console for the Cryptex exchange: sessions, user management, order oversight, market data, system administration.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@cryptex.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host console.cryptex.example.com
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Gateway to the exchange backend
	gw := backend.NewClient(backend.Config{
		BaseURL:      cfg.Backend.Origin,
		ProxyPath:    cfg.Backend.ProxyPath,
		Mode:         backend.ModeDirect,
		Timeout:      cfg.Backend.Timeout,
		MaxRetries:   cfg.Backend.MaxRetries,
		RetryBackoff: cfg.Backend.RetryBackoff,
	}, backend.WithOnUnauthorized(func() {
		log.Println("⚠️ Backend rejected a session token")
	}))

	// Market snapshot cache, warmed at boot and refreshed on schedule
	marketService := services.NewMarketService(gw)
	marketService.WarmUp(context.Background())

	cronService := services.NewCronService(marketService)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Cryptex Console v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, gw, marketService, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
