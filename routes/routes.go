package routes

import (
	"time"

	"app/handlers"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Authentication Routes ---
	auth := api.Group("/auth")
	auth.Post("/register", handlers.HandleRegister)
	auth.Post("/login", handlers.HandleLogin)

	// --- Product Routes ---
	products := api.Group("/products", middleware.Authenticate)
	products.Get("/", handlers.HandleListProducts)
	products.Post("/", handlers.HandleCreateProduct)
	products.Post("/upload", middleware.RateLimit(5, time.Minute), handlers.HandleUploadProducts)
	products.Get("/:productId", handlers.HandleGetProductByID)
	products.Put("/:productId", handlers.HandleUpdateProduct)
	products.Delete("/:productId", handlers.HandleArchiveProduct)
	products.Get("/:productId/history", handlers.HandleGetProductHistory)
	products.Get("/:productId/competitors", handlers.HandleListCompetitorPrices)
	products.Post("/:productId/competitors", handlers.HandleRecordCompetitorPrice)
	products.Get("/:productId/forecast", handlers.HandleGetForecast)

	// --- Analysis Routes ---
	analysis := api.Group("/analysis", middleware.Authenticate)
	analysis.Post("/run", middleware.RateLimit(10, time.Minute), handlers.HandleRunAnalysis)

	// --- Alert Routes ---
	alerts := api.Group("/alerts", middleware.Authenticate)
	alerts.Get("/", handlers.HandleListAlerts)
	alerts.Put("/:alertId/acknowledge", handlers.HandleAcknowledgeAlert)
	alerts.Put("/:alertId/resolve", handlers.HandleResolveAlert)

	// --- Dashboard Routes ---
	dashboard := api.Group("/dashboard", middleware.Authenticate)
	dashboard.Get("/summary", handlers.HandleDashboardSummary)

	// --- AI Insight Routes ---
	insights := api.Group("/insights", middleware.Authenticate)
	insights.Post("/generate", middleware.RateLimit(10, time.Minute), handlers.HandleGenerateInsight)
}
