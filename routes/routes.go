package routes

import (
	"cafestock/handlers"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Inventory State ---
	api.Get("/status", handlers.HandleGetStatus)
	api.Get("/alerts", handlers.HandleGetAlerts)
	api.Get("/items", handlers.HandleGetItems)

	// --- Data Entry ---
	api.Post("/snapshots", handlers.HandleAddSnapshot)
	api.Post("/deliveries", handlers.HandleAddDelivery)
	api.Post("/snapshots/import", handlers.HandleImportSnapshotsCSV)
	api.Post("/deliveries/import", handlers.HandleImportDeliveriesCSV)

	// --- Reconciliation & Audit ---
	api.Get("/usage", handlers.HandleGetUsage)
	api.Post("/usage/recalculate", handlers.HandleRecalculateUsage)
	api.Get("/consumption", handlers.HandleGetConsumption)
	api.Get("/audit", handlers.HandleRunAudit)
	api.Get("/audit/report", handlers.HandleGetAuditReport)
	api.Get("/audit/export", handlers.HandleExportAuditCSV)

	// --- Forecasting & Recommendations ---
	api.Get("/patterns", handlers.HandleGetPatterns)
	api.Get("/forecasts", handlers.HandleGetForecasts)
	api.Get("/forecasts/:itemId", handlers.HandlePredictUsage)
	api.Get("/recommendations", handlers.HandleGetRecommendations)
	api.Get("/recommendations/export", handlers.HandleExportRecommendationsCSV)
	api.Post("/cycle", handlers.HandleRunCycle)

	// --- External Sync & Insights ---
	api.Post("/sync/sheets", handlers.HandleSyncSheets)
	api.Post("/insights", handlers.HandleGetInsights)
}
