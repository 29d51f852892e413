package handlers

import (
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"cafestock/config"
	"cafestock/engine"
	"cafestock/storage"
)

var (
	mu      sync.RWMutex
	eng     *engine.Engine
	aliases storage.AliasTable
)

// SetEngine publishes a fully loaded engine for request handling. Callers
// build the engine from a complete data load first, so readers never observe
// a partially written data set.
func SetEngine(e *engine.Engine) {
	mu.Lock()
	eng = e
	mu.Unlock()
}

// SetAliases installs the item alias table used by CSV ingestion.
func SetAliases(table storage.AliasTable) {
	mu.Lock()
	aliases = table
	mu.Unlock()
}

// HandleGetStatus returns the dashboard inventory summary.
func HandleGetStatus(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	return c.JSON(fiber.Map{"status": "success", "data": eng.Status(time.Now())})
}

// HandleGetAlerts returns immediate low-stock alerts.
func HandleGetAlerts(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	return c.JSON(fiber.Map{"status": "success", "data": eng.Alerts()})
}

// HandleGetUsage returns the reconciled usage history.
func HandleGetUsage(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	usage := eng.Reconcile()
	log.Printf("🧮 [USAGE] Reconciled %d usage records", len(usage))
	return c.JSON(fiber.Map{"status": "success", "data": usage})
}

// HandleGetConsumption returns the derived consumption ledger.
func HandleGetConsumption(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	return c.JSON(fiber.Map{"status": "success", "data": eng.ConsumptionLedger()})
}

// HandleGetPatterns returns per-item usage patterns.
func HandleGetPatterns(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	return c.JSON(fiber.Map{"status": "success", "data": eng.Patterns(time.Now())})
}

// HandleGetForecasts returns the depletion outlook for every item.
// Query param "days" overrides the configured horizon.
func HandleGetForecasts(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", strconv.Itoa(config.AppConfig.ForecastHorizonDays)))
	if err != nil || days <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid days parameter"})
	}

	mu.RLock()
	defer mu.RUnlock()

	forecasts := eng.Forecasts(days, time.Now())
	log.Printf("📈 [FORECAST] Generated forecasts for %d items over %d days", len(forecasts), days)
	return c.JSON(fiber.Map{"status": "success", "data": forecasts})
}

// HandlePredictUsage predicts cumulative usage for one item.
// GET /forecasts/:itemId?days=7
func HandlePredictUsage(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid days parameter"})
	}

	mu.RLock()
	defer mu.RUnlock()

	predicted, err := eng.PredictUsage(itemID, days, time.Now())
	if err != nil {
		var notFound engine.ErrItemNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to predict usage"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"item_id":         itemID,
		"days_ahead":      days,
		"predicted_usage": predicted,
	}})
}

// HandleGetRecommendations returns the canonical recommendation list.
func HandleGetRecommendations(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	recommendations := eng.Recommendations(time.Now())
	log.Printf("💡 [RECOMMEND] Generated %d recommendations", len(recommendations))
	return c.JSON(fiber.Map{"status": "success", "data": recommendations})
}

// HandleRunAudit runs a consistency audit and returns the structured report.
func HandleRunAudit(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	report := eng.Audit()
	log.Printf("🔍 [AUDIT] Run %s found %d issue rows (clean=%t)", report.RunID, len(report.Issues), report.Clean)
	return c.JSON(fiber.Map{"status": "success", "data": report})
}

// HandleGetAuditReport returns the audit as a plain-text report.
func HandleGetAuditReport(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	report := eng.Audit()
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(engine.FormatReport(report))
}

// HandleRunCycle runs the full reconcile → audit → analyze → forecast →
// recommend cycle and returns everything at once.
func HandleRunCycle(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	result := eng.RunCycle(config.AppConfig.ForecastHorizonDays, time.Now())
	log.Printf("🔄 [CYCLE] usage=%d audit_issues=%d patterns=%d recommendations=%d",
		len(result.Usage), len(result.Audit.Issues), len(result.Patterns), len(result.Recommendations))
	return c.JSON(fiber.Map{"status": "success", "data": result})
}

// HandleGetItems returns the item catalog.
func HandleGetItems(c *fiber.Ctx) error {
	mu.RLock()
	defer mu.RUnlock()

	return c.JSON(fiber.Map{"status": "success", "data": eng.Items()})
}
