package handlers

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"cafestock/config"
	"cafestock/storage"
)

// HandleImportSnapshotsCSV bulk-imports snapshot rows from a CSV request
// body. Malformed rows are skipped and reported; the import never aborts
// over a single bad row.
func HandleImportSnapshotsCSV(c *fiber.Ctx) error {
	mu.RLock()
	table := aliases
	mu.RUnlock()

	snapshots, warnings, err := storage.ReadSnapshotsCSV(bytes.NewReader(c.Body()), table)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Unreadable CSV payload"})
	}

	mu.Lock()
	for _, snap := range snapshots {
		eng.AddSnapshot(snap)
	}
	mu.Unlock()

	log.Printf("📥 [IMPORT] %d snapshots imported, %d rows skipped", len(snapshots), len(warnings))
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"imported": len(snapshots),
		"warnings": warnings,
	}})
}

// HandleImportDeliveriesCSV bulk-imports delivery rows from a CSV body.
func HandleImportDeliveriesCSV(c *fiber.Ctx) error {
	mu.RLock()
	table := aliases
	mu.RUnlock()

	deliveries, warnings, err := storage.ReadDeliveriesCSV(bytes.NewReader(c.Body()), table)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Unreadable CSV payload"})
	}

	mu.Lock()
	for _, rec := range deliveries {
		eng.AddDelivery(rec)
	}
	mu.Unlock()

	log.Printf("📥 [IMPORT] %d deliveries imported, %d rows skipped", len(deliveries), len(warnings))
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"imported": len(deliveries),
		"warnings": warnings,
	}})
}

// HandleExportRecommendationsCSV streams the recommendation table as CSV.
func HandleExportRecommendationsCSV(c *fiber.Ctx) error {
	mu.RLock()
	recommendations := eng.Recommendations(time.Now())
	mu.RUnlock()

	var buf bytes.Buffer
	if err := storage.WriteRecommendationsCSV(&buf, recommendations); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to build CSV export"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="order_recommendations.csv"`)
	return c.Send(buf.Bytes())
}

// HandleExportAuditCSV streams the latest audit run as CSV.
func HandleExportAuditCSV(c *fiber.Ctx) error {
	mu.RLock()
	report := eng.Audit()
	mu.RUnlock()

	var buf bytes.Buffer
	if err := storage.WriteAuditCSV(&buf, report); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to build CSV export"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="audit_results.csv"`)
	return c.Send(buf.Bytes())
}

// HandleSyncSheets pushes the current recommendation and audit tables to the
// configured Google Sheets spreadsheet.
func HandleSyncSheets(c *fiber.Ctx) error {
	cfg := config.AppConfig
	if cfg.SheetsCredentials == "" || cfg.SpreadsheetID == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Sheets sync is not configured"})
	}

	ctx := context.Background()
	exporter, err := storage.NewSheetsExporter(ctx, cfg.SheetsCredentials, cfg.SpreadsheetID)
	if err != nil {
		log.Printf("❌ [SHEETS] Failed to create exporter: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to initialize Sheets client"})
	}

	mu.RLock()
	recommendations := eng.Recommendations(time.Now())
	report := eng.Audit()
	usage := eng.MergeUsageHistory(nil)
	mu.RUnlock()

	if err := exporter.PushRecommendations(ctx, recommendations); err != nil {
		log.Printf("❌ [SHEETS] Recommendation push failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to push recommendations"})
	}
	if err := exporter.PushAudit(ctx, report); err != nil {
		log.Printf("❌ [SHEETS] Audit push failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to push audit results"})
	}
	if err := exporter.PushUsage(ctx, usage); err != nil {
		log.Printf("❌ [SHEETS] Usage push failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to push usage history"})
	}

	log.Printf("📤 [SHEETS] Synced %d recommendations and %d audit rows", len(recommendations), len(report.Issues))
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"recommendations": len(recommendations),
		"audit_rows":      len(report.Issues),
		"usage_rows":      len(usage),
	}})
}
