package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"cafestock/database"
	"cafestock/models"
	"cafestock/storage"
	"cafestock/utils"
)

type snapshotEntry struct {
	ItemID             string  `json:"item_id"`
	StockLevel         float64 `json:"stock_level"`
	WasteAmount        float64 `json:"waste_amount"`
	DeliveriesReceived float64 `json:"deliveries_received"`
	Notes              string  `json:"notes"`
}

// HandleAddSnapshot records a dated stock observation for one or more items.
// A repeated (date, item) entry replaces the earlier observation.
func HandleAddSnapshot(c *fiber.Ctx) error {
	var req struct {
		Date    string          `json:"date"`
		Entries []snapshotEntry `json:"entries"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid date format"})
	}
	if len(req.Entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "No snapshot entries provided"})
	}

	snapshots := make([]models.InventorySnapshot, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.ItemID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Snapshot entry missing item_id"})
		}
		snapshots = append(snapshots, models.InventorySnapshot{
			Date:               date,
			ItemID:             entry.ItemID,
			StockLevel:         entry.StockLevel,
			WasteAmount:        entry.WasteAmount,
			DeliveriesReceived: entry.DeliveriesReceived,
			Notes:              entry.Notes,
		})
	}

	mu.Lock()
	for _, snap := range snapshots {
		eng.AddSnapshot(snap)
	}
	mu.Unlock()

	if db := database.GetDB(); db != nil {
		store := storage.NewPostgresStore(db)
		for _, snap := range snapshots {
			if err := store.SaveSnapshot(context.Background(), snap); err != nil {
				log.Printf("❌ [SNAPSHOT] Failed to persist snapshot: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to persist snapshot"})
			}
		}
	}

	log.Printf("📸 [SNAPSHOT] Recorded %d entries for %s", len(snapshots), utils.DateKey(date))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"date":    utils.DateKey(date),
		"entries": len(snapshots),
	}})
}

// HandleAddDelivery records one delivery in the ledger.
func HandleAddDelivery(c *fiber.Ctx) error {
	var req struct {
		Date     string  `json:"date"`
		ItemID   string  `json:"item_id"`
		Quantity float64 `json:"quantity"`
		UnitCost float64 `json:"unit_cost"`
		Notes    string  `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid date format"})
	}
	if req.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Missing item_id"})
	}
	if req.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Quantity cannot be negative"})
	}

	rec := models.DeliveryRecord{
		Date:     date,
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
		Notes:    req.Notes,
	}

	mu.Lock()
	eng.AddDelivery(rec)
	mu.Unlock()

	if db := database.GetDB(); db != nil {
		if err := storage.NewPostgresStore(db).SaveDelivery(context.Background(), rec); err != nil {
			log.Printf("❌ [DELIVERY] Failed to persist delivery: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to persist delivery"})
		}
	}

	log.Printf("🚚 [DELIVERY] Recorded %.1f of %s on %s", req.Quantity, req.ItemID, utils.DateKey(date))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": rec})
}

// HandleRecalculateUsage reconciles usage, persists the merged usage history
// when a database is configured, and returns the fresh records plus audit.
func HandleRecalculateUsage(c *fiber.Ctx) error {
	mu.RLock()
	usage := eng.Reconcile()
	merged := eng.MergeUsageHistory(nil)
	report := eng.Audit()
	mu.RUnlock()

	if db := database.GetDB(); db != nil {
		if err := storage.NewPostgresStore(db).ReplaceCalculatedUsage(context.Background(), merged); err != nil {
			log.Printf("❌ [RECALC] Failed to persist usage history: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to persist usage history"})
		}
	}

	log.Printf("🧮 [RECALC] %d usage records recalculated at %s", len(usage), time.Now().Format("15:04:05"))
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"usage": usage,
		"audit": report,
	}})
}
