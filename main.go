package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"cafestock/config"
	"cafestock/database"
	"cafestock/engine"
	"cafestock/handlers"
	"cafestock/models"
	"cafestock/routes"
	"cafestock/storage"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := config.Load()

	var (
		items      []models.InventoryItem
		suppliers  []models.Supplier
		snapshots  []models.InventorySnapshot
		deliveries []models.DeliveryRecord
		orders     []models.Order
		aliases    storage.AliasTable
	)

	switch {
	case cfg.DatabaseURL != "":
		database.Connect(cfg.DatabaseURL)
		defer database.Close()

		store := storage.NewPostgresStore(database.GetDB())
		ctx := context.Background()
		if items, err = store.LoadItems(ctx); err != nil {
			log.Fatalf("Failed to load inventory items: %v", err)
		}
		if suppliers, err = store.LoadSuppliers(ctx); err != nil {
			log.Fatalf("Failed to load suppliers: %v", err)
		}
		if snapshots, err = store.LoadSnapshots(ctx); err != nil {
			log.Fatalf("Failed to load snapshots: %v", err)
		}
		if deliveries, err = store.LoadDeliveries(ctx); err != nil {
			log.Fatalf("Failed to load deliveries: %v", err)
		}
		if orders, err = store.LoadOrders(ctx); err != nil {
			log.Fatalf("Failed to load orders: %v", err)
		}
	case cfg.DataDir != "":
		items, snapshots, deliveries, aliases = loadFromDataDir(cfg.DataDir)
	default:
		log.Println("No DATABASE_URL or DATA_DIR configured, starting with empty collections")
	}

	// Build the engine from the complete load, then publish it for reads.
	eng := engine.New(items, suppliers, snapshots, deliveries, orders)
	eng.SetAuditTolerance(cfg.AuditTolerance)
	handlers.SetEngine(eng)
	handlers.SetAliases(aliases)

	log.Printf("🏁 Engine loaded: %d items, %d snapshots, %d deliveries, %d orders",
		len(items), len(snapshots), len(deliveries), len(orders))

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}

// loadFromDataDir reads the source collections from CSV files. A missing
// file is an empty collection, not an error; malformed rows are logged and
// skipped.
func loadFromDataDir(dir string) ([]models.InventoryItem, []models.InventorySnapshot, []models.DeliveryRecord, storage.AliasTable) {
	var aliases storage.AliasTable
	if f, err := os.Open(filepath.Join(dir, "item_aliases.csv")); err == nil {
		aliases, err = storage.LoadAliasTable(f)
		f.Close()
		if err != nil {
			log.Printf("⚠️  Could not parse item_aliases.csv: %v", err)
		}
	}

	var items []models.InventoryItem
	if f, err := os.Open(filepath.Join(dir, "inventory_items.csv")); err == nil {
		var warnings []string
		items, warnings, err = storage.ReadItemsCSV(f)
		f.Close()
		if err != nil {
			log.Printf("⚠️  Could not parse inventory_items.csv: %v", err)
		}
		for _, w := range warnings {
			log.Printf("⚠️  inventory_items.csv: %s", w)
		}
	}

	var snapshots []models.InventorySnapshot
	if f, err := os.Open(filepath.Join(dir, "inventory_snapshots.csv")); err == nil {
		var warnings []string
		snapshots, warnings, err = storage.ReadSnapshotsCSV(f, aliases)
		f.Close()
		if err != nil {
			log.Printf("⚠️  Could not parse inventory_snapshots.csv: %v", err)
		}
		for _, w := range warnings {
			log.Printf("⚠️  inventory_snapshots.csv: %s", w)
		}
	}

	var deliveries []models.DeliveryRecord
	if f, err := os.Open(filepath.Join(dir, "deliveries.csv")); err == nil {
		var warnings []string
		deliveries, warnings, err = storage.ReadDeliveriesCSV(f, aliases)
		f.Close()
		if err != nil {
			log.Printf("⚠️  Could not parse deliveries.csv: %v", err)
		}
		for _, w := range warnings {
			log.Printf("⚠️  deliveries.csv: %s", w)
		}
	}

	return items, snapshots, deliveries, aliases
}
