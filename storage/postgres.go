package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cafestock/models"
)

// PostgresStore persists the source collections. The engine never talks to
// it directly: callers load everything up front, build a fresh engine from
// the result and swap it in.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadItems reads the full item catalog.
func (s *PostgresStore) LoadItems(ctx context.Context) ([]models.InventoryItem, error) {
	query := `
		SELECT item_id, name, category, unit, current_stock, min_threshold,
		       max_capacity, cost_per_unit, supplier_id, lead_time_days,
		       shelf_life_days, storage_requirements
		FROM inventory_items
		ORDER BY item_id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory items: %w", err)
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0)
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Category, &item.Unit,
			&item.CurrentStock, &item.MinThreshold, &item.MaxCapacity, &item.CostPerUnit,
			&item.SupplierID, &item.LeadTimeDays, &item.ShelfLifeDays, &item.StorageRequirements); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LoadSuppliers reads the supplier reference data.
func (s *PostgresStore) LoadSuppliers(ctx context.Context) ([]models.Supplier, error) {
	query := `
		SELECT supplier_id, name, contact_name, contact_email, contact_phone,
		       lead_time_days, minimum_order_value, payment_terms,
		       reliability_rating, specialty
		FROM suppliers
		ORDER BY supplier_id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]models.Supplier, 0)
	for rows.Next() {
		var sup models.Supplier
		if err := rows.Scan(&sup.SupplierID, &sup.Name, &sup.ContactName, &sup.ContactEmail,
			&sup.ContactPhone, &sup.LeadTimeDays, &sup.MinimumOrderValue, &sup.PaymentTerms,
			&sup.ReliabilityRating, &sup.Specialty); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

// LoadSnapshots reads the full snapshot history, any order.
func (s *PostgresStore) LoadSnapshots(ctx context.Context) ([]models.InventorySnapshot, error) {
	query := `
		SELECT snapshot_date, item_id, stock_level, waste_amount,
		       deliveries_received, COALESCE(notes, '')
		FROM inventory_snapshots
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]models.InventorySnapshot, 0)
	for rows.Next() {
		var snap models.InventorySnapshot
		if err := rows.Scan(&snap.Date, &snap.ItemID, &snap.StockLevel,
			&snap.WasteAmount, &snap.DeliveriesReceived, &snap.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// LoadDeliveries reads the delivery ledger.
func (s *PostgresStore) LoadDeliveries(ctx context.Context) ([]models.DeliveryRecord, error) {
	query := `
		SELECT delivery_date, item_id, quantity, unit_cost, COALESCE(notes, '')
		FROM deliveries
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]models.DeliveryRecord, 0)
	for rows.Next() {
		var rec models.DeliveryRecord
		if err := rows.Scan(&rec.Date, &rec.ItemID, &rec.Quantity, &rec.UnitCost, &rec.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, rec)
	}
	return deliveries, rows.Err()
}

// LoadOrders reads order headers with their line items.
func (s *PostgresStore) LoadOrders(ctx context.Context) ([]models.Order, error) {
	query := `
		SELECT order_id, supplier_id, order_date, delivery_date, status
		FROM orders
		ORDER BY order_date
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.OrderID, &order.SupplierID, &order.OrderDate,
			&order.DeliveryDate, &order.Status); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineQuery := `
		SELECT item_id, quantity_ordered, quantity_received
		FROM order_line_items
		WHERE order_id = $1
	`
	for i := range orders {
		lineRows, err := s.db.Query(ctx, lineQuery, orders[i].OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load line items for order %s: %w", orders[i].OrderID, err)
		}
		for lineRows.Next() {
			var line models.OrderLineItem
			if err := lineRows.Scan(&line.ItemID, &line.QuantityOrdered, &line.QuantityReceived); err != nil {
				lineRows.Close()
				return nil, fmt.Errorf("failed to scan order line item: %w", err)
			}
			orders[i].LineItems = append(orders[i].LineItems, line)
		}
		lineRows.Close()
		if err := lineRows.Err(); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// SaveSnapshot upserts a snapshot; a later write for the same (date, item)
// replaces the earlier one, matching the in-memory store's semantics.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap models.InventorySnapshot) error {
	query := `
		INSERT INTO inventory_snapshots (snapshot_date, item_id, stock_level, waste_amount, deliveries_received, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (snapshot_date, item_id) DO UPDATE
		SET stock_level = EXCLUDED.stock_level,
		    waste_amount = EXCLUDED.waste_amount,
		    deliveries_received = EXCLUDED.deliveries_received,
		    notes = EXCLUDED.notes
	`
	_, err := s.db.Exec(ctx, query, snap.Date, snap.ItemID, snap.StockLevel,
		snap.WasteAmount, snap.DeliveriesReceived, snap.Notes)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// SaveDelivery appends one delivery record.
func (s *PostgresStore) SaveDelivery(ctx context.Context, rec models.DeliveryRecord) error {
	query := `
		INSERT INTO deliveries (delivery_date, item_id, quantity, unit_cost, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.Exec(ctx, query, rec.Date, rec.ItemID, rec.Quantity, rec.UnitCost, rec.Notes)
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	return nil
}

// ReplaceCalculatedUsage swaps the auto-calculated usage rows for a fresh
// reconciliation result inside one transaction. Hand-entered rows (any other
// calculation_method) are untouched.
func (s *PostgresStore) ReplaceCalculatedUsage(ctx context.Context, usage []models.UsageRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM daily_usage WHERE calculation_method = $1`, models.CalculationMethodInventoryDiff)
	if err != nil {
		return fmt.Errorf("failed to clear calculated usage: %w", err)
	}

	insert := `
		INSERT INTO daily_usage (usage_date, item_id, quantity_used, waste_amount, notes, calculation_method, confidence_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, rec := range usage {
		if rec.CalculationMethod != models.CalculationMethodInventoryDiff {
			continue
		}
		if _, err := tx.Exec(ctx, insert, rec.Date, rec.ItemID, rec.QuantityUsed,
			rec.WasteAmount, rec.Notes, rec.CalculationMethod, rec.ConfidenceLevel); err != nil {
			return fmt.Errorf("failed to insert usage record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit usage replacement: %w", err)
	}
	return nil
}
