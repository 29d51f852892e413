package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"cafestock/models"
	"cafestock/utils"
)

// Engine runs one full reconcile → audit → analyze → forecast → recommend
// cycle over a single consistent load of the source collections. It holds no
// ambient global state: callers construct a fresh engine from fully loaded
// data and swap it in atomically.
type Engine struct {
	items     map[string]models.InventoryItem
	itemIDs   []string
	suppliers map[string]models.Supplier
	snapshots *SnapshotStore
	ledger    *DeliveryLedger
	orders    []models.Order
	auditor   *Auditor
}

// New builds an engine from plain record slices. Missing collections are
// treated as empty, never as errors. Each item's current stock is refreshed
// from its latest snapshot.
func New(items []models.InventoryItem, suppliers []models.Supplier, snapshots []models.InventorySnapshot, deliveries []models.DeliveryRecord, orders []models.Order) *Engine {
	e := &Engine{
		items:     make(map[string]models.InventoryItem, len(items)),
		suppliers: make(map[string]models.Supplier, len(suppliers)),
		snapshots: NewSnapshotStore(snapshots),
		ledger:    NewDeliveryLedger(deliveries),
		orders:    orders,
		auditor:   NewAuditor(DefaultAuditTolerance),
	}
	e.ledger.AddOrders(orders)

	for _, item := range items {
		e.items[item.ItemID] = item
		e.itemIDs = append(e.itemIDs, item.ItemID)
	}
	sort.Strings(e.itemIDs)

	for id, item := range e.items {
		if latest, ok := e.snapshots.Latest(id); ok {
			item.CurrentStock = latest.StockLevel
			e.items[id] = item
		}
	}
	return e
}

// SetAuditTolerance overrides the auditor's mismatch tolerance.
func (e *Engine) SetAuditTolerance(tolerance float64) {
	e.auditor = NewAuditor(tolerance)
}

// Item returns a catalog item by ID.
func (e *Engine) Item(itemID string) (models.InventoryItem, error) {
	item, ok := e.items[itemID]
	if !ok {
		return models.InventoryItem{}, ErrItemNotFound{ItemID: itemID}
	}
	return item, nil
}

// Items returns the catalog in stable item-ID order.
func (e *Engine) Items() []models.InventoryItem {
	items := make([]models.InventoryItem, 0, len(e.itemIDs))
	for _, id := range e.itemIDs {
		items = append(items, e.items[id])
	}
	return items
}

// AddSnapshot records (or replaces) a stock observation and refreshes the
// item's current stock if this is now its latest snapshot.
func (e *Engine) AddSnapshot(snap models.InventorySnapshot) {
	e.snapshots.Upsert(snap)
	if item, ok := e.items[snap.ItemID]; ok {
		if latest, found := e.snapshots.Latest(snap.ItemID); found {
			item.CurrentStock = latest.StockLevel
			e.items[snap.ItemID] = item
		}
	}
}

// AddDelivery records a delivery in the ledger.
func (e *Engine) AddDelivery(rec models.DeliveryRecord) {
	e.ledger.Add(rec)
}

// Reconcile derives per-day usage for every item with snapshot history.
func (e *Engine) Reconcile() []models.CalculatedUsage {
	var all []models.CalculatedUsage
	for _, itemID := range e.snapshots.ItemIDs() {
		maxCapacity := math.Inf(1)
		if item, ok := e.items[itemID]; ok {
			maxCapacity = item.MaxCapacity
		}
		all = append(all, ReconcileItem(itemID, e.snapshots.History(itemID), e.ledger, maxCapacity)...)
	}
	return all
}

// ConsumptionLedger derives the forward-form consumption rows the auditor
// validates.
func (e *Engine) ConsumptionLedger() []models.ConsumptionRecord {
	return DeriveConsumptionLedger(e.snapshots, e.ledger)
}

// Audit cross-checks the derived consumption ledger against snapshots and
// deliveries.
func (e *Engine) Audit() models.AuditReport {
	return e.auditor.Run(e.ConsumptionLedger(), e.snapshots, e.ledger)
}

// AuditRecords audits an externally supplied consumption ledger (e.g. rows
// computed directly by an upload path) against the live snapshot and
// delivery data.
func (e *Engine) AuditRecords(consumption []models.ConsumptionRecord) models.AuditReport {
	return e.auditor.Run(consumption, e.snapshots, e.ledger)
}

// Patterns analyzes the reconciled history into per-item usage patterns.
func (e *Engine) Patterns(now time.Time) map[string]models.UsagePattern {
	return AnalyzeUsagePatterns(e.Reconcile(), now)
}

// Forecaster prepares a forecaster over fresh patterns and history.
func (e *Engine) Forecaster(now time.Time) *Forecaster {
	history := e.Reconcile()
	return NewForecaster(AnalyzeUsagePatterns(history, now), history)
}

// PredictUsage projects cumulative usage for one catalog item. Unknown item
// IDs are caller misuse and return an error.
func (e *Engine) PredictUsage(itemID string, daysAhead int, from time.Time) (float64, error) {
	if _, ok := e.items[itemID]; !ok {
		return 0, ErrItemNotFound{ItemID: itemID}
	}
	return e.Forecaster(from).PredictUsage(itemID, daysAhead, from), nil
}

// Forecasts builds the depletion outlook for every catalog item.
func (e *Engine) Forecasts(horizonDays int, from time.Time) []models.ItemForecast {
	forecaster := e.Forecaster(from)
	forecasts := make([]models.ItemForecast, 0, len(e.itemIDs))
	for _, id := range e.itemIDs {
		forecasts = append(forecasts, forecaster.Forecast(e.items[id], horizonDays, from))
	}
	return forecasts
}

// Recommendations generates the canonical, urgency-sorted purchase
// recommendation list.
func (e *Engine) Recommendations(from time.Time) []models.OrderRecommendation {
	recommender := NewRecommender(e.items, e.suppliers, e.orders, e.Forecaster(from))
	return recommender.Generate(from)
}

// Alerts returns immediate low-stock alerts; stock at zero is critical.
func (e *Engine) Alerts() []models.InventoryAlert {
	var alerts []models.InventoryAlert
	for _, id := range e.itemIDs {
		item := e.items[id]
		if item.CurrentStock > item.MinThreshold {
			continue
		}
		severity := "warning"
		if item.CurrentStock == 0 {
			severity = "critical"
		}
		alerts = append(alerts, models.InventoryAlert{
			Type:         "low_stock",
			Severity:     severity,
			ItemID:       id,
			ItemName:     item.Name,
			CurrentStock: item.CurrentStock,
			MinThreshold: item.MinThreshold,
			Message: fmt.Sprintf("%s: %.1f %s remaining (min: %.1f)",
				item.Name, item.CurrentStock, item.Unit, item.MinThreshold),
		})
	}
	return alerts
}

// Status summarizes the current inventory state for dashboards.
func (e *Engine) Status(now time.Time) models.StatusSummary {
	belowThreshold := 0
	for _, id := range e.itemIDs {
		item := e.items[id]
		if item.CurrentStock <= item.MinThreshold {
			belowThreshold++
		}
	}

	recommendations := e.Recommendations(now)
	critical := 0
	for _, rec := range recommendations {
		if rec.UrgencyLevel == models.UrgencyCritical {
			critical++
		}
	}

	return models.StatusSummary{
		TotalItems:           len(e.itemIDs),
		ItemsBelowThreshold:  belowThreshold,
		CriticalItems:        critical,
		RecommendationsCount: len(recommendations),
		LastUpdated:          now,
	}
}

// MergeUsageHistory folds freshly reconciled usage into a persisted usage
// history: previously auto-calculated rows are replaced, hand-entered rows
// are preserved verbatim.
func (e *Engine) MergeUsageHistory(existing []models.UsageRecord) []models.UsageRecord {
	merged := make([]models.UsageRecord, 0, len(existing))
	for _, rec := range existing {
		if rec.CalculationMethod != models.CalculationMethodInventoryDiff {
			merged = append(merged, rec)
		}
	}

	for _, usage := range e.Reconcile() {
		merged = append(merged, models.UsageRecord{
			Date:              usage.Date,
			ItemID:            usage.ItemID,
			QuantityUsed:      usage.CalculatedUsage,
			WasteAmount:       usage.WasteAmount,
			Notes:             fmt.Sprintf("Auto-calculated (%s confidence): %s", usage.ConfidenceLevel, usage.Notes),
			CalculationMethod: models.CalculationMethodInventoryDiff,
			ConfidenceLevel:   usage.ConfidenceLevel,
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		ki := utils.DateKey(merged[i].Date) + merged[i].ItemID
		kj := utils.DateKey(merged[j].Date) + merged[j].ItemID
		return ki < kj
	})
	return merged
}

// CycleResult bundles the outputs of one full engine cycle.
type CycleResult struct {
	Usage           []models.CalculatedUsage       `json:"usage"`
	Audit           models.AuditReport             `json:"audit"`
	Patterns        map[string]models.UsagePattern `json:"patterns"`
	Forecasts       []models.ItemForecast          `json:"forecasts"`
	Recommendations []models.OrderRecommendation   `json:"recommendations"`
}

// RunCycle executes reconcile → audit → analyze → forecast → recommend
// against the engine's loaded data.
func (e *Engine) RunCycle(horizonDays int, now time.Time) CycleResult {
	return CycleResult{
		Usage:           e.Reconcile(),
		Audit:           e.Audit(),
		Patterns:        e.Patterns(now),
		Forecasts:       e.Forecasts(horizonDays, now),
		Recommendations: e.Recommendations(now),
	}
}
