package models

import (
	"time"
)

// --- Confidence / Urgency / Severity Labels ---

// Confidence levels attached to derived usage values.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Urgency levels for order recommendations, in precedence order.
const (
	UrgencyCritical = "critical"
	UrgencyWarning  = "warning"
	UrgencyNormal   = "normal"
	UrgencyStockUp  = "stock_up"
)

// Audit issue severities.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeveritySuccess  = "Success"
)

// Audit issue types.
const (
	IssueCalculationError    = "calculation_error"
	IssueMissingStockRecord  = "missing_stock_record"
	IssueNegativeValue       = "negative_value"
	IssueMissingDelivery     = "missing_delivery"
	IssueDataValidationError = "data_validation_error"
)

// --- Core Models ---

// InventoryItem represents one consumable tracked by the system.
type InventoryItem struct {
	ItemID              string  `json:"item_id"`
	Name                string  `json:"name"`
	Category            string  `json:"category"`
	Unit                string  `json:"unit"`
	CurrentStock        float64 `json:"current_stock"`
	MinThreshold        float64 `json:"min_threshold"`
	MaxCapacity         float64 `json:"max_capacity"`
	CostPerUnit         float64 `json:"cost_per_unit"`
	SupplierID          string  `json:"supplier_id"`
	LeadTimeDays        int     `json:"lead_time_days"`
	ShelfLifeDays       int     `json:"shelf_life_days"`
	StorageRequirements *string `json:"storage_requirements,omitempty"`
}

// Supplier is read-only reference data for recommendations.
type Supplier struct {
	SupplierID        string  `json:"supplier_id"`
	Name              string  `json:"name"`
	ContactName       *string `json:"contact_name,omitempty"`
	ContactEmail      *string `json:"contact_email,omitempty"`
	ContactPhone      *string `json:"contact_phone,omitempty"`
	LeadTimeDays      int     `json:"lead_time_days"`
	MinimumOrderValue float64 `json:"minimum_order_value"`
	PaymentTerms      string  `json:"payment_terms"`
	ReliabilityRating int     `json:"reliability_rating"`
	Specialty         *string `json:"specialty,omitempty"`
}

// InventorySnapshot is a dated observation of on-hand stock for one item.
// A later write for the same (date, item) replaces the earlier one.
type InventorySnapshot struct {
	Date               time.Time `json:"date"`
	ItemID             string    `json:"item_id"`
	StockLevel         float64   `json:"stock_level"`
	WasteAmount        float64   `json:"waste_amount"`
	DeliveriesReceived float64   `json:"deliveries_received"`
	Notes              string    `json:"notes,omitempty"`
}

// DeliveryRecord is one delivery sourced from purchase/order history.
// Multiple deliveries for the same item and date are summed by the ledger.
type DeliveryRecord struct {
	Date     time.Time `json:"date"`
	ItemID   string    `json:"item_id"`
	Quantity float64   `json:"quantity"`
	UnitCost float64   `json:"unit_cost"`
	Notes    string    `json:"notes,omitempty"`
}

// Order is a purchase order header with nested line items. Delivered orders
// feed the delivery ledger; all orders feed reorder-cadence statistics.
type Order struct {
	OrderID      string          `json:"order_id"`
	SupplierID   string          `json:"supplier_id"`
	OrderDate    time.Time       `json:"order_date"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Status       string          `json:"status"`
	LineItems    []OrderLineItem `json:"line_items"`
}

// OrderLineItem is an individual item within an Order.
type OrderLineItem struct {
	ItemID           string  `json:"item_id"`
	QuantityOrdered  float64 `json:"quantity_ordered"`
	QuantityReceived float64 `json:"quantity_received"`
}

// OrderStatusDelivered marks orders whose line items count as deliveries.
const OrderStatusDelivered = "delivered"

// --- Derived Models ---

// CalculatedUsage is consumption inferred between two consecutive snapshots.
// It is a pure function of snapshots and deliveries, never edited directly.
type CalculatedUsage struct {
	Date            time.Time `json:"date"`
	ItemID          string    `json:"item_id"`
	CalculatedUsage float64   `json:"calculated_usage"`
	WasteAmount     float64   `json:"waste_amount"`
	SalesInferred   bool      `json:"sales_inferred"`
	ConfidenceLevel string    `json:"confidence_level"`
	Notes           string    `json:"notes"`
}

// ConsumptionRecord is one row of the derived consumption ledger, carrying
// the forward-form fields the auditor validates against stock and deliveries.
type ConsumptionRecord struct {
	Date                time.Time `json:"date"`
	ItemID              string    `json:"item_id"`
	Consumption         float64   `json:"consumption"`
	StockBeforeDelivery float64   `json:"stock_before_delivery"`
	DeliveryAmount      float64   `json:"delivery_amount"`
	PreviousStock       float64   `json:"previous_stock"`
	Reasoning           string    `json:"reasoning"`
}

// UsageRecord is a persisted usage-history row. Auto-calculated rows are
// replaced on every recompute; hand-entered rows are preserved verbatim.
type UsageRecord struct {
	Date              time.Time `json:"date"`
	ItemID            string    `json:"item_id"`
	QuantityUsed      float64   `json:"quantity_used"`
	WasteAmount       float64   `json:"waste_amount"`
	Notes             string    `json:"notes"`
	CalculationMethod string    `json:"calculation_method"`
	ConfidenceLevel   string    `json:"confidence_level,omitempty"`
}

// CalculationMethodInventoryDiff tags usage rows produced by reconciliation.
const CalculationMethodInventoryDiff = "inventory_difference"

// UsagePattern captures per-weekday averages and trend for one item.
// All seven weekdays are always populated.
type UsagePattern struct {
	ItemID             string             `json:"item_id"`
	DailyAverages      map[string]float64 `json:"daily_averages"`
	TrendFactor        float64            `json:"trend_factor"`
	SeasonalMultiplier float64            `json:"seasonal_multiplier"`
	Volatility         float64            `json:"volatility"`
	LastUpdated        time.Time          `json:"last_updated"`
}

// ItemForecast is the projected depletion outlook for one item.
type ItemForecast struct {
	ItemID         string    `json:"item_id"`
	ItemName       string    `json:"item_name"`
	Unit           string    `json:"unit"`
	CurrentStock   float64   `json:"current_stock"`
	AvgDailyUsage  float64   `json:"avg_daily_usage"`
	PredictedUsage float64   `json:"predicted_usage"`
	HorizonDays    int       `json:"horizon_days"`
	DaysUntilEmpty float64   `json:"days_until_empty"`
	RunoutDate     string    `json:"runout_date"`
	DataPointsUsed int       `json:"data_points_used"`
	Confidence     string    `json:"confidence"`
	LastUpdated    time.Time `json:"last_updated"`
}

// OrderRecommendation is one purchase recommendation, regenerated fresh on
// every forecast cycle.
type OrderRecommendation struct {
	ItemID              string  `json:"item_id"`
	ItemName            string  `json:"item_name"`
	CurrentStock        float64 `json:"current_stock"`
	ProjectedUsage      float64 `json:"projected_usage"`
	DaysUntilReorder    int     `json:"days_until_reorder"`
	RecommendedQuantity float64 `json:"recommended_quantity"`
	UrgencyLevel        string  `json:"urgency_level"`
	Reasoning           string  `json:"reasoning"`
	Supplier            string  `json:"supplier"`
	EstimatedCost       float64 `json:"estimated_cost"`
}

// AuditIssue is a single inconsistency found by the consistency auditor.
type AuditIssue struct {
	IssueType     string   `json:"issue_type"`
	Severity      string   `json:"severity"`
	Date          string   `json:"date"`
	ItemID        string   `json:"item_id"`
	Description   string   `json:"description"`
	Field         string   `json:"field,omitempty"`
	Value         *float64 `json:"value,omitempty"`
	ExpectedValue *float64 `json:"expected_value,omitempty"`
	ActualValue   *float64 `json:"actual_value,omitempty"`
	Difference    *float64 `json:"difference,omitempty"`
	Note          string   `json:"note,omitempty"`
}

// AuditReport is the full result of one audit run. Previous results are
// fully replaced on each run.
type AuditReport struct {
	RunID          string         `json:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Issues         []AuditIssue   `json:"issues"`
	SeverityCounts map[string]int `json:"severity_counts"`
	TypeCounts     map[string]int `json:"type_counts"`
	Clean          bool           `json:"clean"`
}

// InventoryAlert is an immediate low-stock alert.
type InventoryAlert struct {
	Type         string  `json:"type"`
	Severity     string  `json:"severity"`
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name"`
	CurrentStock float64 `json:"current_stock"`
	MinThreshold float64 `json:"min_threshold"`
	Message      string  `json:"message"`
}

// StatusSummary is the dashboard overview of the current inventory state.
type StatusSummary struct {
	TotalItems           int       `json:"total_items"`
	ItemsBelowThreshold  int       `json:"items_below_threshold"`
	CriticalItems        int       `json:"critical_items"`
	RecommendationsCount int       `json:"recommendations_count"`
	LastUpdated          time.Time `json:"last_updated"`
}
