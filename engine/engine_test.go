package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestock/models"
)

func testItems() []models.InventoryItem {
	return []models.InventoryItem{
		{ItemID: "milk", Name: "Whole Milk", Unit: "liters", CurrentStock: 99, MinThreshold: 5, MaxCapacity: 50, CostPerUnit: 2, SupplierID: "sup1"},
		{ItemID: "beans", Name: "Coffee Beans", Unit: "kg", CurrentStock: 99, MinThreshold: 3, MaxCapacity: 20, CostPerUnit: 15, SupplierID: "sup1"},
	}
}

func TestNewRefreshesStockFromLatestSnapshot(t *testing.T) {
	snapshots := []models.InventorySnapshot{
		snap(2, "milk", 10, 0),
		snap(3, "milk", 8, 0),
	}
	eng := New(testItems(), nil, snapshots, nil, nil)

	item, err := eng.Item("milk")
	require.NoError(t, err)
	assert.Equal(t, 8.0, item.CurrentStock)

	// No snapshots for beans: the catalog value stands.
	beans, err := eng.Item("beans")
	require.NoError(t, err)
	assert.Equal(t, 99.0, beans.CurrentStock)
}

func TestItemsStableOrder(t *testing.T) {
	eng := New(testItems(), nil, nil, nil, nil)
	items := eng.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "beans", items[0].ItemID)
	assert.Equal(t, "milk", items[1].ItemID)
}

func TestAddSnapshotRefreshesStock(t *testing.T) {
	eng := New(testItems(), nil, nil, nil, nil)
	eng.AddSnapshot(snap(3, "milk", 7, 0))

	item, err := eng.Item("milk")
	require.NoError(t, err)
	assert.Equal(t, 7.0, item.CurrentStock)

	// A back-dated snapshot never rolls current stock backwards.
	eng.AddSnapshot(snap(2, "milk", 40, 0))
	item, _ = eng.Item("milk")
	assert.Equal(t, 7.0, item.CurrentStock)
}

func TestAlerts(t *testing.T) {
	snapshots := []models.InventorySnapshot{
		snap(3, "milk", 0, 0),
		snap(3, "beans", 3, 0),
	}
	eng := New(testItems(), nil, snapshots, nil, nil)

	alerts := eng.Alerts()
	require.Len(t, alerts, 2)

	byItem := map[string]models.InventoryAlert{}
	for _, alert := range alerts {
		byItem[alert.ItemID] = alert
	}
	assert.Equal(t, "critical", byItem["milk"].Severity)
	assert.Equal(t, "warning", byItem["beans"].Severity)
	assert.Contains(t, byItem["beans"].Message, "Coffee Beans: 3.0 kg remaining (min: 3.0)")
}

func TestAlertsNoneAboveThreshold(t *testing.T) {
	snapshots := []models.InventorySnapshot{
		snap(3, "milk", 40, 0),
		snap(3, "beans", 15, 0),
	}
	eng := New(testItems(), nil, snapshots, nil, nil)
	assert.Empty(t, eng.Alerts())
}

func TestStatusSummary(t *testing.T) {
	snapshots := []models.InventorySnapshot{
		snap(3, "milk", 2, 0),
		snap(3, "beans", 15, 0),
	}
	eng := New(testItems(), nil, snapshots, nil, nil)

	status := eng.Status(day(4))
	assert.Equal(t, 2, status.TotalItems)
	assert.Equal(t, 1, status.ItemsBelowThreshold)
	assert.Equal(t, 1, status.CriticalItems)
	assert.Equal(t, 2, status.RecommendationsCount)
}

func TestMergeUsageHistory(t *testing.T) {
	snapshots := []models.InventorySnapshot{
		snap(2, "milk", 10, 0),
		snap(3, "milk", 8, 0),
	}
	eng := New(testItems(), nil, snapshots, nil, nil)

	existing := []models.UsageRecord{
		{Date: day(1), ItemID: "milk", QuantityUsed: 5, CalculationMethod: "manual", Notes: "hand count"},
		{Date: day(3), ItemID: "milk", QuantityUsed: 42, CalculationMethod: models.CalculationMethodInventoryDiff},
	}

	merged := eng.MergeUsageHistory(existing)
	require.Len(t, merged, 2)

	// The manual row survives verbatim and sorts first by date.
	assert.Equal(t, "manual", merged[0].CalculationMethod)
	assert.Equal(t, 5.0, merged[0].QuantityUsed)
	assert.Equal(t, "hand count", merged[0].Notes)

	// The stale auto-calculated row is replaced by the fresh reconciliation.
	fresh := merged[1]
	assert.Equal(t, models.CalculationMethodInventoryDiff, fresh.CalculationMethod)
	assert.Equal(t, 2.0, fresh.QuantityUsed)
	assert.Equal(t, models.ConfidenceHigh, fresh.ConfidenceLevel)
	assert.Contains(t, fresh.Notes, "Auto-calculated (high confidence)")
}

func TestRunCycle(t *testing.T) {
	snapshots := []models.InventorySnapshot{
		snap(2, "milk", 20, 0),
		snap(3, "milk", 17, 0),
		snap(4, "milk", 15, 0),
		snap(5, "milk", 12, 0),
	}
	eng := New(testItems(), nil, snapshots, nil, nil)

	result := eng.RunCycle(30, day(6))
	assert.Len(t, result.Usage, 3)
	assert.True(t, result.Audit.Clean)
	assert.Contains(t, result.Patterns, "milk")
	assert.Len(t, result.Forecasts, 2)
	assert.Len(t, result.Recommendations, 2)
}

func TestAuditRecordsExternalLedger(t *testing.T) {
	eng := New(testItems(), nil, []models.InventorySnapshot{snap(3, "milk", 7, 0)}, nil, nil)
	eng.SetAuditTolerance(0.01)

	report := eng.AuditRecords([]models.ConsumptionRecord{
		{Date: day(3), ItemID: "milk", PreviousStock: 10, Consumption: 2, StockBeforeDelivery: 8},
	})
	assert.False(t, report.Clean)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.IssueCalculationError, report.Issues[0].IssueType)
}
