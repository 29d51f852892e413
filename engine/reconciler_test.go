package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestock/models"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func snap(d int, itemID string, stock, waste float64) models.InventorySnapshot {
	return models.InventorySnapshot{Date: day(d), ItemID: itemID, StockLevel: stock, WasteAmount: waste}
}

func TestReconcileItemBasicDepletion(t *testing.T) {
	history := []models.InventorySnapshot{
		snap(2, "coffee_beans", 10, 0),
		snap(3, "coffee_beans", 8, 0),
	}
	ledger := NewDeliveryLedger(nil)

	usage := ReconcileItem("coffee_beans", history, ledger, 50)
	require.Len(t, usage, 1)
	assert.Equal(t, 2.0, usage[0].CalculatedUsage)
	assert.Equal(t, models.ConfidenceHigh, usage[0].ConfidenceLevel)
	assert.Equal(t, "Calculated from inventory difference", usage[0].Notes)
	assert.True(t, usage[0].SalesInferred)
}

func TestReconcileItemSingleSnapshotProducesNothing(t *testing.T) {
	usage := ReconcileItem("milk", []models.InventorySnapshot{snap(2, "milk", 10, 0)}, NewDeliveryLedger(nil), 50)
	assert.Empty(t, usage)
}

func TestReconcileItemIncludesDeliveries(t *testing.T) {
	history := []models.InventorySnapshot{
		snap(2, "milk", 5, 0),
		snap(3, "milk", 8, 0),
	}
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "milk", Quantity: 10},
	})

	usage := ReconcileItem("milk", history, ledger, 50)
	require.Len(t, usage, 1)
	assert.Equal(t, 7.0, usage[0].CalculatedUsage)
	assert.Equal(t, models.ConfidenceHigh, usage[0].ConfidenceLevel)
	assert.Contains(t, usage[0].Notes, "Includes 10.0 units delivered")
}

func TestReconcileItemExcludesWaste(t *testing.T) {
	history := []models.InventorySnapshot{
		snap(2, "milk", 10, 0),
		snap(3, "milk", 6, 1),
	}

	usage := ReconcileItem("milk", history, NewDeliveryLedger(nil), 50)
	require.Len(t, usage, 1)
	assert.Equal(t, 3.0, usage[0].CalculatedUsage)
	assert.Equal(t, 1.0, usage[0].WasteAmount)
	assert.Contains(t, usage[0].Notes, "Excludes 1.0 units waste/spoilage")
}

func TestReconcileItemImpliedDelivery(t *testing.T) {
	// Stock rose with nothing in the ledger: someone received a delivery
	// without recording it.
	history := []models.InventorySnapshot{
		snap(2, "cups", 7, 0),
		snap(3, "cups", 15, 0),
	}

	usage := ReconcileItem("cups", history, NewDeliveryLedger(nil), 100)
	require.Len(t, usage, 1)
	assert.Equal(t, 0.0, usage[0].CalculatedUsage)
	assert.Equal(t, models.ConfidenceLow, usage[0].ConfidenceLevel)
	assert.Contains(t, usage[0].Notes, "implied delivery of 8.0 units not in ledger")
}

func TestReconcileItemNegativeWithDeliveryPresent(t *testing.T) {
	// Deliveries are recorded but the books still don't balance.
	history := []models.InventorySnapshot{
		snap(2, "cups", 7, 0),
		snap(3, "cups", 20, 0),
	}
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "cups", Quantity: 5},
	})

	usage := ReconcileItem("cups", history, ledger, 100)
	require.Len(t, usage, 1)
	assert.Equal(t, 0.0, usage[0].CalculatedUsage)
	assert.Equal(t, models.ConfidenceLow, usage[0].ConfidenceLevel)
	assert.Contains(t, usage[0].Notes, "check inventory counts")
}

func TestReconcileItemHighUsageDowngradesConfidence(t *testing.T) {
	history := []models.InventorySnapshot{
		snap(2, "syrup", 10, 0),
		snap(3, "syrup", 1, 0),
	}

	usage := ReconcileItem("syrup", history, NewDeliveryLedger(nil), 10)
	require.Len(t, usage, 1)
	assert.Equal(t, 9.0, usage[0].CalculatedUsage)
	assert.Equal(t, models.ConfidenceMedium, usage[0].ConfidenceLevel)
	assert.Contains(t, usage[0].Notes, "High usage detected")
}

func TestReconcileItemUnknownCapacityNeverDowngrades(t *testing.T) {
	history := []models.InventorySnapshot{
		snap(2, "syrup", 1000, 0),
		snap(3, "syrup", 0, 0),
	}

	usage := ReconcileItem("syrup", history, NewDeliveryLedger(nil), math.Inf(1))
	require.Len(t, usage, 1)
	assert.Equal(t, models.ConfidenceHigh, usage[0].ConfidenceLevel)
}

func TestReconcileItemSumsDeliveriesInInterval(t *testing.T) {
	// Snapshots three days apart: deliveries strictly after the first day and
	// up to the second are summed; a delivery on the first day is already in
	// that snapshot's stock level and must not be counted again.
	history := []models.InventorySnapshot{
		snap(2, "beans", 10, 0),
		snap(5, "beans", 12, 0),
	}
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(2), ItemID: "beans", Quantity: 99}, // excluded: lower bound
		{Date: day(3), ItemID: "beans", Quantity: 4},
		{Date: day(5), ItemID: "beans", Quantity: 3}, // included: upper bound
	})

	usage := ReconcileItem("beans", history, ledger, 100)
	require.Len(t, usage, 1)
	assert.Equal(t, 5.0, usage[0].CalculatedUsage) // 10 + 7 - 12
}

func TestProjectStockInvertsReconciliation(t *testing.T) {
	history := []models.InventorySnapshot{
		snap(2, "beans", 20, 0),
		snap(3, "beans", 15, 0),
		snap(4, "beans", 18, 0),
	}
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(4), ItemID: "beans", Quantity: 10},
	})

	usage := ReconcileItem("beans", history, ledger, 100)
	require.Len(t, usage, 2)

	for i, u := range usage {
		prev := history[i]
		curr := history[i+1]
		delivery := ledger.TotalBetween("beans", prev.Date, curr.Date)
		projected := ProjectStock(prev.StockLevel, u.CalculatedUsage, delivery)
		assert.InDelta(t, curr.StockLevel, projected, 1e-6)
	}
}

func TestDeriveConsumptionLedger(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(2, "milk", 10, 0),
		snap(3, "milk", 12, 0),
		snap(2, "beans", 8, 0),
		snap(3, "beans", 5, 0),
	})
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "milk", Quantity: 6},
	})

	records := DeriveConsumptionLedger(store, ledger)
	require.Len(t, records, 2)

	// Item IDs come back sorted, so beans precedes milk.
	beans := records[0]
	assert.Equal(t, "beans", beans.ItemID)
	assert.Equal(t, 3.0, beans.Consumption)
	assert.Equal(t, 0.0, beans.DeliveryAmount)
	assert.Equal(t, 8.0, beans.PreviousStock)
	assert.Equal(t, "Started with 8.0, no deliveries, ended with 5.0", beans.Reasoning)

	milk := records[1]
	assert.Equal(t, "milk", milk.ItemID)
	assert.Equal(t, 4.0, milk.Consumption) // 10 + 6 - 12
	assert.Equal(t, 6.0, milk.DeliveryAmount)
	assert.Equal(t, 6.0, milk.StockBeforeDelivery) // 12 - 6
	assert.Equal(t, "Started with 10.0, received 6.0 delivery, ended with 12.0", milk.Reasoning)
}

func TestDeriveConsumptionLedgerImpliedDelivery(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(2, "cups", 7, 0),
		snap(3, "cups", 15, 0),
	})

	records := DeriveConsumptionLedger(store, NewDeliveryLedger(nil))
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].Consumption)
	assert.Equal(t, 8.0, records[0].DeliveryAmount) // whole increase treated as unrecorded delivery
	assert.Equal(t, 7.0, records[0].StockBeforeDelivery)
}
