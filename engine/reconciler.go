package engine

import (
	"fmt"
	"math"
	"strings"

	"cafestock/models"
)

// highUsageCapacityRatio flags single-day usage above this share of an
// item's max capacity as implausible.
const highUsageCapacityRatio = 0.8

// ReconcileItem derives one CalculatedUsage per consecutive snapshot pair in
// an item's chronological history. The first snapshot has no prior baseline
// and produces no output. maxCapacity bounds the plausibility check; pass
// +Inf when the item's capacity is unknown.
func ReconcileItem(itemID string, history []models.InventorySnapshot, ledger *DeliveryLedger, maxCapacity float64) []models.CalculatedUsage {
	if maxCapacity <= 0 {
		maxCapacity = math.Inf(1)
	}

	usage := make([]models.CalculatedUsage, 0, len(history))
	for i := 1; i < len(history); i++ {
		prev := history[i-1]
		curr := history[i]

		deliveries := ledger.TotalBetween(itemID, prev.Date, curr.Date)

		// usage = what we started with + what we received
		//       - what we have now - what we wasted
		calculated := prev.StockLevel + deliveries - curr.StockLevel - curr.WasteAmount

		confidence := models.ConfidenceHigh
		var notes []string

		if calculated < 0 {
			confidence = models.ConfidenceLow
			if deliveries == 0 && curr.StockLevel > prev.StockLevel {
				implied := curr.StockLevel - prev.StockLevel
				notes = append(notes, fmt.Sprintf("Negative usage calculated - implied delivery of %.1f units not in ledger", implied))
			} else {
				notes = append(notes, "Negative usage calculated - check inventory counts")
			}
			calculated = 0
		}

		if deliveries > 0 {
			notes = append(notes, fmt.Sprintf("Includes %.1f units delivered", deliveries))
		}
		if curr.WasteAmount > 0 {
			notes = append(notes, fmt.Sprintf("Excludes %.1f units waste/spoilage", curr.WasteAmount))
		}

		if confidence == models.ConfidenceHigh && calculated > maxCapacity*highUsageCapacityRatio {
			confidence = models.ConfidenceMedium
			notes = append(notes, "High usage detected - please verify")
		}

		note := "Calculated from inventory difference"
		if len(notes) > 0 {
			note = strings.Join(notes, "; ")
		}

		usage = append(usage, models.CalculatedUsage{
			Date:            curr.Date,
			ItemID:          itemID,
			CalculatedUsage: calculated,
			WasteAmount:     curr.WasteAmount,
			SalesInferred:   true, // no direct sales data, usage is inferred
			ConfidenceLevel: confidence,
			Notes:           note,
		})
	}
	return usage
}

// ProjectStock is the forward form of the reconciliation formula: starting
// stock minus consumption plus deliveries. It is the algebraic inverse of
// the backward differencing in ReconcileItem (for zero waste) and is what
// the auditor recomputes when validating a consumption ledger.
func ProjectStock(previousStock, consumption, delivery float64) float64 {
	return previousStock - consumption + delivery
}

// DeriveConsumptionLedger produces forward-form consumption rows from the
// snapshot history and delivery ledger, one per consecutive snapshot pair.
// This is the shape upload-driven ingestion writes directly; deriving it
// here keeps both ingestion paths feeding identical audit input.
func DeriveConsumptionLedger(store *SnapshotStore, ledger *DeliveryLedger) []models.ConsumptionRecord {
	var records []models.ConsumptionRecord
	for _, itemID := range store.ItemIDs() {
		history := store.History(itemID)
		for i := 1; i < len(history); i++ {
			prev := history[i-1]
			curr := history[i]

			delivery := ledger.TotalBetween(itemID, prev.Date, curr.Date)
			consumption := prev.StockLevel + delivery - curr.StockLevel

			if consumption < 0 {
				if delivery == 0 {
					// Stock rose with nothing in the ledger: treat the whole
					// increase as an unrecorded delivery.
					delivery = curr.StockLevel - prev.StockLevel
				}
				consumption = 0
			}

			stockBefore := curr.StockLevel - delivery
			if stockBefore < 0 {
				stockBefore = 0
			}

			var reasoning string
			if delivery > 0 {
				reasoning = fmt.Sprintf("Started with %.1f, received %.1f delivery, ended with %.1f", prev.StockLevel, delivery, curr.StockLevel)
			} else {
				reasoning = fmt.Sprintf("Started with %.1f, no deliveries, ended with %.1f", prev.StockLevel, curr.StockLevel)
			}

			records = append(records, models.ConsumptionRecord{
				Date:                curr.Date,
				ItemID:              itemID,
				Consumption:         consumption,
				StockBeforeDelivery: stockBefore,
				DeliveryAmount:      delivery,
				PreviousStock:       prev.StockLevel,
				Reasoning:           reasoning,
			})
		}
	}
	return records
}
