package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"cafestock/models"
)

// defaultCadenceDays is assumed when fewer than two past orders exist for
// an item.
const defaultCadenceDays = 14

// Critical-restock target as a share of max capacity.
const criticalRestockRatio = 0.8

// stockUpQuantityRatio scales the discretionary top-up quantity.
const stockUpQuantityRatio = 0.7

var urgencyRank = map[string]int{
	models.UrgencyCritical: 1,
	models.UrgencyWarning:  2,
	models.UrgencyNormal:   3,
	models.UrgencyStockUp:  4,
}

// ReorderCadence derives an item's historical reorder rhythm from order
// history: the average interval between orders and the average quantity
// ordered. With fewer than two past orders it defaults to 14 days and zero
// quantity.
func ReorderCadence(orders []models.Order, itemID string) (int, float64) {
	type pastOrder struct {
		date     time.Time
		quantity float64
	}
	var past []pastOrder
	for _, order := range orders {
		for _, line := range order.LineItems {
			if line.ItemID == itemID {
				past = append(past, pastOrder{date: order.OrderDate, quantity: line.QuantityOrdered})
			}
		}
	}
	if len(past) < 2 {
		return defaultCadenceDays, 0
	}

	sort.Slice(past, func(i, j int) bool { return past[i].date.Before(past[j].date) })

	var intervalSum float64
	for i := 1; i < len(past); i++ {
		intervalSum += past[i].date.Sub(past[i-1].date).Hours() / 24
	}
	avgInterval := int(intervalSum / float64(len(past)-1))
	if avgInterval < 1 {
		avgInterval = 1
	}

	var quantitySum float64
	for _, p := range past {
		quantitySum += p.quantity
	}
	return avgInterval, quantitySum / float64(len(past))
}

// Recommender turns forecasts, thresholds, capacities, lead times and reorder
// cadence into urgency-tagged purchase recommendations.
type Recommender struct {
	items      map[string]models.InventoryItem
	itemIDs    []string
	suppliers  map[string]models.Supplier
	orders     []models.Order
	forecaster *Forecaster
}

// NewRecommender builds a recommender over the item catalog, supplier
// reference data, order history and a prepared forecaster.
func NewRecommender(items map[string]models.InventoryItem, suppliers map[string]models.Supplier, orders []models.Order, forecaster *Forecaster) *Recommender {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Recommender{
		items:      items,
		itemIDs:    ids,
		suppliers:  suppliers,
		orders:     orders,
		forecaster: forecaster,
	}
}

// Generate produces one recommendation per catalog item, deterministic for
// identical inputs. Items whose clamped quantity is zero are retained with
// explicit "no action needed" reasoning so every run covers the full catalog.
func (r *Recommender) Generate(from time.Time) []models.OrderRecommendation {
	recommendations := make([]models.OrderRecommendation, 0, len(r.itemIDs))

	for _, itemID := range r.itemIDs {
		item := r.items[itemID]

		cadenceDays, avgQuantity := ReorderCadence(r.orders, itemID)
		predicted := r.forecaster.PredictUsage(itemID, cadenceDays, from)

		daysUntilReorder := maxDaysUntilEmpty
		if predicted > 0 {
			dailyRate := predicted / float64(cadenceDays)
			days := (item.CurrentStock - item.MinThreshold) / dailyRate
			if days < 0 {
				days = 0
			}
			daysUntilReorder = int(days)
		}

		var urgency, reasoning string
		var quantity float64
		switch {
		case item.CurrentStock <= item.MinThreshold:
			urgency = models.UrgencyCritical
			reasoning = fmt.Sprintf("Below minimum threshold (%.1f)", item.MinThreshold)
			quantity = math.Max(avgQuantity, item.MaxCapacity*criticalRestockRatio)
		case daysUntilReorder <= item.LeadTimeDays:
			urgency = models.UrgencyWarning
			reasoning = fmt.Sprintf("Will hit minimum in %d days (lead time: %d days)", daysUntilReorder, item.LeadTimeDays)
			quantity = avgQuantity
		case float64(daysUntilReorder) <= float64(cadenceDays)*1.2:
			urgency = models.UrgencyNormal
			reasoning = fmt.Sprintf("Typically reorder every %d days", cadenceDays)
			quantity = avgQuantity
		default:
			urgency = models.UrgencyStockUp
			reasoning = fmt.Sprintf("Good time to stock up - %d days of stock remaining", daysUntilReorder)
			quantity = avgQuantity * stockUpQuantityRatio
		}

		// Never order past capacity.
		maxCanOrder := item.MaxCapacity - item.CurrentStock
		if maxCanOrder < 0 {
			maxCanOrder = 0
		}
		quantity = math.Min(quantity, maxCanOrder)
		if quantity < 0 {
			quantity = 0
		}
		if quantity == 0 {
			reasoning = "Stock sufficient, no action needed"
		}

		supplierName := "Unknown"
		if supplier, ok := r.suppliers[item.SupplierID]; ok {
			supplierName = supplier.Name
		}

		recommendations = append(recommendations, models.OrderRecommendation{
			ItemID:              itemID,
			ItemName:            item.Name,
			CurrentStock:        item.CurrentStock,
			ProjectedUsage:      predicted,
			DaysUntilReorder:    daysUntilReorder,
			RecommendedQuantity: quantity,
			UrgencyLevel:        urgency,
			Reasoning:           reasoning,
			Supplier:            supplierName,
			EstimatedCost:       quantity * item.CostPerUnit,
		})
	}

	// Most urgent first, most expensive within the same urgency; item name
	// breaks remaining ties so output order is stable.
	sort.Slice(recommendations, func(i, j int) bool {
		ri, rj := urgencyRank[recommendations[i].UrgencyLevel], urgencyRank[recommendations[j].UrgencyLevel]
		if ri != rj {
			return ri < rj
		}
		if recommendations[i].EstimatedCost != recommendations[j].EstimatedCost {
			return recommendations[i].EstimatedCost > recommendations[j].EstimatedCost
		}
		return recommendations[i].ItemName < recommendations[j].ItemName
	})

	return recommendations
}
