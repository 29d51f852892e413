package engine

import (
	"fmt"
	"time"

	"cafestock/models"
	"cafestock/utils"
)

// maxDaysUntilEmpty caps the reported depletion horizon when predicted
// usage is zero or negligible.
const maxDaysUntilEmpty = 999

// Forecast confidence tiers by historical data-point count.
const (
	highConfidencePoints   = 7
	mediumConfidencePoints = 3
)

// Forecaster projects future consumption from usage patterns, falling back
// to the plain historical mean for items without a pattern.
type Forecaster struct {
	patterns map[string]models.UsagePattern
	history  map[string][]models.CalculatedUsage
}

// NewForecaster builds a forecaster over analyzed patterns and the reconciled
// usage history the patterns came from.
func NewForecaster(patterns map[string]models.UsagePattern, history []models.CalculatedUsage) *Forecaster {
	byItem := make(map[string][]models.CalculatedUsage)
	for _, usage := range history {
		byItem[usage.ItemID] = append(byItem[usage.ItemID], usage)
	}
	return &Forecaster{patterns: patterns, history: byItem}
}

// DataPoints returns how many historical usage points back an item's
// forecast.
func (f *Forecaster) DataPoints(itemID string) int {
	return len(f.history[itemID])
}

// PredictUsage projects cumulative usage for an item over daysAhead calendar
// days starting at from. Items without a pattern fall back to the historical
// mean times the horizon; items with no history at all predict zero.
func (f *Forecaster) PredictUsage(itemID string, daysAhead int, from time.Time) float64 {
	pattern, ok := f.patterns[itemID]
	if !ok {
		usages := f.history[itemID]
		if len(usages) == 0 {
			return 0
		}
		var sum float64
		for _, usage := range usages {
			sum += usage.CalculatedUsage
		}
		return sum / float64(len(usages)) * float64(daysAhead)
	}

	var total float64
	for i := 0; i < daysAhead; i++ {
		day := utils.Weekday(from.AddDate(0, 0, i))
		total += pattern.DailyAverages[day] * pattern.TrendFactor * pattern.SeasonalMultiplier
	}
	return total
}

// Confidence maps an item's data-point count to a forecast confidence tier.
func (f *Forecaster) Confidence(itemID string) string {
	points := f.DataPoints(itemID)
	switch {
	case points >= highConfidencePoints:
		return models.ConfidenceHigh
	case points >= mediumConfidencePoints:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Forecast builds the depletion outlook for one item over horizonDays.
func (f *Forecaster) Forecast(item models.InventoryItem, horizonDays int, from time.Time) models.ItemForecast {
	predicted := f.PredictUsage(item.ItemID, horizonDays, from)

	// Days until empty derives from the 7-day prediction so a weekday-heavy
	// pattern doesn't skew the daily rate.
	weekUsage := f.PredictUsage(item.ItemID, 7, from)
	daysUntilEmpty := float64(maxDaysUntilEmpty)
	if weekUsage > 0 {
		daysUntilEmpty = item.CurrentStock / (weekUsage / 7)
		if daysUntilEmpty > maxDaysUntilEmpty {
			daysUntilEmpty = maxDaysUntilEmpty
		}
	}

	runout := "More than 1 year"
	if daysUntilEmpty < 365 {
		runout = utils.DateKey(from.AddDate(0, 0, int(daysUntilEmpty)))
	}

	avgDaily := 0.0
	if horizonDays > 0 {
		avgDaily = predicted / float64(horizonDays)
	}

	return models.ItemForecast{
		ItemID:         item.ItemID,
		ItemName:       item.Name,
		Unit:           item.Unit,
		CurrentStock:   item.CurrentStock,
		AvgDailyUsage:  avgDaily,
		PredictedUsage: predicted,
		HorizonDays:    horizonDays,
		DaysUntilEmpty: daysUntilEmpty,
		RunoutDate:     runout,
		DataPointsUsed: f.DataPoints(item.ItemID),
		Confidence:     f.Confidence(item.ItemID),
		LastUpdated:    from,
	}
}

// ErrItemNotFound reports a forecast request for an item the catalog does
// not know. Unlike dirty data this is caller misuse and propagates.
type ErrItemNotFound struct {
	ItemID string
}

func (e ErrItemNotFound) Error() string {
	return fmt.Sprintf("inventory item %q not found", e.ItemID)
}
