package engine

import (
	"math"
	"sort"
	"time"

	"cafestock/models"
	"cafestock/utils"
)

// minPatternPoints is the minimum reconciled history length required before
// an item gets a usage pattern; items with less are skipped, not zero-filled.
const minPatternPoints = 3

// Trend factor clamp bounds.
const (
	minTrendFactor = 0.5
	maxTrendFactor = 2.0
)

var weekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// AnalyzeUsagePatterns aggregates reconciled usage history into per-item
// weekday averages, a trend multiplier and a volatility measure.
func AnalyzeUsagePatterns(history []models.CalculatedUsage, now time.Time) map[string]models.UsagePattern {
	byItem := make(map[string][]models.CalculatedUsage)
	for _, usage := range history {
		byItem[usage.ItemID] = append(byItem[usage.ItemID], usage)
	}

	patterns := make(map[string]models.UsagePattern)
	for itemID, usages := range byItem {
		if len(usages) < minPatternPoints {
			continue
		}

		byWeekday := make(map[string][]float64)
		total := make([]float64, 0, len(usages))
		for _, usage := range usages {
			day := utils.Weekday(usage.Date)
			byWeekday[day] = append(byWeekday[day], usage.CalculatedUsage)
			total = append(total, usage.CalculatedUsage)
		}

		dailyAverages := make(map[string]float64, len(weekdayNames))
		for day, values := range byWeekday {
			dailyAverages[day] = mean(values)
		}

		// Weekdays never observed fall back to the overall average.
		overall := mean(total)
		for _, day := range weekdayNames {
			if _, ok := dailyAverages[day]; !ok {
				dailyAverages[day] = overall
			}
		}

		patterns[itemID] = models.UsagePattern{
			ItemID:             itemID,
			DailyAverages:      dailyAverages,
			TrendFactor:        trendFactor(usages),
			SeasonalMultiplier: 1.0, // reserved; seasonal analysis not implemented
			Volatility:         volatility(total),
			LastUpdated:        now,
		}
	}
	return patterns
}

// trendFactor compares the mean of the recent half of the history against
// the older half, clamped to [minTrendFactor, maxTrendFactor].
func trendFactor(usages []models.CalculatedUsage) float64 {
	if len(usages) < 2 {
		return 1.0
	}

	sorted := make([]models.CalculatedUsage, len(usages))
	copy(sorted, usages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	half := len(sorted) / 2
	older := make([]float64, 0, half)
	recent := make([]float64, 0, len(sorted)-half)
	for i, usage := range sorted {
		if i < half {
			older = append(older, usage.CalculatedUsage)
		} else {
			recent = append(recent, usage.CalculatedUsage)
		}
	}

	olderMean := mean(older)
	if olderMean == 0 {
		return 1.0
	}

	trend := mean(recent) / olderMean
	return math.Max(minTrendFactor, math.Min(maxTrendFactor, trend))
}

// volatility is the coefficient of variation (sample stdev / mean), 0 when
// the mean is zero or fewer than two points exist.
func volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return sampleStdev(values, m) / m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdev(values []float64, m float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
