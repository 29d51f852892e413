package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestock/models"
)

func usageOn(d int, itemID string, used float64) models.CalculatedUsage {
	return models.CalculatedUsage{Date: day(d), ItemID: itemID, CalculatedUsage: used}
}

func TestAnalyzeUsagePatternsSkipsThinHistory(t *testing.T) {
	history := []models.CalculatedUsage{
		usageOn(2, "milk", 3),
		usageOn(3, "milk", 4),
	}
	patterns := AnalyzeUsagePatterns(history, time.Now())
	assert.NotContains(t, patterns, "milk")
}

func TestAnalyzeUsagePatternsWeekdayAverages(t *testing.T) {
	// 2026-03-02 and 2026-03-09 are Mondays, 2026-03-03 a Tuesday.
	history := []models.CalculatedUsage{
		usageOn(2, "milk", 10),
		usageOn(9, "milk", 20),
		usageOn(3, "milk", 30),
	}
	patterns := AnalyzeUsagePatterns(history, time.Now())
	pattern, ok := patterns["milk"]
	require.True(t, ok)

	assert.Len(t, pattern.DailyAverages, 7)
	assert.Equal(t, 15.0, pattern.DailyAverages["Monday"])
	assert.Equal(t, 30.0, pattern.DailyAverages["Tuesday"])
	// Unobserved weekdays fall back to the overall mean.
	assert.Equal(t, 20.0, pattern.DailyAverages["Friday"])
	assert.Equal(t, 20.0, pattern.DailyAverages["Sunday"])
	assert.Equal(t, 1.0, pattern.SeasonalMultiplier)
}

func TestTrendFactorGrowth(t *testing.T) {
	usages := []models.CalculatedUsage{
		usageOn(2, "milk", 10),
		usageOn(3, "milk", 10),
		usageOn(4, "milk", 15),
		usageOn(5, "milk", 15),
	}
	assert.Equal(t, 1.5, trendFactor(usages))
}

func TestTrendFactorClamped(t *testing.T) {
	surge := []models.CalculatedUsage{
		usageOn(2, "milk", 1),
		usageOn(3, "milk", 1),
		usageOn(4, "milk", 50),
		usageOn(5, "milk", 50),
	}
	assert.Equal(t, maxTrendFactor, trendFactor(surge))

	collapse := []models.CalculatedUsage{
		usageOn(2, "milk", 50),
		usageOn(3, "milk", 50),
		usageOn(4, "milk", 1),
		usageOn(5, "milk", 1),
	}
	assert.Equal(t, minTrendFactor, trendFactor(collapse))
}

func TestTrendFactorZeroBaselineIsNeutral(t *testing.T) {
	usages := []models.CalculatedUsage{
		usageOn(2, "milk", 0),
		usageOn(3, "milk", 0),
		usageOn(4, "milk", 5),
		usageOn(5, "milk", 5),
	}
	assert.Equal(t, 1.0, trendFactor(usages))
}

func TestTrendFactorOrdersByDate(t *testing.T) {
	// Same points delivered out of order must yield the same trend.
	ordered := []models.CalculatedUsage{
		usageOn(2, "milk", 10),
		usageOn(3, "milk", 10),
		usageOn(4, "milk", 15),
		usageOn(5, "milk", 15),
	}
	shuffled := []models.CalculatedUsage{ordered[3], ordered[0], ordered[2], ordered[1]}
	assert.Equal(t, trendFactor(ordered), trendFactor(shuffled))
}

func TestVolatility(t *testing.T) {
	// mean 4, sample stdev 2 -> coefficient of variation 0.5
	assert.InDelta(t, 0.5, volatility([]float64{2, 4, 6}), 1e-9)
	assert.Equal(t, 0.0, volatility([]float64{5, 5, 5}))
	assert.Equal(t, 0.0, volatility([]float64{5}))
	assert.Equal(t, 0.0, volatility([]float64{0, 0, 0}))
}
