package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestock/models"
)

func consumption(d int, itemID string, prev, used, delivery float64) models.ConsumptionRecord {
	return models.ConsumptionRecord{
		Date:                day(d),
		ItemID:              itemID,
		Consumption:         used,
		StockBeforeDelivery: prev - used,
		DeliveryAmount:      delivery,
		PreviousStock:       prev,
	}
}

func TestAuditCleanRunYieldsSuccessRow(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(2, "milk", 10, 0),
		snap(3, "milk", 8, 0),
	})
	ledger := NewDeliveryLedger(nil)
	auditor := NewAuditor(0)

	report := auditor.Run(DeriveConsumptionLedger(store, ledger), store, ledger)

	assert.True(t, report.Clean)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "no_issues", report.Issues[0].IssueType)
	assert.Equal(t, models.SeveritySuccess, report.Issues[0].Severity)
	assert.Equal(t, "All Items", report.Issues[0].ItemID)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 1, report.SeverityCounts[models.SeveritySuccess])
}

func TestAuditDerivedLedgerRoundTripsClean(t *testing.T) {
	// Snapshots with deliveries and waste still audit clean because the
	// derived ledger and the auditor share the same stock formula.
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(2, "milk", 10, 0),
		snap(3, "milk", 14, 1),
		snap(4, "milk", 9, 0),
		snap(2, "beans", 20, 0),
		snap(3, "beans", 17, 0),
	})
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "milk", Quantity: 8},
	})
	auditor := NewAuditor(0)

	report := auditor.Run(DeriveConsumptionLedger(store, ledger), store, ledger)
	assert.True(t, report.Clean)
}

func TestAuditCalculationError(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(3, "milk", 7.5, 0),
	})
	ledger := NewDeliveryLedger(nil)
	auditor := NewAuditor(0.01)

	// 10 - 2 + 0 = 8, recorded stock says 7.5.
	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 10, 2, 0)}, store, ledger)

	assert.False(t, report.Clean)
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, models.IssueCalculationError, issue.IssueType)
	assert.Equal(t, models.SeverityMedium, issue.Severity)
	require.NotNil(t, issue.ExpectedValue)
	require.NotNil(t, issue.ActualValue)
	require.NotNil(t, issue.Difference)
	assert.Equal(t, 8.0, *issue.ExpectedValue)
	assert.Equal(t, 7.5, *issue.ActualValue)
	assert.Equal(t, -0.5, *issue.Difference)
}

func TestAuditToleranceSuppressesTinyMismatch(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(3, "milk", 7.995, 0),
	})
	ledger := NewDeliveryLedger(nil)
	auditor := NewAuditor(0.01)

	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 10, 2, 0)}, store, ledger)
	assert.True(t, report.Clean)
}

func TestAuditMissingDeliveryUsesLedgerAmount(t *testing.T) {
	// The ledger knows about a delivery of 10 the consumption row missed.
	// Stock is consistent once the ledger amount is substituted, so the only
	// issue is the missing delivery itself.
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(3, "milk", 13, 0),
	})
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "milk", Quantity: 10},
	})
	auditor := NewAuditor(0.01)

	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 5, 2, 0)}, store, ledger)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, models.IssueMissingDelivery, issue.IssueType)
	assert.Equal(t, models.SeverityHigh, issue.Severity)
	require.NotNil(t, issue.ExpectedValue)
	assert.Equal(t, 10.0, *issue.ExpectedValue)
}

func TestAuditCalculationErrorNotesLedgerSubstitution(t *testing.T) {
	// Even with the ledger delivery substituted the books don't balance;
	// the calculation error says which delivery amount was used.
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(3, "milk", 20, 0),
	})
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "milk", Quantity: 10},
	})
	auditor := NewAuditor(0.01)

	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 5, 2, 0)}, store, ledger)

	require.Len(t, report.Issues, 2)
	assert.Equal(t, models.IssueMissingDelivery, report.Issues[0].IssueType)
	assert.Equal(t, models.IssueCalculationError, report.Issues[1].IssueType)
	assert.Equal(t, "Used delivery amount from delivery ledger", report.Issues[1].Note)
}

func TestAuditValidationErrorsComeFirst(t *testing.T) {
	store := NewSnapshotStore(nil)
	ledger := NewDeliveryLedger(nil)
	auditor := NewAuditor(0.01)

	rec := consumption(3, "milk", 10, -2, 0)
	report := auditor.Run([]models.ConsumptionRecord{rec}, store, ledger)

	assert.False(t, report.Clean)
	require.NotEmpty(t, report.Issues)
	first := report.Issues[0]
	assert.Equal(t, models.IssueDataValidationError, first.IssueType)
	assert.Equal(t, models.SeverityCritical, first.Severity)
	assert.Equal(t, "consumption", first.Field)
	require.NotNil(t, first.Value)
	assert.Equal(t, -2.0, *first.Value)

	// The same row also has no stock record; that issue ranks after.
	last := report.Issues[len(report.Issues)-1]
	assert.Equal(t, models.IssueMissingStockRecord, last.IssueType)
	assert.Equal(t, models.SeverityHigh, last.Severity)
}

func TestAuditMissingStockSkipsFurtherChecks(t *testing.T) {
	store := NewSnapshotStore(nil)
	ledger := NewDeliveryLedger([]models.DeliveryRecord{
		{Date: day(3), ItemID: "milk", Quantity: 10},
	})
	auditor := NewAuditor(0.01)

	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 5, 2, 0)}, store, ledger)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.IssueMissingStockRecord, report.Issues[0].IssueType)
}

func TestAuditNegativeStockIsCritical(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(3, "milk", -2, 0),
	})
	ledger := NewDeliveryLedger(nil)
	auditor := NewAuditor(0.01)

	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 0, 2, 0)}, store, ledger)

	var found bool
	for _, issue := range report.Issues {
		if issue.IssueType == models.IssueNegativeValue {
			found = true
			assert.Equal(t, models.SeverityCritical, issue.Severity)
			require.NotNil(t, issue.Value)
			assert.Equal(t, -2.0, *issue.Value)
		}
	}
	assert.True(t, found, "expected a negative_value issue")
}

func TestAuditNonPositiveToleranceFallsBack(t *testing.T) {
	assert.Equal(t, DefaultAuditTolerance, NewAuditor(0).Tolerance)
	assert.Equal(t, DefaultAuditTolerance, NewAuditor(-1).Tolerance)
	assert.Equal(t, 0.5, NewAuditor(0.5).Tolerance)
}

func TestFormatReportClean(t *testing.T) {
	report := models.AuditReport{
		GeneratedAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		Clean:       true,
	}
	text := FormatReport(report)
	assert.Contains(t, text, "INVENTORY AUDIT REPORT")
	assert.Contains(t, text, "NO ISSUES FOUND")
}

func TestFormatReportGroupsByCategory(t *testing.T) {
	store := NewSnapshotStore([]models.InventorySnapshot{
		snap(3, "milk", 7.5, 0),
	})
	ledger := NewDeliveryLedger(nil)
	auditor := NewAuditor(0.01)

	report := auditor.Run([]models.ConsumptionRecord{consumption(3, "milk", 10, 2, 0)}, store, ledger)
	text := FormatReport(report)

	assert.Contains(t, text, "FOUND 1 ISSUE(S)")
	assert.Contains(t, text, "CALCULATION ERRORS (1):")
	assert.Contains(t, text, "Item: milk")
}
