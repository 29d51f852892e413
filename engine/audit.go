package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"cafestock/models"
	"cafestock/utils"
)

// DefaultAuditTolerance is the absolute tolerance for stock recomputation
// mismatches. It suits cents-like units; override it for coarser units.
const DefaultAuditTolerance = 0.01

// Auditor cross-checks consumption, stock and delivery records that may have
// been produced by different ingestion paths. It never fails on dirty data:
// every inconsistency becomes an issue row.
type Auditor struct {
	Tolerance float64
	now       func() time.Time
}

// NewAuditor returns an auditor with the given mismatch tolerance.
// A non-positive tolerance falls back to DefaultAuditTolerance.
func NewAuditor(tolerance float64) *Auditor {
	if tolerance <= 0 {
		tolerance = DefaultAuditTolerance
	}
	return &Auditor{Tolerance: tolerance, now: time.Now}
}

// Run audits the consumption ledger against the snapshot store and delivery
// ledger and returns a full report. A clean run still yields one synthetic
// Success issue so consumers can tell "checked, clean" from "never checked".
func (a *Auditor) Run(consumption []models.ConsumptionRecord, store *SnapshotStore, ledger *DeliveryLedger) models.AuditReport {
	var (
		validationErrs  []models.AuditIssue
		missingDelivery []models.AuditIssue
		calcErrs        []models.AuditIssue
		missingStock    []models.AuditIssue
		negativeStock   []models.AuditIssue
	)

	// Data validation first: no cross-record check is meaningful for rows
	// carrying negative quantities.
	for _, rec := range consumption {
		for _, check := range []struct {
			field string
			value float64
		}{
			{"consumption", rec.Consumption},
			{"delivery_amount", rec.DeliveryAmount},
			{"stock_before_delivery", rec.StockBeforeDelivery},
			{"previous_stock", rec.PreviousStock},
		} {
			if check.value < 0 {
				v := check.value
				validationErrs = append(validationErrs, models.AuditIssue{
					IssueType:   models.IssueDataValidationError,
					Severity:    models.SeverityCritical,
					Date:        utils.DateKey(rec.Date),
					ItemID:      rec.ItemID,
					Field:       check.field,
					Value:       &v,
					Description: fmt.Sprintf("%s has invalid value %.2f: cannot be negative", check.field, check.value),
				})
			}
		}
	}

	sorted := make([]models.ConsumptionRecord, len(consumption))
	copy(sorted, consumption)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ItemID != sorted[j].ItemID {
			return sorted[i].ItemID < sorted[j].ItemID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, rec := range sorted {
		dateKey := utils.DateKey(rec.Date)

		snap, ok := store.On(rec.ItemID, rec.Date)
		if !ok {
			missingStock = append(missingStock, models.AuditIssue{
				IssueType:   models.IssueMissingStockRecord,
				Severity:    models.SeverityHigh,
				Date:        dateKey,
				ItemID:      rec.ItemID,
				Description: "No stock record found for consumption entry",
			})
			continue
		}
		currentStock := snap.StockLevel

		// Prefer the ledger when it records a delivery the consumption row
		// missed; the recomputation below uses the resolved amount.
		delivery := rec.DeliveryAmount
		ledgerDelivery := ledger.TotalOn(rec.ItemID, rec.Date)
		usedLedgerDelivery := false
		if ledgerDelivery > 0 && rec.DeliveryAmount == 0 {
			ld := ledgerDelivery
			recorded := rec.DeliveryAmount
			missingDelivery = append(missingDelivery, models.AuditIssue{
				IssueType:     models.IssueMissingDelivery,
				Severity:      models.SeverityHigh,
				Date:          dateKey,
				ItemID:        rec.ItemID,
				ExpectedValue: &ld,
				ActualValue:   &recorded,
				Description:   fmt.Sprintf("Delivery of %.1f in the delivery ledger is missing from consumption data", ledgerDelivery),
			})
			delivery = ledgerDelivery
			usedLedgerDelivery = true
		}

		expected := ProjectStock(rec.PreviousStock, rec.Consumption, delivery)
		if diff := expected - currentStock; diff > a.Tolerance || diff < -a.Tolerance {
			exp := expected
			act := currentStock
			d := currentStock - expected
			issue := models.AuditIssue{
				IssueType:     models.IssueCalculationError,
				Severity:      models.SeverityMedium,
				Date:          dateKey,
				ItemID:        rec.ItemID,
				ExpectedValue: &exp,
				ActualValue:   &act,
				Difference:    &d,
				Description: fmt.Sprintf("Stock calculation mismatch: %.2f - %.2f + %.2f = %.2f but recorded stock is %.2f",
					rec.PreviousStock, rec.Consumption, delivery, expected, currentStock),
			}
			if usedLedgerDelivery {
				issue.Note = "Used delivery amount from delivery ledger"
			}
			calcErrs = append(calcErrs, issue)
		}

		if currentStock < 0 {
			cs := currentStock
			negativeStock = append(negativeStock, models.AuditIssue{
				IssueType:   models.IssueNegativeValue,
				Severity:    models.SeverityCritical,
				Date:        dateKey,
				ItemID:      rec.ItemID,
				Value:       &cs,
				Description: fmt.Sprintf("Negative stock value %.2f recorded", currentStock),
			})
		}
	}

	// Fixed reporting precedence: validation before cross-record checks.
	issues := make([]models.AuditIssue, 0,
		len(validationErrs)+len(missingDelivery)+len(calcErrs)+len(missingStock)+len(negativeStock))
	issues = append(issues, validationErrs...)
	issues = append(issues, missingDelivery...)
	issues = append(issues, calcErrs...)
	issues = append(issues, missingStock...)
	issues = append(issues, negativeStock...)

	clean := len(issues) == 0
	if clean {
		issues = append(issues, models.AuditIssue{
			IssueType:   "no_issues",
			Severity:    models.SeveritySuccess,
			ItemID:      "All Items",
			Description: "All inventory data is consistent and passes validation",
		})
	}

	severityCounts := make(map[string]int)
	typeCounts := make(map[string]int)
	for _, issue := range issues {
		severityCounts[issue.Severity]++
		typeCounts[issue.IssueType]++
	}

	return models.AuditReport{
		RunID:          uuid.NewString(),
		GeneratedAt:    a.now(),
		Issues:         issues,
		SeverityCounts: severityCounts,
		TypeCounts:     typeCounts,
		Clean:          clean,
	}
}

// reportSections fixes the grouping order of the plain-text report.
var reportSections = []struct {
	issueType string
	heading   string
}{
	{models.IssueDataValidationError, "DATA VALIDATION ERRORS"},
	{models.IssueMissingDelivery, "MISSING DELIVERIES IN CONSUMPTION DATA"},
	{models.IssueCalculationError, "CALCULATION ERRORS"},
	{models.IssueMissingStockRecord, "MISSING STOCK RECORDS"},
	{models.IssueNegativeValue, "NEGATIVE STOCK VALUES"},
}

// FormatReport renders an audit report as the plain-text summary grouped by
// category, with counts, in fixed precedence order.
func FormatReport(report models.AuditReport) string {
	var b strings.Builder
	divider := strings.Repeat("=", 60)

	b.WriteString(divider + "\n")
	b.WriteString("INVENTORY AUDIT REPORT\n")
	b.WriteString("Generated: " + report.GeneratedAt.Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(divider + "\n")

	if report.Clean {
		b.WriteString("\nNO ISSUES FOUND - All inventory data is consistent!\n")
		b.WriteString(divider + "\n")
		return b.String()
	}

	total := 0
	for _, issue := range report.Issues {
		if issue.Severity != models.SeveritySuccess {
			total++
		}
	}
	fmt.Fprintf(&b, "\nFOUND %d ISSUE(S):\n\n", total)

	for _, section := range reportSections {
		count := report.TypeCounts[section.issueType]
		if count == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", section.heading, count)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, issue := range report.Issues {
			if issue.IssueType != section.issueType {
				continue
			}
			fmt.Fprintf(&b, "Date: %s\n", issue.Date)
			fmt.Fprintf(&b, "Item: %s\n", issue.ItemID)
			if issue.Field != "" {
				fmt.Fprintf(&b, "Field: %s\n", issue.Field)
			}
			fmt.Fprintf(&b, "Issue: %s\n", issue.Description)
			if issue.Note != "" {
				fmt.Fprintf(&b, "Note: %s\n", issue.Note)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(divider + "\n")
	return b.String()
}
