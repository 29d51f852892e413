package storage

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"cafestock/models"
	"cafestock/utils"
)

// Sheet tab names in the shared spreadsheet.
const (
	recommendationsSheet = "Recommendations"
	auditSheet           = "Audit"
)

// SheetsExporter pushes recommendation and audit tables to a Google Sheets
// spreadsheet shared with the business owner.
type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsExporter builds an exporter from a service-account credentials
// file and a target spreadsheet ID.
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsExporter, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsExporter{service: service, spreadsheetID: spreadsheetID}, nil
}

// PushRecommendations replaces the Recommendations tab with the current run.
func (e *SheetsExporter) PushRecommendations(ctx context.Context, recommendations []models.OrderRecommendation) error {
	values := [][]interface{}{{
		"Item Name", "Current Stock", "Recommended Quantity", "Urgency",
		"Days Until Reorder", "Estimated Cost", "Supplier", "Reasoning",
	}}
	for _, rec := range recommendations {
		values = append(values, []interface{}{
			rec.ItemName,
			rec.CurrentStock,
			rec.RecommendedQuantity,
			rec.UrgencyLevel,
			strconv.Itoa(rec.DaysUntilReorder),
			rec.EstimatedCost,
			rec.Supplier,
			rec.Reasoning,
		})
	}
	return e.replaceSheet(ctx, recommendationsSheet, values)
}

// PushAudit replaces the Audit tab with the latest audit run.
func (e *SheetsExporter) PushAudit(ctx context.Context, report models.AuditReport) error {
	values := [][]interface{}{{
		"Issue Type", "Date", "Item", "Severity", "Description", "Note", "Audit Date",
	}}
	auditDate := report.GeneratedAt.Format("2006-01-02 15:04:05")
	for _, issue := range report.Issues {
		values = append(values, []interface{}{
			issue.IssueType,
			issue.Date,
			issue.ItemID,
			issue.Severity,
			issue.Description,
			issue.Note,
			auditDate,
		})
	}
	return e.replaceSheet(ctx, auditSheet, values)
}

// PushUsage replaces the Usage tab with the merged usage history.
func (e *SheetsExporter) PushUsage(ctx context.Context, usage []models.UsageRecord) error {
	values := [][]interface{}{{
		"Date", "Item", "Quantity Used", "Waste", "Confidence", "Notes",
	}}
	for _, rec := range usage {
		values = append(values, []interface{}{
			utils.DateKey(rec.Date),
			rec.ItemID,
			rec.QuantityUsed,
			rec.WasteAmount,
			rec.ConfidenceLevel,
			rec.Notes,
		})
	}
	return e.replaceSheet(ctx, "Usage", values)
}

func (e *SheetsExporter) replaceSheet(ctx context.Context, sheet string, values [][]interface{}) error {
	clearRange := sheet + "!A:Z"
	if _, err := e.service.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := e.service.Spreadsheets.Values.
		Update(e.spreadsheetID, sheet+"!A1", valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet %s: %w", sheet, err)
	}
	return nil
}
