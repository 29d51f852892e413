package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cafestock/models"
	"cafestock/utils"
)

// AliasTable maps inconsistently named source records to canonical item IDs.
// It is supplied externally (an aliases CSV) and consulted only at ingestion;
// the engine's identity model stays strictly item_id-based.
type AliasTable map[string]string

// Resolve returns the canonical item ID for a source name, or the name
// unchanged when no alias is registered.
func (a AliasTable) Resolve(name string) string {
	if a == nil {
		return name
	}
	if id, ok := a[name]; ok {
		return id
	}
	return name
}

// LoadAliasTable reads an alias CSV with columns alias,item_id.
func LoadAliasTable(r io.Reader) (AliasTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table: %w", err)
	}

	table := make(AliasTable)
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "alias") {
			continue // header
		}
		if len(row) < 2 {
			continue
		}
		alias := strings.TrimSpace(row[0])
		itemID := strings.TrimSpace(row[1])
		if alias != "" && itemID != "" {
			table[alias] = itemID
		}
	}
	return table, nil
}

// header maps column names (case-insensitive) to their index.
type header map[string]int

func readHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

func (h header) get(row []string, name string) (string, bool) {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func (h header) getFloat(row []string, name string, fallback float64) (float64, error) {
	s, ok := h.get(row, name)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric %s %q", name, s)
	}
	return v, nil
}

// ReadSnapshotsCSV parses snapshot rows (date, item_id, stock_level,
// waste_amount, deliveries_received, notes). Malformed rows are skipped and
// reported in the warnings list; one bad row never aborts the import.
func ReadSnapshotsCSV(r io.Reader, aliases AliasTable) ([]models.InventorySnapshot, []string, error) {
	rows, h, err := readAll(r)
	if err != nil {
		return nil, nil, err
	}

	var snapshots []models.InventorySnapshot
	var warnings []string
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after header

		itemID, _ := h.get(row, "item_id")
		if itemID == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing item_id, skipped", rowNum))
			continue
		}
		itemID = aliases.Resolve(itemID)

		dateStr, _ := h.get(row, "date")
		date, err := utils.ParseDate(dateStr)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}

		stock, err := h.getFloat(row, "stock_level", 0)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}
		waste, err := h.getFloat(row, "waste_amount", 0)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}
		received, err := h.getFloat(row, "deliveries_received", 0)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}
		notes, _ := h.get(row, "notes")

		snapshots = append(snapshots, models.InventorySnapshot{
			Date:               date,
			ItemID:             itemID,
			StockLevel:         stock,
			WasteAmount:        waste,
			DeliveriesReceived: received,
			Notes:              notes,
		})
	}
	return snapshots, warnings, nil
}

// ReadDeliveriesCSV parses delivery rows (date, item_id, quantity,
// unit_cost, notes) with the same skip-and-warn policy.
func ReadDeliveriesCSV(r io.Reader, aliases AliasTable) ([]models.DeliveryRecord, []string, error) {
	rows, h, err := readAll(r)
	if err != nil {
		return nil, nil, err
	}

	var deliveries []models.DeliveryRecord
	var warnings []string
	for i, row := range rows {
		rowNum := i + 2

		itemID, _ := h.get(row, "item_id")
		if itemID == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing item_id, skipped", rowNum))
			continue
		}
		itemID = aliases.Resolve(itemID)

		dateStr, _ := h.get(row, "date")
		date, err := utils.ParseDate(dateStr)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}

		quantity, err := h.getFloat(row, "quantity", 0)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}
		unitCost, err := h.getFloat(row, "unit_cost", 0)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, err))
			continue
		}
		notes, _ := h.get(row, "notes")

		deliveries = append(deliveries, models.DeliveryRecord{
			Date:     date,
			ItemID:   itemID,
			Quantity: quantity,
			UnitCost: unitCost,
			Notes:    notes,
		})
	}
	return deliveries, warnings, nil
}

// ReadItemsCSV parses catalog rows (item_id, name, category, unit,
// current_stock, min_threshold, max_capacity, cost_per_unit, supplier_id,
// lead_time_days, shelf_life_days).
func ReadItemsCSV(r io.Reader) ([]models.InventoryItem, []string, error) {
	rows, h, err := readAll(r)
	if err != nil {
		return nil, nil, err
	}

	var items []models.InventoryItem
	var warnings []string
	for i, row := range rows {
		rowNum := i + 2

		itemID, _ := h.get(row, "item_id")
		if itemID == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing item_id, skipped", rowNum))
			continue
		}

		name, _ := h.get(row, "name")
		category, _ := h.get(row, "category")
		unit, _ := h.get(row, "unit")
		supplierID, _ := h.get(row, "supplier_id")

		var floatErr error
		readFloat := func(col string, fallback float64) float64 {
			v, err := h.getFloat(row, col, fallback)
			if err != nil && floatErr == nil {
				floatErr = err
			}
			return v
		}
		currentStock := readFloat("current_stock", 0)
		minThreshold := readFloat("min_threshold", 0)
		maxCapacity := readFloat("max_capacity", 0)
		costPerUnit := readFloat("cost_per_unit", 0)
		leadTime := readFloat("lead_time_days", 7)
		shelfLife := readFloat("shelf_life_days", 0)
		if floatErr != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v, skipped", rowNum, floatErr))
			continue
		}

		if maxCapacity > 0 && minThreshold >= maxCapacity {
			warnings = append(warnings, fmt.Sprintf("row %d: min_threshold %.1f must be below max_capacity %.1f, skipped", rowNum, minThreshold, maxCapacity))
			continue
		}

		items = append(items, models.InventoryItem{
			ItemID:        itemID,
			Name:          name,
			Category:      category,
			Unit:          unit,
			CurrentStock:  currentStock,
			MinThreshold:  minThreshold,
			MaxCapacity:   maxCapacity,
			CostPerUnit:   costPerUnit,
			SupplierID:    supplierID,
			LeadTimeDays:  int(leadTime),
			ShelfLifeDays: int(shelfLife),
		})
	}
	return items, warnings, nil
}

func readAll(r io.Reader) ([][]string, header, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, header{}, nil
	}
	return rows[1:], readHeader(rows[0]), nil
}

// WriteRecommendationsCSV writes the tabular recommendation export.
func WriteRecommendationsCSV(w io.Writer, recommendations []models.OrderRecommendation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Item_Name", "Current_Stock", "Recommended_Quantity", "Urgency",
		"Days_Until_Reorder", "Estimated_Cost", "Supplier", "Reasoning",
	}); err != nil {
		return err
	}
	for _, rec := range recommendations {
		if err := writer.Write([]string{
			rec.ItemName,
			fmt.Sprintf("%.1f", rec.CurrentStock),
			fmt.Sprintf("%.1f", rec.RecommendedQuantity),
			rec.UrgencyLevel,
			strconv.Itoa(rec.DaysUntilReorder),
			fmt.Sprintf("$%.2f", rec.EstimatedCost),
			rec.Supplier,
			rec.Reasoning,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAuditCSV writes one row per audit issue (or the single Success row).
func WriteAuditCSV(w io.Writer, report models.AuditReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Issue_Type", "Date", "Item_ID", "Severity", "Description",
		"Expected_Value", "Actual_Value", "Difference", "Field", "Value", "Note", "Audit_Date",
	}); err != nil {
		return err
	}
	auditDate := report.GeneratedAt.Format("2006-01-02 15:04:05")
	for _, issue := range report.Issues {
		if err := writer.Write([]string{
			issue.IssueType,
			issue.Date,
			issue.ItemID,
			issue.Severity,
			issue.Description,
			formatOptional(issue.ExpectedValue),
			formatOptional(issue.ActualValue),
			formatOptional(issue.Difference),
			issue.Field,
			formatOptional(issue.Value),
			issue.Note,
			auditDate,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteConsumptionCSV writes the derived consumption ledger.
func WriteConsumptionCSV(w io.Writer, records []models.ConsumptionRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Date", "Item_ID", "Consumption", "Stock_Before_Delivery",
		"Delivery_Amount", "Previous_Stock", "Reasoning",
	}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write([]string{
			utils.DateKey(rec.Date),
			rec.ItemID,
			fmt.Sprintf("%.1f", rec.Consumption),
			fmt.Sprintf("%.1f", rec.StockBeforeDelivery),
			fmt.Sprintf("%.1f", rec.DeliveryAmount),
			fmt.Sprintf("%.1f", rec.PreviousStock),
			rec.Reasoning,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
