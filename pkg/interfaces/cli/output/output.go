package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/domain/entities"
)

const (
	JSONFile        = "picklist_result.json"
	AllocationsFile = "allocations.csv"
	ShortagesFile   = "shortages.csv"
	XLSXFile        = "picklist.xlsx"

	AllocationsSheet = "Allocations"
	ShortagesSheet   = "Shortages"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Stdout receives console output; nil means os.Stdout
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Generate creates output in the specified format
func Generate(result *dto.PickListResult, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	case "xlsx":
		return generateXLSXOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

var allocationHeader = []string{
	"line_index", "item_code", "warehouse", "qty", "uom", "stock_qty", "stock_uom",
	"conversion_factor", "picked_qty", "serial_nos", "batch_no",
	"sales_order", "sales_order_item", "work_order",
}

var shortageHeader = []string{"line_index", "item_code", "short_qty", "uom"}

func allocationRecord(row entities.AllocationRow) []string {
	return []string{
		strconv.Itoa(row.LineIndex),
		string(row.ItemCode),
		row.Warehouse,
		row.Quantity.String(),
		row.UOM,
		row.StockQuantity.String(),
		row.StockUOM,
		row.ConversionFactor.String(),
		row.PickedQuantity.String(),
		strings.Join(row.SerialIDs, "\n"),
		row.BatchID,
		row.Source.SalesOrder,
		row.Source.SalesOrderItem,
		row.Source.WorkOrder,
	}
}

func shortageRecord(s entities.ShortageNotice) []string {
	return []string{strconv.Itoa(s.LineIndex), string(s.ItemCode), s.ShortQuantity.String(), s.UOM}
}

// generateTextOutput prints a human-readable summary
func generateTextOutput(result *dto.PickListResult, config Config) error {
	w := config.stdout()

	fmt.Fprintf(w, "Pick List %s\n", result.RunID)
	fmt.Fprintf(w, "==========%s\n\n", strings.Repeat("=", len(result.RunID)))
	fmt.Fprintf(w, "Reference Date: %s\n", result.ReferenceDate)
	if len(result.WarehouseScope) > 0 {
		fmt.Fprintf(w, "Warehouses: %s\n", strings.Join(result.WarehouseScope, ", "))
	}
	fmt.Fprintf(w, "Rows: %d\n", len(result.Rows))
	fmt.Fprintf(w, "Shortages: %d\n", len(result.Shortages))
	fmt.Fprintf(w, "Coverage: %.1f%%\n", result.CoverageRatio*100)
	if config.Verbose {
		fmt.Fprintf(w, "Duration: %v\n", result.Duration)
	}
	fmt.Fprintln(w)

	if len(result.Rows) > 0 {
		fmt.Fprintf(w, "Allocations:\n")
		fmt.Fprintf(w, "%-5s %-15s %-20s %-10s %-10s %-12s %s\n",
			"Line", "Item", "Warehouse", "Qty", "Stock Qty", "Batch", "Serials")
		fmt.Fprintf(w, "%-5s %-15s %-20s %-10s %-10s %-12s %s\n",
			"-----", "---------------", "--------------------", "----------", "----------", "------------", "-------")
		for _, row := range result.Rows {
			fmt.Fprintf(w, "%-5d %-15s %-20s %-10s %-10s %-12s %s\n",
				row.LineIndex,
				row.ItemCode,
				row.Warehouse,
				row.Quantity.String()+" "+row.UOM,
				row.StockQuantity.String(),
				row.BatchID,
				strings.Join(row.SerialIDs, ","))
		}
		fmt.Fprintln(w)
	}

	if len(result.Shortages) > 0 {
		fmt.Fprintf(w, "Shortages:\n")
		fmt.Fprintf(w, "%-5s %-15s %-12s\n", "Line", "Item", "Short Qty")
		fmt.Fprintf(w, "%-5s %-15s %-12s\n", "-----", "---------------", "------------")
		for _, s := range result.Shortages {
			fmt.Fprintf(w, "%-5d %-15s %-12s\n", s.LineIndex, s.ItemCode, s.ShortQuantity.String()+" "+s.UOM)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// generateJSONOutput prints JSON, or writes it to the output directory when one is set
func generateJSONOutput(result *dto.PickListResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.stdout(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, JSONFile)
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "JSON results saved to: %s\n", filename)
	}
	return nil
}

func generateCSVOutput(result *dto.PickListResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	allocFile := filepath.Join(config.OutputDir, AllocationsFile)
	allocRecords := make([][]string, 0, len(result.Rows)+1)
	allocRecords = append(allocRecords, allocationHeader)
	for _, row := range result.Rows {
		allocRecords = append(allocRecords, allocationRecord(row))
	}
	if err := writeCSV(allocFile, allocRecords); err != nil {
		return fmt.Errorf("failed to write allocations CSV: %w", err)
	}

	shortageFile := filepath.Join(config.OutputDir, ShortagesFile)
	shortageRecords := make([][]string, 0, len(result.Shortages)+1)
	shortageRecords = append(shortageRecords, shortageHeader)
	for _, s := range result.Shortages {
		shortageRecords = append(shortageRecords, shortageRecord(s))
	}
	if err := writeCSV(shortageFile, shortageRecords); err != nil {
		return fmt.Errorf("failed to write shortages CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "CSV results saved to:\n  Allocations: %s\n  Shortages: %s\n", allocFile, shortageFile)
	}
	return nil
}

func writeCSV(filename string, records [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

func generateXLSXOutput(result *dto.PickListResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), AllocationsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ShortagesSheet); err != nil {
		return err
	}

	allocRows := make([][]interface{}, 0, len(result.Rows))
	for _, row := range result.Rows {
		allocRows = append(allocRows, []interface{}{
			row.LineIndex,
			string(row.ItemCode),
			row.Warehouse,
			row.Quantity.InexactFloat64(),
			row.UOM,
			row.StockQuantity.InexactFloat64(),
			row.StockUOM,
			row.ConversionFactor.InexactFloat64(),
			row.PickedQuantity.InexactFloat64(),
			strings.Join(row.SerialIDs, "\n"),
			row.BatchID,
			row.Source.SalesOrder,
			row.Source.SalesOrderItem,
			row.Source.WorkOrder,
		})
	}
	if err := writeSheet(f, AllocationsSheet, allocationHeader, allocRows); err != nil {
		return fmt.Errorf("failed to write allocations sheet: %w", err)
	}

	shortageRows := make([][]interface{}, 0, len(result.Shortages))
	for _, s := range result.Shortages {
		shortageRows = append(shortageRows, []interface{}{
			s.LineIndex,
			string(s.ItemCode),
			s.ShortQuantity.InexactFloat64(),
			s.UOM,
		})
	}
	if err := writeSheet(f, ShortagesSheet, shortageHeader, shortageRows); err != nil {
		return fmt.Errorf("failed to write shortages sheet: %w", err)
	}

	filename := filepath.Join(config.OutputDir, XLSXFile)
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "Workbook saved to: %s\n", filename)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
