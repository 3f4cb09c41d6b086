package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Scenario file names inside a scenario directory
const (
	ItemsFile      = "items.csv"
	UOMsFile       = "uoms.csv"
	WarehousesFile = "warehouses.csv"
	InventoryFile  = "inventory.csv"
	RequestsFile   = "requests.csv"
)

var (
	itemsHeader      = []string{"item_code", "description", "stock_uom", "has_serial_no", "has_batch_no"}
	uomsHeader       = []string{"uom", "must_be_whole_number"}
	warehousesHeader = []string{"warehouse", "parent_warehouse", "is_group"}
	inventoryHeader  = []string{"item_code", "type", "identifier", "warehouse", "quantity", "date"}
	requestsHeader   = []string{"item_code", "qty", "uom", "stock_uom", "conversion_factor", "sales_order", "sales_order_item", "work_order"}
)

// Loader handles loading pick list scenarios from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSnapshot loads items, units, warehouses and inventory from a scenario directory.
// uoms.csv and warehouses.csv are optional.
func (l *Loader) LoadSnapshot(dir string) (*entities.InventorySnapshot, error) {
	snapshot := &entities.InventorySnapshot{}

	items, err := l.LoadItems(filepath.Join(dir, ItemsFile))
	if err != nil {
		return nil, err
	}
	snapshot.Items = items

	uoms, err := l.LoadUOMs(filepath.Join(dir, UOMsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	snapshot.UOMs = uoms

	warehouses, err := l.LoadWarehouses(filepath.Join(dir, WarehousesFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	snapshot.Warehouses = warehouses

	if err := l.LoadInventory(filepath.Join(dir, InventoryFile), snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// LoadItems loads the item master from a CSV file
func (l *Loader) LoadItems(filename string) ([]entities.Item, error) {
	records, err := readRecords(filename, "items", itemsHeader)
	if err != nil {
		return nil, err
	}

	items := make([]entities.Item, 0, len(records))
	for i, record := range records {
		hasSerial, err := parseBool(record[3])
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: invalid has_serial_no: %s", i+2, record[3])
		}
		hasBatch, err := parseBool(record[4])
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: invalid has_batch_no: %s", i+2, record[4])
		}
		if record[0] == "" {
			return nil, fmt.Errorf("items CSV row %d: item code cannot be empty", i+2)
		}

		items = append(items, entities.Item{
			ItemCode:    entities.ItemCode(record[0]),
			Description: record[1],
			StockUOM:    record[2],
			HasSerialNo: hasSerial,
			HasBatchNo:  hasBatch,
		})
	}

	return items, nil
}

// LoadUOMs loads unit of measure settings from a CSV file
func (l *Loader) LoadUOMs(filename string) ([]entities.UOM, error) {
	records, err := readRecords(filename, "uoms", uomsHeader)
	if err != nil {
		return nil, err
	}

	uoms := make([]entities.UOM, 0, len(records))
	for i, record := range records {
		whole, err := parseBool(record[1])
		if err != nil {
			return nil, fmt.Errorf("uoms CSV row %d: invalid must_be_whole_number: %s", i+2, record[1])
		}
		uoms = append(uoms, entities.UOM{Name: record[0], MustBeWholeNumber: whole})
	}

	return uoms, nil
}

// LoadWarehouses loads the warehouse hierarchy from a CSV file
func (l *Loader) LoadWarehouses(filename string) ([]entities.Warehouse, error) {
	records, err := readRecords(filename, "warehouses", warehousesHeader)
	if err != nil {
		return nil, err
	}

	warehouses := make([]entities.Warehouse, 0, len(records))
	for i, record := range records {
		isGroup, err := parseBool(record[2])
		if err != nil {
			return nil, fmt.Errorf("warehouses CSV row %d: invalid is_group: %s", i+2, record[2])
		}
		warehouses = append(warehouses, entities.Warehouse{
			Name:            record[0],
			ParentWarehouse: record[1],
			IsGroup:         isGroup,
		})
	}

	return warehouses, nil
}

// LoadInventory loads stock, serial and batch rows into the snapshot. Stock rows keep
// their file order as insertion order; batch rows are movements netted per batch and warehouse.
func (l *Loader) LoadInventory(filename string, snapshot *entities.InventorySnapshot) error {
	records, err := readRecords(filename, "inventory", inventoryHeader)
	if err != nil {
		return err
	}

	var order int64
	for i, record := range records {
		row := i + 2
		itemCode := entities.ItemCode(record[0])
		invType := strings.ToLower(record[1])
		identifier := record[2]
		warehouse := record[3]
		quantityStr := record[4]
		dateStr := record[5]

		switch invType {
		case "stock":
			quantity, err := decimal.NewFromString(quantityStr)
			if err != nil {
				return fmt.Errorf("invalid quantity in row %d: %s", row, quantityStr)
			}
			order++
			rec, err := entities.NewStockRecord(itemCode, warehouse, quantity, order)
			if err != nil {
				return fmt.Errorf("inventory CSV row %d: %w", row, err)
			}
			snapshot.Stock = append(snapshot.Stock, *rec)

		case "serial":
			// quantity is ignored: a serial is one unit
			acquired, err := parseOptionalDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid date format in row %d: %s (expected YYYY-MM-DD)", row, dateStr)
			}
			var acquiredAt time.Time
			if acquired != nil {
				acquiredAt = *acquired
			}
			rec, err := entities.NewSerialRecord(itemCode, identifier, warehouse, acquiredAt)
			if err != nil {
				return fmt.Errorf("inventory CSV row %d: %w", row, err)
			}
			snapshot.Serials = append(snapshot.Serials, *rec)

		case "batch":
			quantity, err := decimal.NewFromString(quantityStr)
			if err != nil {
				return fmt.Errorf("invalid quantity in row %d: %s", row, quantityStr)
			}
			expiry, err := parseOptionalDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid date format in row %d: %s (expected YYYY-MM-DD)", row, dateStr)
			}
			rec, err := entities.NewBatchRecord(itemCode, identifier, warehouse, quantity, expiry)
			if err != nil {
				return fmt.Errorf("inventory CSV row %d: %w", row, err)
			}
			snapshot.Batches = append(snapshot.Batches, *rec)

		default:
			return fmt.Errorf("invalid inventory type in row %d: %s (expected 'stock', 'serial' or 'batch')", row, invType)
		}
	}

	return nil
}

// LoadRequests loads requested lines from a CSV file. Empty stock_uom and
// conversion_factor columns are left for the request validator to fill.
func (l *Loader) LoadRequests(filename string) ([]entities.RequestedLine, error) {
	records, err := readRecords(filename, "requests", requestsHeader)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("requests CSV must have header and at least one data row")
	}

	lines := make([]entities.RequestedLine, 0, len(records))
	for i, record := range records {
		quantity, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("requests CSV row %d: invalid qty: %s", i+2, record[1])
		}
		cf := decimal.Zero
		if record[4] != "" {
			cf, err = decimal.NewFromString(record[4])
			if err != nil {
				return nil, fmt.Errorf("requests CSV row %d: invalid conversion_factor: %s", i+2, record[4])
			}
		}

		lines = append(lines, entities.RequestedLine{
			ItemCode:         entities.ItemCode(record[0]),
			Quantity:         quantity,
			UOM:              record[2],
			StockUOM:         record[3],
			ConversionFactor: cf,
			Source: entities.SourceRef{
				SalesOrder:     record[5],
				SalesOrderItem: record[6],
				WorkOrder:      record[7],
			},
		})
	}

	return lines, nil
}

// Helper functions for parsing CSV records

// readRecords opens filename, validates its header and returns the data rows
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
		for j := range record {
			record[j] = strings.TrimSpace(record[j])
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		// a UTF-8 BOM survives spreadsheet exports
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(actual[i], "\ufeff"))) != col {
			return false
		}
	}

	return true
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	default:
		return strconv.ParseBool(s)
	}
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
