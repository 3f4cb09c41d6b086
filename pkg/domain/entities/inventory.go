package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord represents untracked stock of an item held in a warehouse
type StockRecord struct {
	ItemCode       ItemCode
	Warehouse      string
	Quantity       decimal.Decimal
	InsertionOrder int64
}

// NewStockRecord creates a validated StockRecord
func NewStockRecord(itemCode ItemCode, warehouse string, quantity decimal.Decimal, insertionOrder int64) (*StockRecord, error) {
	if string(itemCode) == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &StockRecord{
		ItemCode:       itemCode,
		Warehouse:      warehouse,
		Quantity:       quantity,
		InsertionOrder: insertionOrder,
	}, nil
}

// SerialRecord represents a single serial-tracked stock unit
type SerialRecord struct {
	ItemCode   ItemCode
	SerialID   string
	Warehouse  string
	AcquiredAt time.Time
}

// NewSerialRecord creates a validated SerialRecord. An empty warehouse is allowed:
// such serials are delivered or consumed and are never offered for picking.
func NewSerialRecord(itemCode ItemCode, serialID, warehouse string, acquiredAt time.Time) (*SerialRecord, error) {
	if string(itemCode) == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if serialID == "" {
		return nil, fmt.Errorf("serial id cannot be empty")
	}

	return &SerialRecord{
		ItemCode:   itemCode,
		SerialID:   serialID,
		Warehouse:  warehouse,
		AcquiredAt: acquiredAt,
	}, nil
}

// BatchRecord represents the net quantity of a batch held in a warehouse
type BatchRecord struct {
	ItemCode  ItemCode
	BatchID   string
	Warehouse string
	Quantity  decimal.Decimal
	Expiry    *time.Time // nil never expires
}

// NewBatchRecord creates a validated BatchRecord
func NewBatchRecord(itemCode ItemCode, batchID, warehouse string, quantity decimal.Decimal, expiry *time.Time) (*BatchRecord, error) {
	if string(itemCode) == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if batchID == "" {
		return nil, fmt.Errorf("batch id cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}

	return &BatchRecord{
		ItemCode:  itemCode,
		BatchID:   batchID,
		Warehouse: warehouse,
		Quantity:  quantity,
		Expiry:    expiry,
	}, nil
}

// ExpiresAfter reports whether the batch is still usable after the given day.
// Batches without an expiry never expire.
func (b BatchRecord) ExpiresAfter(day time.Time) bool {
	if b.Expiry == nil {
		return true
	}
	return truncateDay(*b.Expiry).After(truncateDay(day))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Warehouse represents a node of the warehouse hierarchy
type Warehouse struct {
	Name            string
	ParentWarehouse string
	IsGroup         bool
}

// InventorySnapshot is a point-in-time copy of master data and availability
type InventorySnapshot struct {
	Items      []Item
	UOMs       []UOM
	Warehouses []Warehouse
	Stock      []StockRecord
	Serials    []SerialRecord
	Batches    []BatchRecord
}
