package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SourceRef links a requested line back to the document it was raised from
type SourceRef struct {
	SalesOrder     string `json:"sales_order,omitempty"`
	SalesOrderItem string `json:"sales_order_item,omitempty"`
	WorkOrder      string `json:"work_order,omitempty"`
}

// RequestedLine represents one demand to satisfy from stock
type RequestedLine struct {
	ItemCode         ItemCode        `json:"item_code"`
	Quantity         decimal.Decimal `json:"qty"`
	UOM              string          `json:"uom"`
	StockUOM         string          `json:"stock_uom"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Source           SourceRef       `json:"source"`
}

// StockQuantity returns the requested quantity expressed in the stock unit
func (l RequestedLine) StockQuantity() decimal.Decimal {
	return l.Quantity.Mul(l.ConversionFactor)
}

// Validate checks the structural invariants of a requested line
func (l RequestedLine) Validate() error {
	if string(l.ItemCode) == "" {
		return fmt.Errorf("item code cannot be empty")
	}
	if l.Quantity.IsNegative() {
		return fmt.Errorf("quantity cannot be negative, got %s", l.Quantity)
	}
	if !l.ConversionFactor.IsPositive() {
		return fmt.Errorf("conversion factor must be positive, got %s", l.ConversionFactor)
	}
	return nil
}
