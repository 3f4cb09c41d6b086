package entities

import "github.com/shopspring/decimal"

// AllocationRow represents stock drawn from one warehouse for one requested line
type AllocationRow struct {
	LineIndex        int             `json:"line_index"`
	ItemCode         ItemCode        `json:"item_code"`
	Warehouse        string          `json:"warehouse"`
	Quantity         decimal.Decimal `json:"qty"`
	StockQuantity    decimal.Decimal `json:"stock_qty"`
	PickedQuantity   decimal.Decimal `json:"picked_qty"`
	SerialIDs        []string        `json:"serial_nos,omitempty"`
	BatchID          string          `json:"batch_no,omitempty"`
	UOM              string          `json:"uom"`
	StockUOM         string          `json:"stock_uom"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Source           SourceRef       `json:"source"`
}

// ShortageNotice represents the unmet part of a requested line
type ShortageNotice struct {
	LineIndex     int             `json:"line_index"`
	ItemCode      ItemCode        `json:"item_code"`
	ShortQuantity decimal.Decimal `json:"short_qty"`
	UOM           string          `json:"uom"`
}

// AllocationResult is the outcome of one allocation run
type AllocationResult struct {
	Rows      []AllocationRow  `json:"rows"`
	Shortages []ShortageNotice `json:"shortages"`
}
