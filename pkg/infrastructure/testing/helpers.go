package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/memory"
)

// ReferenceDate is the day the warehouse scenario is meant to be allocated on
var ReferenceDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// BuildWarehouseSnapshot builds a small distribution scenario:
//
//	All Warehouses
//	├── Finished Goods
//	└── Stores
//	    ├── Stores - A
//	    └── Stores - B
//
// BOLT is untracked (Nos, whole number), SCREWS untracked and sold by the Box of 12,
// LAPTOP serial tracked, MILK batch tracked in litres.
func BuildWarehouseSnapshot() *entities.InventorySnapshot {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	return &entities.InventorySnapshot{
		Items: []entities.Item{
			{ItemCode: "BOLT", Description: "M8 hex bolt", StockUOM: "Nos"},
			{ItemCode: "SCREWS", Description: "Wood screws", StockUOM: "Nos"},
			{ItemCode: "LAPTOP", Description: "14in laptop", StockUOM: "Nos", HasSerialNo: true},
			{ItemCode: "MILK", Description: "UHT milk", StockUOM: "Litre", HasBatchNo: true},
		},
		UOMs: []entities.UOM{
			{Name: "Nos", MustBeWholeNumber: true},
			{Name: "Box", MustBeWholeNumber: true},
			{Name: "Litre"},
		},
		Warehouses: []entities.Warehouse{
			{Name: "All Warehouses", IsGroup: true},
			{Name: "Stores", ParentWarehouse: "All Warehouses", IsGroup: true},
			{Name: "Stores - A", ParentWarehouse: "Stores"},
			{Name: "Stores - B", ParentWarehouse: "Stores"},
			{Name: "Finished Goods", ParentWarehouse: "All Warehouses"},
		},
		Stock: []entities.StockRecord{
			{ItemCode: "BOLT", Warehouse: "Stores - A", Quantity: qty("5"), InsertionOrder: 1},
			{ItemCode: "BOLT", Warehouse: "Stores - B", Quantity: qty("4"), InsertionOrder: 2},
			{ItemCode: "BOLT", Warehouse: "Finished Goods", Quantity: qty("10"), InsertionOrder: 3},
			{ItemCode: "SCREWS", Warehouse: "Stores - A", Quantity: qty("30"), InsertionOrder: 4},
		},
		Serials: []entities.SerialRecord{
			{ItemCode: "LAPTOP", SerialID: "SN1", Warehouse: "Stores - A", AcquiredAt: jan},
			{ItemCode: "LAPTOP", SerialID: "SN2", Warehouse: "Stores - A", AcquiredAt: jan},
			{ItemCode: "LAPTOP", SerialID: "SN3", Warehouse: "Stores - B", AcquiredAt: feb},
			{ItemCode: "LAPTOP", SerialID: "SN4", Warehouse: "", AcquiredAt: jan},
		},
		Batches: []entities.BatchRecord{
			{ItemCode: "MILK", BatchID: "M-OLD", Warehouse: "Stores - A", Quantity: qty("10"), Expiry: day(2024, 1, 10)},
			{ItemCode: "MILK", BatchID: "M-2", Warehouse: "Stores - B", Quantity: qty("8"), Expiry: day(2024, 4, 1)},
			{ItemCode: "MILK", BatchID: "M-1", Warehouse: "Stores - A", Quantity: qty("6"), Expiry: day(2024, 3, 15)},
			{ItemCode: "MILK", BatchID: "M-NONE", Warehouse: "Finished Goods", Quantity: qty("3")},
		},
	}
}

// BuildWarehouseTestData loads BuildWarehouseSnapshot into a memory store
func BuildWarehouseTestData() *memory.Store {
	store, err := memory.NewStoreFromSnapshot(BuildWarehouseSnapshot())
	if err != nil {
		panic(err)
	}
	return store
}

// Line is a helper for tests building a requested line in the stock unit
func Line(code entities.ItemCode, quantity, uom string) entities.RequestedLine {
	return entities.RequestedLine{
		ItemCode: code,
		Quantity: qty(quantity),
		UOM:      uom,
	}
}
