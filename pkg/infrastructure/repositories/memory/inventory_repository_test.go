package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestInventoryRepository_AvailableStock(t *testing.T) {
	repo := NewInventoryRepository()
	repo.AddStock(entities.StockRecord{ItemCode: "BOLT", Warehouse: "W2", Quantity: dec("4"), InsertionOrder: 5})
	repo.AddStock(entities.StockRecord{ItemCode: "BOLT", Warehouse: "W1", Quantity: dec("3"), InsertionOrder: 2})
	repo.AddStock(entities.StockRecord{ItemCode: "BOLT", Warehouse: "W3", Quantity: dec("0")})
	repo.AddStock(entities.StockRecord{ItemCode: "NUT", Warehouse: "W1", Quantity: dec("9")})
	repo.AddStock(entities.StockRecord{ItemCode: "BOLT", Warehouse: "W3", Quantity: dec("1")})

	ctx := context.Background()

	tests := []struct {
		name       string
		scope      []string
		warehouses []string
	}{
		{"unrestricted", nil, []string{"W1", "W2", "W3"}},
		{"scoped", []string{"W2", "W3"}, []string{"W2", "W3"}},
		{"scope_without_stock", []string{"W9"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := repo.AvailableStock(ctx, "BOLT", tt.scope)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(records) != len(tt.warehouses) {
				t.Fatalf("Expected %d records, got %d", len(tt.warehouses), len(records))
			}
			for i, w := range tt.warehouses {
				if records[i].Warehouse != w {
					t.Errorf("Position %d: expected %s, got %s", i, w, records[i].Warehouse)
				}
			}
		})
	}

	// zero insertion order is assigned after the highest seen
	records, _ := repo.AvailableStock(ctx, "BOLT", []string{"W3"})
	if records[0].InsertionOrder <= 5 {
		t.Errorf("Expected assigned insertion order after 5, got %d", records[0].InsertionOrder)
	}
}

func TestInventoryRepository_AvailableStockReturnsCopies(t *testing.T) {
	repo := NewInventoryRepository()
	repo.AddStock(entities.StockRecord{ItemCode: "BOLT", Warehouse: "W1", Quantity: dec("3")})

	ctx := context.Background()
	first, _ := repo.AvailableStock(ctx, "BOLT", nil)
	first[0].Quantity = decimal.Zero

	second, _ := repo.AvailableStock(ctx, "BOLT", nil)
	if !second[0].Quantity.Equal(dec("3")) {
		t.Errorf("Expected stored quantity 3, got %s", second[0].Quantity)
	}
}

func TestInventoryRepository_AvailableSerials(t *testing.T) {
	repo := NewInventoryRepository()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	repo.AddSerial(entities.SerialRecord{ItemCode: "LAPTOP", SerialID: "SN10", Warehouse: "W1", AcquiredAt: jan})
	repo.AddSerial(entities.SerialRecord{ItemCode: "LAPTOP", SerialID: "SN3", Warehouse: "W2", AcquiredAt: feb})
	repo.AddSerial(entities.SerialRecord{ItemCode: "LAPTOP", SerialID: "SN9", Warehouse: "W1", AcquiredAt: jan})
	repo.AddSerial(entities.SerialRecord{ItemCode: "LAPTOP", SerialID: "SN1", Warehouse: "", AcquiredAt: jan})

	ctx := context.Background()
	serials, err := repo.AvailableSerials(ctx, "LAPTOP", 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{"SN9", "SN10", "SN3"}
	if len(serials) != len(expected) {
		t.Fatalf("Expected %d serials, got %d", len(expected), len(serials))
	}
	for i, id := range expected {
		if serials[i].SerialID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, serials[i].SerialID)
		}
	}

	limited, _ := repo.AvailableSerials(ctx, "LAPTOP", 2)
	if len(limited) != 2 {
		t.Errorf("Expected 2 serials with limit, got %d", len(limited))
	}

	none, _ := repo.AvailableSerials(ctx, "LAPTOP", 0)
	if len(none) != 0 {
		t.Errorf("Expected no serials for zero limit, got %d", len(none))
	}
}

func TestInventoryRepository_AvailableBatches(t *testing.T) {
	repo := NewInventoryRepository()
	ref := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-NONE", Warehouse: "W1", Quantity: dec("5")})
	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-LATE", Warehouse: "W1", Quantity: dec("8"), Expiry: date(2024, 6, 1)})
	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-LATE", Warehouse: "W1", Quantity: dec("-3"), Expiry: date(2024, 6, 1)})
	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-SOON", Warehouse: "W2", Quantity: dec("2.5"), Expiry: date(2024, 3, 10)})
	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-TODAY", Warehouse: "W1", Quantity: dec("4"), Expiry: date(2024, 3, 1)})
	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-GONE", Warehouse: "W1", Quantity: dec("4"), Expiry: date(2024, 4, 1)})
	repo.AddBatch(entities.BatchRecord{ItemCode: "MILK", BatchID: "B-GONE", Warehouse: "W1", Quantity: dec("-4"), Expiry: date(2024, 4, 1)})

	batches, err := repo.AvailableBatches(context.Background(), "MILK", ref)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []struct {
		id  string
		qty string
	}{
		{"B-SOON", "2.5"},
		{"B-LATE", "5"},
		{"B-NONE", "5"},
	}
	if len(batches) != len(expected) {
		t.Fatalf("Expected %d batches, got %d", len(expected), len(batches))
	}
	for i, e := range expected {
		if batches[i].BatchID != e.id {
			t.Errorf("Position %d: expected %s, got %s", i, e.id, batches[i].BatchID)
		}
		if !batches[i].Quantity.Equal(dec(e.qty)) {
			t.Errorf("Batch %s: expected quantity %s, got %s", e.id, e.qty, batches[i].Quantity)
		}
	}
}
