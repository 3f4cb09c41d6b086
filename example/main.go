package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/application/services/picklist"
	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/infrastructure/events"
	"github.com/vsinha/picklist/pkg/infrastructure/logging"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/picklist/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()

	store, err := memory.NewStoreFromSnapshot(warehouseSnapshot())
	if err != nil {
		log.Fatal(err)
	}

	eventStore := events.NewInMemoryEventStore()
	shortages := 0
	if err := eventStore.Subscribe([]string{events.ShortageIdentifiedEvent}, &events.HandlerFunc{
		Types: []string{events.ShortageIdentifiedEvent},
		Fn: func(events.Event) error {
			shortages++
			return nil
		},
	}); err != nil {
		log.Fatal(err)
	}

	service := picklist.NewService(picklist.Repositories{
		Availability: store.Inventory,
		Items:        store.Items,
		UOMs:         store.UOMs,
		Warehouses:   store.Warehouses,
	},
		picklist.WithLogger(logging.New("dev", "info")),
		picklist.WithEventSink(eventStore),
	)

	date, _ := dto.ParseDate("2025-06-01")
	result, err := service.Allocate(ctx, dto.AllocateRequest{
		Lines: []entities.RequestedLine{
			line("PUMP-SEAL", "12", "Nos", "1", "SO-1042"),
			line("PUMP-SEAL", "6", "Nos", "1", "SO-1043"),
			line("FLOWMETER", "2", "Nos", "1", "SO-1042"),
			line("COOLANT", "3", "Drum", "200", "SO-1044"),
		},
		ParentWarehouse: "Main Stores",
		ReferenceDate:   &date,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := output.Generate(result, output.Config{Format: "text", Stdout: os.Stdout}); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Shortage events received: %d\n", shortages)
}

func line(code, qty, uom, cf, salesOrder string) entities.RequestedLine {
	return entities.RequestedLine{
		ItemCode:         entities.ItemCode(code),
		Quantity:         decimal.RequireFromString(qty),
		UOM:              uom,
		ConversionFactor: decimal.RequireFromString(cf),
		Source:           entities.SourceRef{SalesOrder: salesOrder},
	}
}

func warehouseSnapshot() *entities.InventorySnapshot {
	expiry := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	received := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	return &entities.InventorySnapshot{
		Items: []entities.Item{
			{ItemCode: "PUMP-SEAL", Description: "Mechanical pump seal", StockUOM: "Nos"},
			{ItemCode: "FLOWMETER", Description: "Ultrasonic flowmeter", StockUOM: "Nos", HasSerialNo: true},
			{ItemCode: "COOLANT", Description: "Glycol coolant", StockUOM: "Litre", HasBatchNo: true},
		},
		UOMs: []entities.UOM{
			{Name: "Nos", MustBeWholeNumber: true},
			{Name: "Drum", MustBeWholeNumber: true},
			{Name: "Litre"},
		},
		Warehouses: []entities.Warehouse{
			{Name: "Main Stores", IsGroup: true},
			{Name: "Main Stores - Bay 1", ParentWarehouse: "Main Stores"},
			{Name: "Main Stores - Bay 2", ParentWarehouse: "Main Stores"},
			{Name: "Workshop"},
		},
		Stock: []entities.StockRecord{
			{ItemCode: "PUMP-SEAL", Warehouse: "Main Stores - Bay 2", Quantity: decimal.NewFromInt(8), InsertionOrder: 1},
			{ItemCode: "PUMP-SEAL", Warehouse: "Workshop", Quantity: decimal.NewFromInt(20), InsertionOrder: 2},
			{ItemCode: "PUMP-SEAL", Warehouse: "Main Stores - Bay 1", Quantity: decimal.NewFromInt(6), InsertionOrder: 3},
		},
		Serials: []entities.SerialRecord{
			{ItemCode: "FLOWMETER", SerialID: "FM-10", Warehouse: "Main Stores - Bay 1", AcquiredAt: received},
			{ItemCode: "FLOWMETER", SerialID: "FM-9", Warehouse: "Main Stores - Bay 1", AcquiredAt: received},
			{ItemCode: "FLOWMETER", SerialID: "FM-2", Warehouse: "Workshop", AcquiredAt: received.AddDate(0, 2, 0)},
		},
		Batches: []entities.BatchRecord{
			{ItemCode: "COOLANT", BatchID: "GLY-2501", Warehouse: "Main Stores - Bay 1", Quantity: decimal.NewFromInt(350), Expiry: expiry(2025, 9, 30)},
			{ItemCode: "COOLANT", BatchID: "GLY-2412", Warehouse: "Main Stores - Bay 2", Quantity: decimal.NewFromInt(120), Expiry: expiry(2025, 7, 31)},
			{ItemCode: "COOLANT", BatchID: "GLY-2404", Warehouse: "Workshop", Quantity: decimal.NewFromInt(500), Expiry: expiry(2025, 5, 31)},
		},
	}
}
