package repositories

import (
	"context"
	"time"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// AvailabilityProvider supplies read-only availability snapshots to the allocation engine.
// Implementations return fresh copies; callers may mutate what they receive.
type AvailabilityProvider interface {
	// AvailableStock returns untracked stock with a positive quantity, oldest insertion first.
	// An empty warehouse scope means every warehouse.
	AvailableStock(
		ctx context.Context,
		itemCode entities.ItemCode,
		warehouseScope []string,
	) ([]entities.StockRecord, error)
	// AvailableSerials returns at most limit serials held in a warehouse, oldest acquisition first.
	AvailableSerials(
		ctx context.Context,
		itemCode entities.ItemCode,
		limit int,
	) ([]entities.SerialRecord, error)
	// AvailableBatches returns batches with a positive quantity that have not expired on referenceDate.
	AvailableBatches(
		ctx context.Context,
		itemCode entities.ItemCode,
		referenceDate time.Time,
	) ([]entities.BatchRecord, error)
}
