package allocation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// BatchAllocator satisfies batch-tracked lines first-expiring-first-out.
//
// Batches are not shared between lines of a run: every line is matched against the full
// snapshot it is given, unlike PoolAllocator which deducts across lines.
type BatchAllocator struct{}

// Allocate walks usable batches in FEFO order. Quantities are in the line's own unit,
// which is also the unit of the batch records.
func (BatchAllocator) Allocate(
	line entities.RequestedLine,
	batches []entities.BatchRecord,
	referenceDate time.Time,
) LineAllocation {
	var result LineAllocation
	required := line.Quantity

	for _, batch := range SortBatchesFEFO(UsableBatches(batches, referenceDate)) {
		if !required.IsPositive() {
			break
		}

		take := decimal.Min(batch.Quantity, required)
		result.Rows = append(result.Rows, entities.AllocationRow{
			ItemCode:      line.ItemCode,
			Warehouse:     batch.Warehouse,
			BatchID:       batch.BatchID,
			Quantity:      take,
			StockQuantity: ToStockQty(take, line.ConversionFactor),
		})
		required = required.Sub(take)
	}

	if required.IsPositive() {
		result.Shortage = &entities.ShortageNotice{
			ItemCode:      line.ItemCode,
			ShortQuantity: required,
			UOM:           line.UOM,
		}
	}

	return result
}

// UsableBatches keeps batches with stock left that have not expired on referenceDate
func UsableBatches(batches []entities.BatchRecord, referenceDate time.Time) []entities.BatchRecord {
	usable := make([]entities.BatchRecord, 0, len(batches))
	for _, batch := range batches {
		if batch.Quantity.IsPositive() && batch.ExpiresAfter(referenceDate) {
			usable = append(usable, batch)
		}
	}
	return usable
}

// SortBatchesFEFO orders batches by expiry, earliest first, batches without expiry last.
// Ties keep their input order.
func SortBatchesFEFO(batches []entities.BatchRecord) []entities.BatchRecord {
	sorted := make([]entities.BatchRecord, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Expiry, sorted[j].Expiry
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return sorted
}
