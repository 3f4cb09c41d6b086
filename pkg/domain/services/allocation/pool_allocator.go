package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// PoolAllocator satisfies untracked lines from a shared SupplyPool, splitting across
// warehouses in insertion order.
type PoolAllocator struct{}

// Allocate draws line's stock quantity from pool and leaves the pool updated for the next
// line of the same item.
func (PoolAllocator) Allocate(
	line entities.RequestedLine,
	pool *SupplyPool,
	normalizer QuantityNormalizer,
) LineAllocation {
	var result LineAllocation
	remaining := line.StockQuantity()

	// Records that cannot yield a whole transaction unit for this line. They go back to
	// the front of the pool afterwards so later lines still see them first.
	var setAside []entities.StockRecord

	for remaining.IsPositive() && !pool.Empty() {
		record, _ := pool.PopFront()

		take := decimal.Min(remaining, record.Quantity)
		qty, consumed := normalizer.Normalize(take)
		if !qty.IsPositive() {
			setAside = append(setAside, record)
			continue
		}

		result.Rows = append(result.Rows, entities.AllocationRow{
			ItemCode:      line.ItemCode,
			Warehouse:     record.Warehouse,
			Quantity:      qty,
			StockQuantity: consumed,
		})
		remaining = remaining.Sub(consumed)

		if left := record.Quantity.Sub(consumed); left.IsPositive() {
			record.Quantity = left
			pool.PushFront(record)
		}
	}
	pool.PushFront(setAside...)

	if remaining.IsPositive() {
		result.Shortage = &entities.ShortageNotice{
			ItemCode:      line.ItemCode,
			ShortQuantity: normalizer.ToTransactionQty(remaining),
			UOM:           line.UOM,
		}
	}

	return result
}
