package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// SerialAllocator assigns individual serial numbers to serial-tracked lines
type SerialAllocator struct{}

// SerialLimit is the number of serials to claim for a line: its stock quantity rounded up
func SerialLimit(line entities.RequestedLine) int {
	limit := line.StockQuantity().Ceil()
	if !limit.IsPositive() {
		return 0
	}
	return int(limit.IntPart())
}

// Allocate groups the fetched serials by warehouse, one row per warehouse in the order the
// warehouses first appear. Never more than SerialLimit serials are used.
func (SerialAllocator) Allocate(line entities.RequestedLine, serials []entities.SerialRecord) LineAllocation {
	var result LineAllocation
	limit := SerialLimit(line)

	var warehouses []string
	byWarehouse := make(map[string][]string)
	picked := 0
	for _, serial := range serials {
		if picked == limit {
			break
		}
		if serial.Warehouse == "" {
			continue
		}
		if _, seen := byWarehouse[serial.Warehouse]; !seen {
			warehouses = append(warehouses, serial.Warehouse)
		}
		byWarehouse[serial.Warehouse] = append(byWarehouse[serial.Warehouse], serial.SerialID)
		picked++
	}

	for _, warehouse := range warehouses {
		ids := byWarehouse[warehouse]
		count := decimal.NewFromInt(int64(len(ids)))
		result.Rows = append(result.Rows, entities.AllocationRow{
			ItemCode:      line.ItemCode,
			Warehouse:     warehouse,
			SerialIDs:     ids,
			Quantity:      ToTransactionQty(count, line.ConversionFactor),
			StockQuantity: count,
		})
	}

	if short := line.StockQuantity().Sub(decimal.NewFromInt(int64(picked))); short.IsPositive() {
		result.Shortage = &entities.ShortageNotice{
			ItemCode:      line.ItemCode,
			ShortQuantity: short,
			UOM:           line.StockUOM,
		}
	}

	return result
}
