package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// SupplyPool is the remaining untracked stock of one item during a run, consumed from the front.
type SupplyPool struct {
	records []entities.StockRecord
}

// NewSupplyPool creates a pool from records in provider order. Records without stock are dropped.
func NewSupplyPool(records []entities.StockRecord) *SupplyPool {
	pool := &SupplyPool{records: make([]entities.StockRecord, 0, len(records))}
	for _, record := range records {
		if record.Quantity.IsPositive() {
			pool.records = append(pool.records, record)
		}
	}
	return pool
}

// Len returns the number of records left in the pool
func (p *SupplyPool) Len() int {
	return len(p.records)
}

// Empty reports whether the pool has no records left
func (p *SupplyPool) Empty() bool {
	return len(p.records) == 0
}

// PopFront removes and returns the earliest record
func (p *SupplyPool) PopFront() (entities.StockRecord, bool) {
	if len(p.records) == 0 {
		return entities.StockRecord{}, false
	}
	record := p.records[0]
	p.records = p.records[1:]
	return record, true
}

// PushFront puts records back ahead of everything else, keeping their relative order
func (p *SupplyPool) PushFront(records ...entities.StockRecord) {
	if len(records) == 0 {
		return
	}
	merged := make([]entities.StockRecord, 0, len(records)+len(p.records))
	merged = append(merged, records...)
	p.records = append(merged, p.records...)
}

// Records returns a copy of the records left in the pool
func (p *SupplyPool) Records() []entities.StockRecord {
	out := make([]entities.StockRecord, len(p.records))
	copy(out, p.records)
	return out
}

// Total returns the stock quantity left in the pool
func (p *SupplyPool) Total() decimal.Decimal {
	total := decimal.Zero
	for _, record := range p.records {
		total = total.Add(record.Quantity)
	}
	return total
}

// SupplyPools holds one pool per item code for the lifetime of a single run
type SupplyPools map[entities.ItemCode]*SupplyPool

// NewSupplyPools creates an empty pool map
func NewSupplyPools() SupplyPools {
	return make(SupplyPools)
}

// Get returns the pool for an item if it was already initialized
func (sp SupplyPools) Get(itemCode entities.ItemCode) (*SupplyPool, bool) {
	pool, ok := sp[itemCode]
	return pool, ok
}

// Set stores the pool for an item
func (sp SupplyPools) Set(itemCode entities.ItemCode, pool *SupplyPool) {
	sp[itemCode] = pool
}
