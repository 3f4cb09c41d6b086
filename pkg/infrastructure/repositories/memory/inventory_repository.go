package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
	"github.com/vsinha/picklist/pkg/domain/services"
)

// InventoryRepository provides in-memory availability of stock, serials and batches
type InventoryRepository struct {
	mu        sync.RWMutex
	stock     []entities.StockRecord
	serials   []entities.SerialRecord
	batches   []entities.BatchRecord
	nextOrder int64
	serialCmp *services.SerialComparator
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		stock:     []entities.StockRecord{},
		serials:   []entities.SerialRecord{},
		batches:   []entities.BatchRecord{},
		nextOrder: 1,
		serialCmp: services.NewSerialComparator(),
	}
}

// Verify interface compliance
var _ repositories.AvailabilityProvider = (*InventoryRepository)(nil)

// AddStock adds an untracked stock record. A zero insertion order is replaced by the next one.
func (r *InventoryRepository) AddStock(record entities.StockRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.InsertionOrder == 0 {
		record.InsertionOrder = r.nextOrder
	}
	if record.InsertionOrder >= r.nextOrder {
		r.nextOrder = record.InsertionOrder + 1
	}
	r.stock = append(r.stock, record)
}

// AddSerial adds a serial-tracked unit
func (r *InventoryRepository) AddSerial(record entities.SerialRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serials = append(r.serials, record)
}

// AddBatch adds a batch movement. Movements of the same batch and warehouse are netted on read.
func (r *InventoryRepository) AddBatch(record entities.BatchRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, record)
}

// AvailableStock returns positive stock for an item, oldest insertion first
func (r *InventoryRepository) AvailableStock(
	_ context.Context,
	itemCode entities.ItemCode,
	warehouseScope []string,
) ([]entities.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var scope map[string]bool
	if len(warehouseScope) > 0 {
		scope = make(map[string]bool, len(warehouseScope))
		for _, w := range warehouseScope {
			scope[w] = true
		}
	}

	records := []entities.StockRecord{}
	for _, rec := range r.stock {
		if rec.ItemCode != itemCode || !rec.Quantity.IsPositive() {
			continue
		}
		if scope != nil && !scope[rec.Warehouse] {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].InsertionOrder < records[j].InsertionOrder
	})

	return records, nil
}

// AvailableSerials returns at most limit serials held in a warehouse, oldest acquisition first
func (r *InventoryRepository) AvailableSerials(
	_ context.Context,
	itemCode entities.ItemCode,
	limit int,
) ([]entities.SerialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	serials := []entities.SerialRecord{}
	if limit <= 0 {
		return serials, nil
	}
	for _, s := range r.serials {
		if s.ItemCode == itemCode && s.Warehouse != "" {
			serials = append(serials, s)
		}
	}
	r.serialCmp.SortByAcquisition(serials)

	if len(serials) > limit {
		serials = serials[:limit]
	}
	return serials, nil
}

type batchKey struct {
	batchID   string
	warehouse string
}

// AvailableBatches nets batch movements per batch and warehouse and returns the usable ones,
// earliest expiry first with undated batches last
func (r *InventoryRepository) AvailableBatches(
	_ context.Context,
	itemCode entities.ItemCode,
	referenceDate time.Time,
) ([]entities.BatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[batchKey]*entities.BatchRecord)
	var keys []batchKey
	for _, b := range r.batches {
		if b.ItemCode != itemCode {
			continue
		}
		key := batchKey{batchID: b.BatchID, warehouse: b.Warehouse}
		agg, ok := totals[key]
		if !ok {
			rec := b
			rec.Quantity = decimal.Zero
			agg = &rec
			totals[key] = agg
			keys = append(keys, key)
		}
		agg.Quantity = agg.Quantity.Add(b.Quantity)
		if agg.Expiry == nil && b.Expiry != nil {
			agg.Expiry = b.Expiry
		}
	}

	batches := []entities.BatchRecord{}
	for _, key := range keys {
		b := *totals[key]
		if b.Quantity.IsPositive() && b.ExpiresAfter(referenceDate) {
			batches = append(batches, b)
		}
	}
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if (a.Expiry == nil) != (b.Expiry == nil) {
			return b.Expiry == nil
		}
		if a.Expiry != nil && !a.Expiry.Equal(*b.Expiry) {
			return a.Expiry.Before(*b.Expiry)
		}
		if a.BatchID != b.BatchID {
			return a.BatchID < b.BatchID
		}
		return a.Warehouse < b.Warehouse
	})

	return batches, nil
}
