package memory

import (
	"fmt"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// Store bundles the in-memory repositories behind one snapshot
type Store struct {
	Items      *ItemRepository
	UOMs       *UOMRepository
	Warehouses *WarehouseRepository
	Inventory  *InventoryRepository
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Items:      NewItemRepository(0),
		UOMs:       NewUOMRepository(),
		Warehouses: NewWarehouseRepository(),
		Inventory:  NewInventoryRepository(),
	}
}

// NewStoreFromSnapshot creates a store holding a copy of the snapshot
func NewStoreFromSnapshot(snapshot *entities.InventorySnapshot) (*Store, error) {
	s := NewStore()
	if err := s.LoadSnapshot(snapshot); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSnapshot adds every record of the snapshot. Stock, serial and batch records must
// reference items present in the snapshot or already in the store.
func (s *Store) LoadSnapshot(snapshot *entities.InventorySnapshot) error {
	for _, item := range snapshot.Items {
		s.Items.AddItem(item)
	}
	for _, uom := range snapshot.UOMs {
		s.UOMs.AddUOM(uom)
	}
	for _, w := range snapshot.Warehouses {
		s.Warehouses.AddWarehouse(w)
	}

	for _, rec := range snapshot.Stock {
		if err := s.requireItem(rec.ItemCode); err != nil {
			return fmt.Errorf("stock in %s: %w", rec.Warehouse, err)
		}
		s.Inventory.AddStock(rec)
	}
	for _, rec := range snapshot.Serials {
		if err := s.requireItem(rec.ItemCode); err != nil {
			return fmt.Errorf("serial %s: %w", rec.SerialID, err)
		}
		s.Inventory.AddSerial(rec)
	}
	for _, rec := range snapshot.Batches {
		if err := s.requireItem(rec.ItemCode); err != nil {
			return fmt.Errorf("batch %s: %w", rec.BatchID, err)
		}
		s.Inventory.AddBatch(rec)
	}
	return nil
}

func (s *Store) requireItem(code entities.ItemCode) error {
	s.Items.mu.RLock()
	defer s.Items.mu.RUnlock()
	if _, ok := s.Items.itemsMap[code]; !ok {
		return fmt.Errorf("unknown item %s", code)
	}
	return nil
}
