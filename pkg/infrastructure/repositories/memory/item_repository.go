package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
)

// ItemRepository provides in-memory item master storage
type ItemRepository struct {
	mu       sync.RWMutex
	items    []entities.Item
	itemsMap map[entities.ItemCode]int
}

// NewItemRepository creates a new in-memory item repository
func NewItemRepository(expectedItems int) *ItemRepository {
	return &ItemRepository{
		items:    make([]entities.Item, 0, expectedItems),
		itemsMap: make(map[entities.ItemCode]int, expectedItems),
	}
}

// Verify interface compliance
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// AddItem adds or replaces an item
func (r *ItemRepository) AddItem(item entities.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.itemsMap[item.ItemCode]; exists {
		r.items[index] = item
		return
	}
	r.itemsMap[item.ItemCode] = len(r.items)
	r.items = append(r.items, item)
}

// GetItem returns a copy of the item master record
func (r *ItemRepository) GetItem(_ context.Context, itemCode entities.ItemCode) (*entities.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.itemsMap[itemCode]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrItemNotFound, itemCode)
	}
	item := r.items[index]
	return &item, nil
}

// TrackingMode resolves how stock of the item is tracked
func (r *ItemRepository) TrackingMode(ctx context.Context, itemCode entities.ItemCode) (entities.TrackingMode, error) {
	item, err := r.GetItem(ctx, itemCode)
	if err != nil {
		return entities.TrackingNone, err
	}
	return item.TrackingMode(), nil
}

// GetAllItems returns all items in insertion order
func (r *ItemRepository) GetAllItems() []entities.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entities.Item, len(r.items))
	copy(items, r.items)
	return items
}
