package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
)

// ItemRepository caches item master lookups. Only successful lookups are cached.
type ItemRepository struct {
	next  repositories.ItemRepository
	items *lru.Cache[entities.ItemCode, entities.Item]
}

var _ repositories.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository wraps next with an LRU cache of the given size
func NewItemRepository(next repositories.ItemRepository, size int) (*ItemRepository, error) {
	items, err := lru.New[entities.ItemCode, entities.Item](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create item cache: %w", err)
	}
	return &ItemRepository{next: next, items: items}, nil
}

func (r *ItemRepository) GetItem(ctx context.Context, itemCode entities.ItemCode) (*entities.Item, error) {
	if item, ok := r.items.Get(itemCode); ok {
		return &item, nil
	}
	item, err := r.next.GetItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	r.items.Add(itemCode, *item)
	copied := *item
	return &copied, nil
}

func (r *ItemRepository) TrackingMode(ctx context.Context, itemCode entities.ItemCode) (entities.TrackingMode, error) {
	item, err := r.GetItem(ctx, itemCode)
	if err != nil {
		return entities.TrackingNone, err
	}
	return item.TrackingMode(), nil
}

// Len returns the number of cached items
func (r *ItemRepository) Len() int {
	return r.items.Len()
}

// UOMRepository caches whole-number lookups per unit
type UOMRepository struct {
	next  repositories.UOMRepository
	units *lru.Cache[string, bool]
}

var _ repositories.UOMRepository = (*UOMRepository)(nil)

func NewUOMRepository(next repositories.UOMRepository, size int) (*UOMRepository, error) {
	units, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit cache: %w", err)
	}
	return &UOMRepository{next: next, units: units}, nil
}

func (r *UOMRepository) IsWholeNumberUnit(ctx context.Context, uom string) (bool, error) {
	if whole, ok := r.units.Get(uom); ok {
		return whole, nil
	}
	whole, err := r.next.IsWholeNumberUnit(ctx, uom)
	if err != nil {
		return false, err
	}
	r.units.Add(uom, whole)
	return whole, nil
}
