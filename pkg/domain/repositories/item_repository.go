package repositories

import (
	"context"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// ItemRepository provides access to item master data
type ItemRepository interface {
	GetItem(ctx context.Context, itemCode entities.ItemCode) (*entities.Item, error)
	TrackingMode(ctx context.Context, itemCode entities.ItemCode) (entities.TrackingMode, error)
}

// UOMRepository provides access to unit of measure settings
type UOMRepository interface {
	// IsWholeNumberUnit reports whether quantities in uom must be whole numbers.
	// Unknown units are not whole-number constrained.
	IsWholeNumberUnit(ctx context.Context, uom string) (bool, error)
}

// WarehouseRepository provides access to the warehouse hierarchy
type WarehouseRepository interface {
	// Descendants returns every warehouse below parent, excluding parent itself
	Descendants(ctx context.Context, parent string) ([]string, error)
	Exists(ctx context.Context, warehouse string) (bool, error)
}
