package repositories

import "errors"

var (
	// ErrItemNotFound is returned when an item code is missing from the item master
	ErrItemNotFound = errors.New("item not found")
	// ErrWarehouseNotFound is returned when a warehouse is missing from the hierarchy
	ErrWarehouseNotFound = errors.New("warehouse not found")
)
