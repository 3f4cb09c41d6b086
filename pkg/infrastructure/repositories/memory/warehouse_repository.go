package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
)

// WarehouseRepository provides the in-memory warehouse hierarchy
type WarehouseRepository struct {
	mu         sync.RWMutex
	warehouses map[string]entities.Warehouse
	children   map[string][]string
}

func NewWarehouseRepository() *WarehouseRepository {
	return &WarehouseRepository{
		warehouses: make(map[string]entities.Warehouse),
		children:   make(map[string][]string),
	}
}

var _ repositories.WarehouseRepository = (*WarehouseRepository)(nil)

// AddWarehouse adds a warehouse node under its parent
func (r *WarehouseRepository) AddWarehouse(w entities.Warehouse) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.warehouses[w.Name]; !exists && w.ParentWarehouse != "" {
		r.children[w.ParentWarehouse] = append(r.children[w.ParentWarehouse], w.Name)
		sort.Strings(r.children[w.ParentWarehouse])
	}
	r.warehouses[w.Name] = w
}

func (r *WarehouseRepository) Exists(_ context.Context, warehouse string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.warehouses[warehouse]
	return exists, nil
}

// Descendants walks the hierarchy depth first, children in name order
func (r *WarehouseRepository) Descendants(_ context.Context, parent string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.warehouses[parent]; !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrWarehouseNotFound, parent)
	}

	result := []string{}
	visited := map[string]bool{parent: true}
	var walk func(name string)
	walk = func(name string) {
		for _, child := range r.children[name] {
			if visited[child] {
				continue
			}
			visited[child] = true
			result = append(result, child)
			walk(child)
		}
	}
	walk(parent)
	return result, nil
}
