package memory

import (
	"context"
	"sync"

	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/domain/repositories"
)

// UOMRepository provides in-memory unit of measure settings
type UOMRepository struct {
	mu   sync.RWMutex
	uoms map[string]entities.UOM
}

func NewUOMRepository() *UOMRepository {
	return &UOMRepository{uoms: make(map[string]entities.UOM)}
}

var _ repositories.UOMRepository = (*UOMRepository)(nil)

func (r *UOMRepository) AddUOM(uom entities.UOM) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uoms[uom.Name] = uom
}

func (r *UOMRepository) IsWholeNumberUnit(_ context.Context, uom string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.uoms[uom].MustBeWholeNumber, nil
}
